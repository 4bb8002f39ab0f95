package resilience

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServerError represents an HTTP 5xx response treated as a call failure so
// it counts against the circuit breaker and is retried.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// HTTPClientConfig holds configuration for an HTTP convenience client.
type HTTPClientConfig struct {
	// Operation is the operation name the breaker and retrier are keyed by.
	Operation string

	// Client is the resilient client that guards the calls.
	Client *Client

	// Doer issues the underlying requests. If nil, an http.Client with
	// Timeout is used.
	Doer HTTPDoer

	// Timeout is the per-request timeout for the default doer.
	// Default: 10 seconds
	Timeout time.Duration
}

// HTTPClient routes HTTP requests through a resilient client under a fixed
// operation name. It is a convenience layered on Client.Do; 4xx responses
// are returned to the caller unretried, 5xx responses and transport errors
// are failures.
type HTTPClient struct {
	operation string
	client    *Client
	doer      HTTPDoer
}

// NewHTTPClient creates an HTTP client guarded by the given resilient
// client.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	doer := cfg.Doer
	if doer == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		operation: cfg.Operation,
		client:    cfg.Client,
		doer:      doer,
	}
}

// Operation returns the operation name the client executes under.
func (c *HTTPClient) Operation() string {
	return c.operation
}

// Do executes the request through the circuit breaker and retry policy.
// The request is cloned per attempt and its body rewound via GetBody, so
// retries are safe for requests built with http.NewRequest.
// The caller is responsible for closing the response body on success.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return Execute(req.Context(), c.client, c.operation, func(ctx context.Context) (*http.Response, error) {
		clone := req.Clone(ctx)
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			clone.Body = body
		}

		resp, err := c.doer.Do(clone)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, &ServerError{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})
}

// Get issues a GET request to the URL through the resilient client.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// PostJSON issues a POST request with a JSON-encoded body through the
// resilient client.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}
