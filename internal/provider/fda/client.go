// Package fda provides a client for the openFDA enforcement-report API.
package fda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ArielSanroj/mommyshops-sub003/internal/ingredient"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the openFDA API.
	DefaultBaseURL = "https://api.fda.gov"

	// OperationName keys the circuit breaker and retry policy for this
	// provider.
	OperationName = "fda"
)

// ClientConfig holds configuration for the openFDA client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey raises the rate limit when set; openFDA works without one.
	APIKey string

	// HTTPClient executes the requests, typically a resilience.HTTPClient.
	// If nil, a plain http.Client with Timeout is used.
	HTTPClient resilience.HTTPDoer

	// Timeout for the default HTTP client (default: 10s).
	Timeout time.Duration
}

// Client is an openFDA enforcement-report client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient resilience.HTTPDoer
}

// NewClient creates an openFDA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// API response types (from the openFDA enforcement endpoint).

type enforcementResponse struct {
	Results []enforcementResult `json:"results"`
}

type enforcementResult struct {
	RecallNumber       string `json:"recall_number"`
	Classification     string `json:"classification"`
	Status             string `json:"status"`
	ReasonForRecall    string `json:"reason_for_recall"`
	ProductDescription string `json:"product_description"`
	RecallInitiation   string `json:"recall_initiation_date"`
}

// RecallsForIngredient searches enforcement reports whose product
// description or recall reason mentions the ingredient. An empty result is
// not an error; openFDA signals "no matches" with a 404.
func (c *Client) RecallsForIngredient(ctx context.Context, name string, limit int) ([]ingredient.Recall, error) {
	if limit <= 0 {
		limit = 10
	}

	// openFDA uses "+" as the term separator in search expressions, so the
	// expression is assembled by hand; url.Values.Encode would turn the
	// separator into %2B. Only the ingredient term itself is escaped.
	quoted := "%22" + url.QueryEscape(name) + "%22"
	search := "product_description:" + quoted + "+reason_for_recall:" + quoted

	endpoint := fmt.Sprintf("%s/food/enforcement.json?search=%s&limit=%d", c.baseURL, search, limit)
	if c.apiKey != "" {
		endpoint += "&api_key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch enforcement reports: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from enforcement endpoint", resp.StatusCode)
	}

	var result enforcementResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode enforcement response: %w", err)
	}

	recalls := make([]ingredient.Recall, 0, len(result.Results))
	for _, r := range result.Results {
		recalls = append(recalls, toRecall(&r))
	}
	return recalls, nil
}

// toRecall converts an API result to a domain Recall.
func toRecall(r *enforcementResult) ingredient.Recall {
	// openFDA dates are YYYYMMDD.
	initiatedAt, _ := time.Parse("20060102", r.RecallInitiation)

	return ingredient.Recall{
		RecallNumber:       r.RecallNumber,
		Classification:     r.Classification,
		Status:             r.Status,
		Reason:             r.ReasonForRecall,
		ProductDescription: r.ProductDescription,
		InitiatedAt:        initiatedAt,
	}
}
