// Package ollama provides a client for a local Ollama instance used to
// summarize ingredient safety data.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ArielSanroj/mommyshops-sub003/internal/ingredient"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the default Ollama endpoint.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "llama3"

	// OperationName keys the circuit breaker and retry policy for this
	// provider.
	OperationName = "ollama"
)

// ClientConfig holds configuration for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama endpoint (defaults to DefaultBaseURL).
	BaseURL string

	// Model selects the model to generate with (defaults to DefaultModel).
	Model string

	// HTTPClient executes the requests, typically a resilience.HTTPClient.
	// If nil, a plain http.Client with Timeout is used.
	HTTPClient resilience.HTTPDoer

	// Timeout for the default HTTP client. Generation is slow, so the
	// default is 60s.
	Timeout time.Duration
}

// Client is an Ollama generation client.
type Client struct {
	baseURL    string
	model      string
	httpClient resilience.HTTPDoer
}

// NewClient creates an Ollama client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

// API request/response types (Ollama /api/generate).

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Summarize asks the model for a short safety summary of the gathered
// ingredient data.
func (c *Client) Summarize(ctx context.Context, name string, compound *ingredient.CompoundProperties, recalls []ingredient.Recall) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(name, compound, recalls),
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from generate endpoint", resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	return strings.TrimSpace(result.Response), nil
}

// buildPrompt renders the gathered data into a prompt asking for a
// consumer-friendly safety summary.
func buildPrompt(name string, compound *ingredient.CompoundProperties, recalls []ingredient.Recall) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a cosmetics safety assistant. Summarize in 2-3 plain sentences, ")
	fmt.Fprintf(&b, "for an expecting mother, the safety of the cosmetic ingredient %q.\n", name)

	if compound != nil {
		fmt.Fprintf(&b, "Chemical identity: %s (formula %s, %.2f g/mol).\n",
			compound.IUPACName, compound.MolecularFormula, compound.MolecularWeight)
	}

	if len(recalls) > 0 {
		fmt.Fprintf(&b, "There are %d regulatory enforcement reports mentioning it:\n", len(recalls))
		for _, r := range recalls {
			fmt.Fprintf(&b, "- %s (%s): %s\n", r.RecallNumber, r.Classification, r.Reason)
		}
	} else {
		b.WriteString("No regulatory enforcement reports mention it.\n")
	}

	b.WriteString("Do not speculate beyond the data above.")
	return b.String()
}
