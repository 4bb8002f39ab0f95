// Package pubchem provides a client for the PubChem PUG REST API.
package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ArielSanroj/mommyshops-sub003/internal/ingredient"
	"github.com/ArielSanroj/mommyshops-sub003/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the PubChem PUG REST API.
	DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov"

	// OperationName keys the circuit breaker and retry policy for this
	// provider.
	OperationName = "pubchem"
)

// ClientConfig holds configuration for the PubChem client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient executes the requests, typically a resilience.HTTPClient.
	// If nil, a plain http.Client with Timeout is used.
	HTTPClient resilience.HTTPDoer

	// Timeout for the default HTTP client (default: 10s).
	Timeout time.Duration
}

// Client is a PubChem compound-property client.
type Client struct {
	baseURL    string
	httpClient resilience.HTTPDoer
}

// NewClient creates a PubChem client.
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
		httpClient: httpClient,
	}
}

// API response types (from PUG REST).

type propertyResponse struct {
	PropertyTable propertyTable `json:"PropertyTable"`
}

type propertyTable struct {
	Properties []compoundProperty `json:"Properties"`
}

type compoundProperty struct {
	CID              int    `json:"CID"`
	MolecularFormula string `json:"MolecularFormula"`
	// PUG REST returns molecular weight as a string.
	MolecularWeight string `json:"MolecularWeight"`
	IUPACName       string `json:"IUPACName"`
}

// CompoundByName resolves an ingredient name to its compound properties.
// Returns ingredient.ErrNotFound when PubChem has no record of the name.
func (c *Client) CompoundByName(ctx context.Context, name string) (*ingredient.CompoundProperties, error) {
	endpoint := fmt.Sprintf(
		"%s/rest/pug/compound/name/%s/property/MolecularFormula,MolecularWeight,IUPACName/JSON",
		c.baseURL, url.PathEscape(name),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch compound properties: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ingredient.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from property endpoint", resp.StatusCode)
	}

	var result propertyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode property response: %w", err)
	}

	if len(result.PropertyTable.Properties) == 0 {
		return nil, ingredient.ErrNotFound
	}

	return toCompound(&result.PropertyTable.Properties[0]), nil
}

// toCompound converts an API property record to the domain type.
func toCompound(p *compoundProperty) *ingredient.CompoundProperties {
	weight, _ := strconv.ParseFloat(p.MolecularWeight, 64)

	return &ingredient.CompoundProperties{
		CID:              p.CID,
		IUPACName:        p.IUPACName,
		MolecularFormula: p.MolecularFormula,
		MolecularWeight:  weight,
	}
}
