// Package quotes fetches equity quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint.
package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the Alpha Vantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Errors surfaced to the model as tool error payloads.
var (
	ErrSymbolRequired = errors.New("symbol is required")
	ErrNotFound       = errors.New("Invalid API response format or symbol not found.")
	ErrInvalidJSON    = errors.New("Invalid JSON response from API.")
)

// Quote is the "Global Quote" object keyed by Alpha Vantage's numbered field
// names.
type Quote map[string]string

// Client queries Alpha Vantage.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL and a
// nil httpClient selects http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// GlobalQuote returns the latest quote for symbol.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrSymbolRequired
	}

	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("API request failed: unexpected status %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrInvalidJSON
	}

	raw, ok := payload["Global Quote"]
	if !ok {
		return nil, ErrNotFound
	}

	var quote Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, ErrInvalidJSON
	}
	return quote, nil
}
