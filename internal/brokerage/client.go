// Package brokerage is a client for the Robinhood Crypto Trading API.
package brokerage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// DefaultBaseURL is the Robinhood Crypto Trading API host.
const DefaultBaseURL = "https://trading.robinhood.com"

// Order sides and types accepted by PlaceOrder.
var (
	Sides      = []string{"buy", "sell"}
	OrderTypes = []string{"limit", "market", "stop_limit", "stop_loss"}
)

// Sentinel errors for request validation.
var (
	ErrNotConfigured    = errors.New("brokerage credentials are not configured")
	ErrInvalidSide      = errors.New("invalid order side")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrSymbolRequired   = errors.New("symbol is required")
)

// Client calls the Robinhood Crypto Trading API with signed requests.
type Client struct {
	baseURL    string
	signer     *Signer
	httpClient *http.Client
}

// NewClient creates a Client. A nil signer yields a client whose calls fail
// with ErrNotConfigured.
func NewClient(baseURL string, signer *Signer, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signer:     signer,
		httpClient: httpClient,
	}
}

// Account returns the trading account.
func (c *Client) Account(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/api/v1/crypto/trading/accounts/", nil, &out)
	return out, err
}

// Holdings returns holdings, optionally filtered by asset code.
func (c *Client) Holdings(ctx context.Context, assetCodes ...string) (map[string]any, error) {
	path := "/api/v1/crypto/trading/holdings/" + queryString("asset_code", assetCodes)

	var out map[string]any
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// BestBidAsk returns the best bid and ask for the given trading pairs.
func (c *Client) BestBidAsk(ctx context.Context, symbols ...string) (map[string]any, error) {
	path := "/api/v1/crypto/marketdata/best_bid_ask/" + queryString("symbol", symbols)

	var out map[string]any
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// OrderRequest describes a new order. Config is sent as
// "<order_type>_order_config".
type OrderRequest struct {
	ClientOrderID string
	Side          string
	OrderType     string
	Symbol        string
	Config        map[string]string
}

// PlaceOrder submits an order.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (map[string]any, error) {
	if !slices.Contains(Sides, req.Side) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, req.Side)
	}
	if !slices.Contains(OrderTypes, req.OrderType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderType, req.OrderType)
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, ErrSymbolRequired
	}

	cfg := req.Config
	if cfg == nil {
		cfg = map[string]string{}
	}

	body := map[string]any{
		"client_order_id":               req.ClientOrderID,
		"side":                          req.Side,
		"type":                          req.OrderType,
		"symbol":                        req.Symbol,
		req.OrderType + "_order_config": cfg,
	}

	var out map[string]any
	err := c.do(ctx, http.MethodPost, "/api/v1/crypto/trading/orders/", body, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	if c.signer == nil {
		return ErrNotConfigured
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = encoded
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	for k, v := range c.signer.Headers(method, path, string(body)) {
		request.Header.Set(k, v)
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("robinhood API error (status %d): %s", e.StatusCode, e.Body)
}

func queryString(key string, values []string) string {
	params := url.Values{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			params.Add(key, v)
		}
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}
