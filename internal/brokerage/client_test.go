package brokerage_test

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/stockagent/internal/brokerage"
)

func newSigner(t *testing.T) (*brokerage.Signer, ed25519.PublicKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	s, err := brokerage.NewSigner("rh-api-key", base64.StdEncoding.EncodeToString(seed))
	require.NoError(t, err)
	return s, s.PublicKey()
}

// verify checks the request signature against the signed message layout.
func verify(t *testing.T, pub ed25519.PublicKey, r *http.Request, body string) {
	t.Helper()
	sig, err := base64.StdEncoding.DecodeString(r.Header.Get("x-signature"))
	require.NoError(t, err)

	message := r.Header.Get("x-api-key") + r.Header.Get("x-timestamp") + r.URL.RequestURI() + r.Method + body
	assert.True(t, ed25519.Verify(pub, []byte(message), sig), "signature does not verify")
	assert.Equal(t, "rh-api-key", r.Header.Get("x-api-key"))
	assert.NotEmpty(t, r.Header.Get("x-timestamp"))
}

func TestNewSigner_InvalidKey(t *testing.T) {
	_, err := brokerage.NewSigner("k", "not base64!")
	assert.ErrorIs(t, err, brokerage.ErrInvalidPrivateKey)

	_, err = brokerage.NewSigner("k", base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, brokerage.ErrInvalidPrivateKey)
}

func TestClient_Account(t *testing.T) {
	signer, pub := newSigner(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/crypto/trading/accounts/", r.URL.Path)
		verify(t, pub, r, "")
		_, _ = w.Write([]byte(`{"account_number":"123","buying_power":"1000.00"}`))
	}))
	defer srv.Close()

	c := brokerage.NewClient(srv.URL, signer, srv.Client())
	acct, err := c.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1000.00", acct["buying_power"])
}

func TestClient_Holdings_QueryParams(t *testing.T) {
	signer, pub := newSigner(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"BTC", "ETH"}, r.URL.Query()["asset_code"])
		verify(t, pub, r, "")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := brokerage.NewClient(srv.URL, signer, srv.Client()).Holdings(context.Background(), "BTC", "ETH")
	require.NoError(t, err)
}

func TestClient_BestBidAsk(t *testing.T) {
	signer, _ := newSigner(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/crypto/marketdata/best_bid_ask/", r.URL.Path)
		assert.Equal(t, []string{"BTC-USD"}, r.URL.Query()["symbol"])
		_, _ = w.Write([]byte(`{"results":[{"symbol":"BTC-USD","bid_inclusive_of_sell_spread":"60000"}]}`))
	}))
	defer srv.Close()

	out, err := brokerage.NewClient(srv.URL, signer, srv.Client()).BestBidAsk(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Len(t, out["results"], 1)
}

func TestClient_PlaceOrder(t *testing.T) {
	signer, pub := newSigner(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		verify(t, pub, r, string(body))

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "buy", req["side"])
		assert.Equal(t, "market", req["type"])
		assert.Equal(t, map[string]any{"asset_quantity": "0.1"}, req["market_order_config"])

		_, _ = w.Write([]byte(`{"id":"ord-1","state":"open"}`))
	}))
	defer srv.Close()

	out, err := brokerage.NewClient(srv.URL, signer, srv.Client()).PlaceOrder(context.Background(), brokerage.OrderRequest{
		ClientOrderID: "c-1",
		Side:          "buy",
		OrderType:     "market",
		Symbol:        "BTC-USD",
		Config:        map[string]string{"asset_quantity": "0.1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", out["id"])
}

func TestClient_PlaceOrder_Validation(t *testing.T) {
	signer, _ := newSigner(t)
	c := brokerage.NewClient("http://unused", signer, nil)

	_, err := c.PlaceOrder(context.Background(), brokerage.OrderRequest{Side: "hold", OrderType: "market", Symbol: "BTC-USD"})
	assert.ErrorIs(t, err, brokerage.ErrInvalidSide)

	_, err = c.PlaceOrder(context.Background(), brokerage.OrderRequest{Side: "buy", OrderType: "fok", Symbol: "BTC-USD"})
	assert.ErrorIs(t, err, brokerage.ErrInvalidOrderType)

	_, err = c.PlaceOrder(context.Background(), brokerage.OrderRequest{Side: "buy", OrderType: "market"})
	assert.ErrorIs(t, err, brokerage.ErrSymbolRequired)
}

func TestClient_APIError(t *testing.T) {
	signer, _ := newSigner(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"detail":"bad signature"}]}`))
	}))
	defer srv.Close()

	_, err := brokerage.NewClient(srv.URL, signer, srv.Client()).Account(context.Background())
	var apiErr *brokerage.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := brokerage.NewClient("", nil, nil).Account(context.Background())
	assert.ErrorIs(t, err, brokerage.ErrNotConfigured)
}
