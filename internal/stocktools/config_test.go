package stocktools_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/internal/brokerage"
	"github.com/tailored-agentic-units/stockagent/internal/quotes"
	"github.com/tailored-agentic-units/stockagent/internal/stocktools"
)

func TestConfig_Merge(t *testing.T) {
	cfg := stocktools.DefaultConfig()
	assert.Equal(t, quotes.DefaultBaseURL, cfg.QuotesBaseURL)
	assert.Equal(t, brokerage.DefaultBaseURL, cfg.BrokerageBaseURL)

	cfg.Merge(&stocktools.Config{
		QuotesBaseURL:      "http://quotes.local",
		Timeout:            time.Second,
		AlphaVantageAPIKey: "av",
	})

	assert.Equal(t, "http://quotes.local", cfg.QuotesBaseURL)
	assert.Equal(t, brokerage.DefaultBaseURL, cfg.BrokerageBaseURL)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, "av", cfg.AlphaVantageAPIKey)
}

func TestFromConfig_WithoutBrokerageCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call to %s", r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	cfg := stocktools.DefaultConfig()
	cfg.BrokerageBaseURL = srv.URL

	r, err := stocktools.FromConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Len())

	res := r.Invoke(context.Background(), protocol.NewToolCall("1", stocktools.GetAccountInfo, "{}"))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, brokerage.ErrNotConfigured.Error())
}

func TestFromConfig_InvalidPrivateKey(t *testing.T) {
	cfg := stocktools.DefaultConfig()
	cfg.RobinhoodAPIKey = "key"
	cfg.RobinhoodPrivateKey = base64.StdEncoding.EncodeToString([]byte("short"))

	_, err := stocktools.FromConfig(&cfg)
	assert.ErrorIs(t, err, brokerage.ErrInvalidPrivateKey)
}
