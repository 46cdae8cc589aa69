package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/stockagent/manifest"
)

func TestNew_Defaults(t *testing.T) {
	card := manifest.New(manifest.DefaultConfig(), "http://localhost:8080/")

	assert.Equal(t, "StockAgent", card.Name)
	assert.Equal(t, "1.0.0", card.Version)
	assert.Equal(t, "http://localhost:8080/", card.URL)
	assert.Equal(t, []string{"text", "text/plain"}, card.DefaultInputModes)
	assert.Equal(t, []string{"text", "text/plain"}, card.DefaultOutputModes)
	assert.True(t, card.Capabilities.Streaming)
	assert.False(t, card.Capabilities.PushNotifications)

	ids := make([]string, 0, len(card.Skills))
	for _, s := range card.Skills {
		ids = append(ids, s.ID)
		assert.NotEmpty(t, s.Examples, s.ID)
		assert.NotEmpty(t, s.Tags, s.ID)
	}
	assert.Equal(t, []string{"get_stock_price", "get_holdings", "get_account_info", "get_best_bid_ask", "place_order"}, ids)
}

func TestNew_URLOverride(t *testing.T) {
	cfg := manifest.DefaultConfig()
	cfg.Merge(&manifest.Config{URL: "https://agent.example.com/"})

	card := manifest.New(cfg, "http://localhost:8080/")
	assert.Equal(t, "https://agent.example.com/", card.URL)
	assert.Equal(t, "StockAgent", card.Name)
}

func TestCard_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(manifest.New(manifest.DefaultConfig(), "http://h/"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"name", "description", "url", "version", "defaultInputModes", "defaultOutputModes", "capabilities", "skills"} {
		assert.Contains(t, raw, key)
	}
	caps := raw["capabilities"].(map[string]any)
	assert.Equal(t, true, caps["streaming"])
	assert.Equal(t, false, caps["pushNotifications"])
}
