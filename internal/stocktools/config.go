package stocktools

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/stockagent/internal/brokerage"
	"github.com/tailored-agentic-units/stockagent/internal/quotes"
	"github.com/tailored-agentic-units/stockagent/tools"
)

// Config holds upstream endpoints and credentials for the tool set.
// Credentials are never read from or written to config files.
type Config struct {
	QuotesBaseURL    string        `json:"quotes_base_url,omitempty" yaml:"quotes_base_url,omitempty"`
	BrokerageBaseURL string        `json:"brokerage_base_url,omitempty" yaml:"brokerage_base_url,omitempty"`
	Timeout          time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	AlphaVantageAPIKey  string `json:"-" yaml:"-"`
	RobinhoodAPIKey     string `json:"-" yaml:"-"`
	RobinhoodPrivateKey string `json:"-" yaml:"-"`
}

// DefaultConfig returns the public upstream endpoints.
func DefaultConfig() Config {
	return Config{
		QuotesBaseURL:    quotes.DefaultBaseURL,
		BrokerageBaseURL: brokerage.DefaultBaseURL,
		Timeout:          15 * time.Second,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.QuotesBaseURL != "" {
		c.QuotesBaseURL = source.QuotesBaseURL
	}
	if source.BrokerageBaseURL != "" {
		c.BrokerageBaseURL = source.BrokerageBaseURL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
	if source.AlphaVantageAPIKey != "" {
		c.AlphaVantageAPIKey = source.AlphaVantageAPIKey
	}
	if source.RobinhoodAPIKey != "" {
		c.RobinhoodAPIKey = source.RobinhoodAPIKey
	}
	if source.RobinhoodPrivateKey != "" {
		c.RobinhoodPrivateKey = source.RobinhoodPrivateKey
	}
}

// FromConfig builds the registry with clients for cfg. Missing Robinhood
// credentials leave the brokerage tools registered; their calls then report
// brokerage.ErrNotConfigured to the model.
func FromConfig(cfg *Config) (*tools.Registry, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var signer *brokerage.Signer
	if cfg.RobinhoodAPIKey != "" && cfg.RobinhoodPrivateKey != "" {
		s, err := brokerage.NewSigner(cfg.RobinhoodAPIKey, cfg.RobinhoodPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create brokerage signer: %w", err)
		}
		signer = s
	}

	return NewRegistry(
		quotes.NewClient(cfg.QuotesBaseURL, cfg.AlphaVantageAPIKey, httpClient),
		brokerage.NewClient(cfg.BrokerageBaseURL, signer, httpClient),
	)
}
