package agent

import "time"

// Default model parameters.
const (
	DefaultProvider  = "anthropic"
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 1024
)

// Config holds the parameters used to construct an Agent.
// APIKey is never serialized; it is populated from the environment.
type Config struct {
	Provider  string        `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string        `json:"model,omitempty" yaml:"model,omitempty"`
	MaxTokens int64         `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	BaseURL   string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	APIKey    string        `json:"-" yaml:"-"`
}

// DefaultConfig returns the default agent configuration.
func DefaultConfig() Config {
	return Config{
		Provider:  DefaultProvider,
		Model:     DefaultModel,
		MaxTokens: DefaultMaxTokens,
		Timeout:   60 * time.Second,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
}
