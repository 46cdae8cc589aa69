package session

import "fmt"

// BackendMemory selects the in-memory store.
const BackendMemory = "memory"

// Config holds session store parameters.
type Config struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
}

// New creates a Store from configuration.
func New(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
