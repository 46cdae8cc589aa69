package memory

// Config holds memory source parameters.
type Config struct {
	Path       string   `json:"path,omitempty" yaml:"path,omitempty"`             // Document root; empty disables memory.
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"` // File suffixes to include.
}

// DefaultConfig returns the default memory configuration (disabled).
func DefaultConfig() Config {
	return Config{Extensions: []string{".md", ".txt"}}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
	if len(source.Extensions) > 0 {
		c.Extensions = source.Extensions
	}
}

// NewSource creates a Source from configuration. Returns a nil Source when
// Path is empty, indicating memory is disabled.
func NewSource(cfg *Config) Source {
	if cfg.Path == "" {
		return nil
	}
	return NewDirSource(cfg.Path, cfg.Extensions...)
}
