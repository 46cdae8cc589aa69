package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/stockagent/agent"
	"github.com/tailored-agentic-units/stockagent/internal/stocktools"
	"github.com/tailored-agentic-units/stockagent/manifest"
	"github.com/tailored-agentic-units/stockagent/memory"
	"github.com/tailored-agentic-units/stockagent/session"
)

const (
	defaultMaxIterations    = 10
	defaultMaxParallelTools = 4
)

// DefaultSystemPrompt instructs the model to answer with the tools and to
// close every task with the structured response object read by
// outcome.Extract.
const DefaultSystemPrompt = `You are a specialized assistant for stocks and crypto. Your sole purpose is to use the provided tools to answer questions about stock prices, crypto holdings, account information, crypto best bid and ask prices, and to place crypto orders.

The tools are:
- get_stock_price: current price and basic information for a stock symbol
- get_holdings: current crypto holdings, optionally filtered by asset code
- get_account_info: current trading account information
- get_crypto_best_bid_ask: current best bid and ask prices for crypto symbols
- place_order: place a crypto order

Always use the tools to answer the user's questions. If the user asks about anything else, politely state that you cannot help with that topic and can only assist with stock and crypto queries.

When you are done, reply with only a JSON object of the form {"status": "<status>", "message": "<message>"}.
Set status to "input_required" if the user needs to provide more information, "completed" if the request is complete, and "error" if there is an error processing the request.`

// ServerConfig holds transport listen settings.
type ServerConfig struct {
	Host            string        `json:"host,omitempty" yaml:"host,omitempty"`
	Port            int           `json:"port,omitempty" yaml:"port,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// URL returns the base URL advertised in the agent card.
func (c ServerConfig) URL() string {
	return fmt.Sprintf("http://%s:%d/", c.Host, c.Port)
}

// Merge applies non-zero values from source into c.
func (c *ServerConfig) Merge(source *ServerConfig) {
	if source.Host != "" {
		c.Host = source.Host
	}
	if source.Port > 0 {
		c.Port = source.Port
	}
	if source.ShutdownTimeout > 0 {
		c.ShutdownTimeout = source.ShutdownTimeout
	}
}

// Config holds initialization parameters for all kernel subsystems.
// Each subsystem section delegates to that subsystem's config-driven constructor.
type Config struct {
	Agent            agent.Config            `json:"agent" yaml:"agent"`
	Agents           map[string]agent.Config `json:"agents,omitempty" yaml:"agents,omitempty"`
	DefaultAgent     string                  `json:"default_agent,omitempty" yaml:"default_agent,omitempty"`
	Session          session.Config          `json:"session" yaml:"session"`
	Memory           memory.Config           `json:"memory" yaml:"memory"`
	Tools            stocktools.Config       `json:"tools" yaml:"tools"`
	Server           ServerConfig            `json:"server" yaml:"server"`
	Manifest         manifest.Config         `json:"manifest" yaml:"manifest"`
	Observers        []string                `json:"observers,omitempty" yaml:"observers,omitempty"`
	MaxIterations    int                     `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`
	MaxParallelTools int                     `json:"max_parallel_tools,omitempty" yaml:"max_parallel_tools,omitempty"`
	SystemPrompt     string                  `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:   agent.DefaultConfig(),
		Session: session.DefaultConfig(),
		Memory:  memory.DefaultConfig(),
		Tools:   stocktools.DefaultConfig(),
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Manifest:         manifest.DefaultConfig(),
		MaxIterations:    defaultMaxIterations,
		MaxParallelTools: defaultMaxParallelTools,
		SystemPrompt:     DefaultSystemPrompt,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)
	c.Memory.Merge(&source.Memory)
	c.Tools.Merge(&source.Tools)
	c.Server.Merge(&source.Server)
	c.Manifest.Merge(&source.Manifest)

	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
	if source.MaxParallelTools > 0 {
		c.MaxParallelTools = source.MaxParallelTools
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}

	if len(source.Agents) > 0 {
		c.Agents = source.Agents
	}
	if source.DefaultAgent != "" {
		c.DefaultAgent = source.DefaultAgent
	}
	if len(source.Observers) > 0 {
		c.Observers = source.Observers
	}
}

// LoadConfig reads a JSON or YAML config file (selected by extension), merges
// it with defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
