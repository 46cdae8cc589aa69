// Package manifest describes the agent's capabilities to transport clients.
// The card is static metadata; nothing in it changes kernel behavior.
package manifest

// ContentTypes are the supported input and output modes.
var ContentTypes = []string{"text", "text/plain"}

// Skill is one advertised capability.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples"`
}

// Capabilities lists optional protocol features.
type Capabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

// Card is the agent capability manifest served at /.well-known/agent.json.
type Card struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	URL                string       `json:"url"`
	Version            string       `json:"version"`
	DefaultInputModes  []string     `json:"defaultInputModes"`
	DefaultOutputModes []string     `json:"defaultOutputModes"`
	Capabilities       Capabilities `json:"capabilities"`
	Skills             []Skill      `json:"skills"`
}

// Config holds the card fields an operator may override.
type Config struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DefaultConfig returns the StockAgent card settings.
func DefaultConfig() Config {
	return Config{
		Name:        "StockAgent",
		Description: "Helps with account information, stock prices, crypto best bid ask prices, crypto holdings, and crypto order placement",
		Version:     "1.0.0",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Description != "" {
		c.Description = source.Description
	}
	if source.Version != "" {
		c.Version = source.Version
	}
	if source.URL != "" {
		c.URL = source.URL
	}
}

// New builds the card. cfg.URL, when set, takes precedence over the listen
// address derived URL.
func New(cfg Config, listenURL string) Card {
	url := listenURL
	if cfg.URL != "" {
		url = cfg.URL
	}

	return Card{
		Name:               cfg.Name,
		Description:        cfg.Description,
		URL:                url,
		Version:            cfg.Version,
		DefaultInputModes:  ContentTypes,
		DefaultOutputModes: ContentTypes,
		Capabilities: Capabilities{
			Streaming: true,
		},
		Skills: Skills(),
	}
}

// Skills returns the advertised skills.
func Skills() []Skill {
	return []Skill{
		{
			ID:          "get_stock_price",
			Name:        "Stock Price Tool",
			Description: "Helps with stock prices and basic stock information",
			Tags:        []string{"stock price", "stock information"},
			Examples:    []string{"What is the stock price of AAPL?"},
		},
		{
			ID:          "get_holdings",
			Name:        "Holdings Tool",
			Description: "Helps with crypto holdings and basic crypto information",
			Tags:        []string{"holdings", "crypto"},
			Examples:    []string{"What are my current crypto holdings?"},
		},
		{
			ID:          "get_account_info",
			Name:        "Account Info Tool",
			Description: "Helps with account information and basic account details",
			Tags:        []string{"account info", "account details"},
			Examples:    []string{"What is my account information?"},
		},
		{
			ID:          "get_best_bid_ask",
			Name:        "Best Bid Ask Tool",
			Description: "Helps with getting current best bid and ask prices for crypto currencies",
			Tags:        []string{"best bid ask", "price"},
			Examples:    []string{"What is the best bid and ask for BTC-USD?"},
		},
		{
			ID:          "place_order",
			Name:        "Place Order Tool",
			Description: "Helps with placing crypto orders",
			Tags:        []string{"place order", "order placement"},
			Examples:    []string{"Place a market order for 1 BTC"},
		},
	}
}
