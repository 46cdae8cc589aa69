// Package stocktools defines the market data and brokerage tools offered to
// the model.
package stocktools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/stockagent/internal/brokerage"
	"github.com/tailored-agentic-units/stockagent/internal/quotes"
	"github.com/tailored-agentic-units/stockagent/tools"
)

// Tool names.
const (
	GetStockPrice       = "get_stock_price"
	GetHoldings         = "get_holdings"
	GetAccountInfo      = "get_account_info"
	GetCryptoBestBidAsk = "get_crypto_best_bid_ask"
	PlaceOrder          = "place_order"
)

// ErrInvalidClientOrderID is returned when a supplied client_order_id is not
// a UUID.
var ErrInvalidClientOrderID = errors.New("client_order_id must be a UUID")

type StockPriceInput struct {
	Symbol string `json:"symbol" jsonschema_description:"The stock symbol to look up (e.g., \"AAPL\")."`
}

type HoldingsInput struct {
	AssetCodes []string `json:"asset_codes,omitempty" jsonschema_description:"Asset codes to look up (e.g., \"BTC\", \"ETH\"). When empty, all crypto holdings are returned."`
}

type AccountInput struct{}

type BestBidAskInput struct {
	Symbols []string `json:"symbols" jsonschema_description:"Currency pair symbols to look up (e.g., \"BTC-USD\", \"ETH-USD\")."`
}

type PlaceOrderInput struct {
	ClientOrderID string            `json:"client_order_id,omitempty" jsonschema_description:"A unique UUID for the order. Generated when omitted."`
	Side          string            `json:"side" jsonschema:"enum=buy,enum=sell" jsonschema_description:"The side of the order."`
	OrderType     string            `json:"order_type" jsonschema:"enum=limit,enum=market,enum=stop_limit,enum=stop_loss" jsonschema_description:"The type of order."`
	Symbol        string            `json:"symbol" jsonschema_description:"The currency pair symbol (e.g., \"BTC-USD\")."`
	OrderConfig   map[string]string `json:"order_config" jsonschema_description:"The order configuration, e.g. {\"asset_quantity\": \"0.1\"}."`
}

// Definitions returns the five tools bound to the given clients, in the order
// they are offered to the model.
func Definitions(q *quotes.Client, b *brokerage.Client) []tools.Definition {
	return []tools.Definition{
		tools.Typed(GetStockPrice,
			"Use this to get current stock price and basic information.",
			func(ctx context.Context, in StockPriceInput) (quotes.Quote, error) {
				return q.GlobalQuote(ctx, in.Symbol)
			}),
		tools.Typed(GetHoldings,
			"Use this to get current holdings. If no asset codes are provided, all crypto holdings will be returned.",
			func(ctx context.Context, in HoldingsInput) (map[string]any, error) {
				return b.Holdings(ctx, in.AssetCodes...)
			}),
		tools.Typed(GetAccountInfo,
			"Use this to get current account information.",
			func(ctx context.Context, _ AccountInput) (map[string]any, error) {
				return b.Account(ctx)
			}),
		tools.Typed(GetCryptoBestBidAsk,
			"Use this to get current best bid and ask prices.",
			func(ctx context.Context, in BestBidAskInput) (map[string]any, error) {
				return b.BestBidAsk(ctx, in.Symbols...)
			}),
		tools.Typed(PlaceOrder,
			"Use this to place a crypto order.",
			func(ctx context.Context, in PlaceOrderInput) (map[string]any, error) {
				id, err := clientOrderID(in.ClientOrderID)
				if err != nil {
					return nil, err
				}
				return b.PlaceOrder(ctx, brokerage.OrderRequest{
					ClientOrderID: id,
					Side:          in.Side,
					OrderType:     in.OrderType,
					Symbol:        in.Symbol,
					Config:        in.OrderConfig,
				})
			}),
	}
}

// NewRegistry builds the tool registry.
func NewRegistry(q *quotes.Client, b *brokerage.Client) (*tools.Registry, error) {
	return tools.New(Definitions(q, b)...)
}

func clientOrderID(id string) (string, error) {
	if id == "" {
		return uuid.NewString(), nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClientOrderID, id)
	}
	return parsed.String(), nil
}
