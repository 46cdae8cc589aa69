// Package agent wraps language model providers behind a single tool-calling
// interface consumed by the kernel.
//
// The model is a black box: given the conversation and the available tools it
// returns either tool calls to dispatch or final content. Retry and backoff
// belong to the provider SDK.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/stockagent/agent/providers"
	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/core/response"
)

// Agent sends a conversation to a model and returns its reply.
type Agent interface {
	ID() string
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error)
}

// Provider is the model backend an Agent delegates to.
type Provider interface {
	Name() string
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error)
}

type agent struct {
	id       string
	model    string
	provider Provider
}

// New creates an Agent for the provider named in cfg.
func New(cfg *Config) (Agent, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case "anthropic":
		p, err = providers.NewAnthropic(providers.AnthropicConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   cfg.Timeout,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return FromProvider(p, cfg.Model), nil
}

// FromProvider wraps an already constructed Provider.
func FromProvider(p Provider, model string) Agent {
	return &agent{
		id:       uuid.NewString(),
		model:    model,
		provider: p,
	}
}

func (a *agent) ID() string {
	return a.id
}

func (a *agent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error) {
	resp, err := a.provider.Tools(ctx, messages, tools)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.provider.Name(), err)
	}

	if resp == nil || (!resp.HasToolCalls() && resp.Content == "") {
		return nil, ErrEmptyResponse
	}

	if resp.Model == "" {
		resp.Model = a.model
	}
	return resp, nil
}
