// Package response defines the provider-neutral shape of a model reply.
package response

import "github.com/tailored-agentic-units/stockagent/core/protocol"

// Stop reasons reported by providers, normalized to a small vocabulary.
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
)

// ToolsResponse represents the reply to a tools (function calling) request.
// A reply carries either tool calls for the kernel to dispatch or final
// content; providers may return text alongside tool calls, which the kernel
// ignores.
type ToolsResponse struct {
	ID         string              `json:"id,omitempty"`
	Model      string              `json:"model"`
	Content    string              `json:"content"`
	ToolCalls  []protocol.ToolCall `json:"tool_calls,omitempty"`
	StopReason string              `json:"stop_reason,omitempty"`
	Usage      *TokenUsage         `json:"usage,omitempty"`
}

// TokenUsage reports token consumption for a single model request.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Total returns the combined input and output token count.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// HasToolCalls reports whether the model requested at least one tool call.
func (r *ToolsResponse) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}
