// Package mock provides a scripted Agent for tests.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/core/response"
)

// ErrNoReplies is returned when a MockAgent has no scripted replies.
var ErrNoReplies = errors.New("mock: no replies configured")

// Reply is one scripted result of a Tools call.
type Reply struct {
	Response *response.ToolsResponse
	Err      error
}

// Final scripts a reply carrying final content.
func Final(content string) Reply {
	return Reply{Response: &response.ToolsResponse{
		Model:      "mock",
		Content:    content,
		StopReason: response.StopEndTurn,
	}}
}

// ToolUse scripts a reply requesting the given tool calls.
func ToolUse(calls ...protocol.ToolCall) Reply {
	return Reply{Response: &response.ToolsResponse{
		Model:      "mock",
		ToolCalls:  calls,
		StopReason: response.StopToolUse,
	}}
}

// Failure scripts a provider error.
func Failure(err error) Reply {
	return Reply{Err: err}
}

// Option configures a MockAgent.
type Option func(*MockAgent)

// WithID sets the agent ID.
func WithID(id string) Option {
	return func(m *MockAgent) { m.id = id }
}

// WithReplies appends scripted replies.
func WithReplies(replies ...Reply) Option {
	return func(m *MockAgent) { m.replies = append(m.replies, replies...) }
}

// WithHook registers a function run at the start of every Tools call, before
// the reply is chosen. Tests use it to block or observe calls.
func WithHook(hook func(ctx context.Context, call int)) Option {
	return func(m *MockAgent) { m.hook = hook }
}

// MockAgent returns scripted replies in order. Once the script is exhausted
// the last reply repeats. Every call's messages are recorded.
type MockAgent struct {
	id      string
	hook    func(ctx context.Context, call int)
	mu      sync.Mutex
	replies []Reply
	calls   [][]protocol.Message
	tools   [][]protocol.Tool
}

// NewMockAgent creates a MockAgent.
func NewMockAgent(opts ...Option) *MockAgent {
	m := &MockAgent{id: "mock-agent"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockAgent) ID() string {
	return m.id
}

// Tools records the call and returns the next scripted reply.
func (m *MockAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error) {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, protocol.CloneMessages(messages))
	m.tools = append(m.tools, append([]protocol.Tool(nil), tools...))
	m.mu.Unlock()

	if m.hook != nil {
		m.hook(ctx, call)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.replies) == 0 {
		return nil, ErrNoReplies
	}
	reply := m.replies[min(call, len(m.replies)-1)]
	return reply.Response, reply.Err
}

// CallCount returns the number of Tools calls made.
func (m *MockAgent) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the messages sent on every call, in call order.
func (m *MockAgent) Calls() [][]protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]protocol.Message, len(m.calls))
	for i, c := range m.calls {
		out[i] = protocol.CloneMessages(c)
	}
	return out
}

// ToolsOffered returns the tool definitions sent on the given call.
func (m *MockAgent) ToolsOffered(call int) []protocol.Tool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if call < 0 || call >= len(m.tools) {
		return nil
	}
	return m.tools[call]
}
