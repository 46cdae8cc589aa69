// Package protocol defines the provider-neutral conversation types shared by
// the kernel, the session store, and model providers.
package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall represents a tool invocation requested by the model.
// Fields are flat (ID, Name, Arguments) for direct use across the kernel.
// UnmarshalJSON transparently handles the nested LLM API format
// (function.name, function.arguments) so provider responses decode correctly.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// NewToolCall creates a ToolCall from its identifier, tool name, and
// JSON-encoded arguments.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{ID: id, Name: name, Arguments: arguments}
}

// MarshalJSON serializes to the nested LLM API format ({type, function: {name, arguments}})
// ensuring round-trip fidelity with UnmarshalJSON for provider communication.
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	type function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	return json.Marshal(struct {
		ID       string   `json:"id"`
		Type     string   `json:"type"`
		Function function `json:"function"`
	}{
		ID:       tc.ID,
		Type:     "function",
		Function: function{Name: tc.Name, Arguments: tc.Arguments},
	})
}

// UnmarshalJSON handles both the nested LLM API format ({function: {name, arguments}})
// and the flat format ({name, arguments}).
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = nested.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// Message represents a single message sent to a model provider.
//
// Assistant messages carry ToolCalls when the model requested tools. Tool
// result messages carry the ToolCallID and Name of the call they answer and
// set IsError when the tool failed.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

// NewMessage creates a Message with the given role and content.
// Use struct literals directly when setting tool call fields.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "What is the stock price of AAPL?")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
