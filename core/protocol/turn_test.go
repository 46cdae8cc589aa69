package protocol_test

import (
	"testing"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
)

func TestTurnConstructors(t *testing.T) {
	call := protocol.NewToolCall("c1", "get_stock_price", `{"symbol":"AAPL"}`)

	tests := []struct {
		name string
		turn protocol.Turn
		kind protocol.TurnKind
	}{
		{"user", protocol.UserMessage("hi"), protocol.TurnUserMessage},
		{"assistant", protocol.AssistantMessage("done"), protocol.TurnAssistantMessage},
		{"request", protocol.ToolRequest(1, call), protocol.TurnToolRequest},
		{"result", protocol.ToolResult(1, call, `{"price":"150.00"}`, false), protocol.TurnToolResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.turn.Kind != tt.kind {
				t.Errorf("got kind %q, want %q", tt.turn.Kind, tt.kind)
			}
		})
	}
}

func TestBuildMessages_SystemPrompt(t *testing.T) {
	msgs := protocol.BuildMessages("be helpful", []protocol.Turn{protocol.UserMessage("hi")})

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != protocol.RoleSystem || msgs[0].Content != "be helpful" {
		t.Errorf("first message = %+v, want system prompt", msgs[0])
	}
	if msgs[1].Role != protocol.RoleUser || msgs[1].Content != "hi" {
		t.Errorf("second message = %+v, want user message", msgs[1])
	}
}

func TestBuildMessages_NoSystemPrompt(t *testing.T) {
	msgs := protocol.BuildMessages("", []protocol.Turn{protocol.UserMessage("hi")})
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
}

func TestBuildMessages_GroupsToolRound(t *testing.T) {
	a := protocol.NewToolCall("a", "get_stock_price", `{"symbol":"AAPL"}`)
	b := protocol.NewToolCall("b", "get_account_info", `{}`)

	turns := []protocol.Turn{
		protocol.UserMessage("price and account"),
		protocol.ToolRequest(1, a),
		protocol.ToolResult(1, a, `{"price":"150.00"}`, false),
		protocol.ToolRequest(1, b),
		protocol.ToolResult(1, b, `{"error":"unauthorized"}`, true),
		protocol.AssistantMessage(`{"status":"completed","message":"ok"}`),
	}

	msgs := protocol.BuildMessages("", turns)

	wantRoles := []protocol.Role{
		protocol.RoleUser,
		protocol.RoleAssistant,
		protocol.RoleTool,
		protocol.RoleTool,
		protocol.RoleAssistant,
	}
	if len(msgs) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(wantRoles))
	}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Errorf("message %d: got role %q, want %q", i, msgs[i].Role, role)
		}
	}

	if len(msgs[1].ToolCalls) != 2 {
		t.Fatalf("assistant message: got %d tool calls, want 2", len(msgs[1].ToolCalls))
	}
	if msgs[1].ToolCalls[0].ID != "a" || msgs[1].ToolCalls[1].ID != "b" {
		t.Errorf("tool calls out of order: %+v", msgs[1].ToolCalls)
	}
	if msgs[2].ToolCallID != "a" || msgs[2].IsError {
		t.Errorf("first result = %+v", msgs[2])
	}
	if msgs[3].ToolCallID != "b" || !msgs[3].IsError || msgs[3].Name != "get_account_info" {
		t.Errorf("second result = %+v", msgs[3])
	}
}

func TestBuildMessages_SplitsRounds(t *testing.T) {
	a := protocol.NewToolCall("a", "get_holdings", `{}`)
	b := protocol.NewToolCall("b", "get_crypto_best_bid_ask", `{"symbols":["BTC-USD"]}`)

	turns := []protocol.Turn{
		protocol.UserMessage("q"),
		protocol.ToolRequest(1, a),
		protocol.ToolResult(1, a, "{}", false),
		protocol.ToolRequest(2, b),
		protocol.ToolResult(2, b, "{}", false),
	}

	msgs := protocol.BuildMessages("", turns)
	if len(msgs) != 5 {
		t.Fatalf("got %d messages, want 5", len(msgs))
	}
	if len(msgs[1].ToolCalls) != 1 || len(msgs[3].ToolCalls) != 1 {
		t.Errorf("expected one tool call per round, got %d and %d", len(msgs[1].ToolCalls), len(msgs[3].ToolCalls))
	}
}

func TestCloneMessages_DefensiveCopy(t *testing.T) {
	in := []protocol.Message{{
		Role:      protocol.RoleAssistant,
		ToolCalls: []protocol.ToolCall{protocol.NewToolCall("a", "original", "{}")},
	}}

	out := protocol.CloneMessages(in)
	out[0].ToolCalls[0].Name = "tampered"

	if in[0].ToolCalls[0].Name != "original" {
		t.Errorf("clone shares tool calls with input")
	}
}
