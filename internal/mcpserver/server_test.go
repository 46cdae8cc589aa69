package mcpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/internal/mcpserver"
	"github.com/tailored-agentic-units/stockagent/outcome"
	"github.com/tailored-agentic-units/stockagent/tools"
)

type stubTools struct {
	calls []protocol.ToolCall
}

func (s *stubTools) List() []protocol.Tool {
	return []protocol.Tool{{
		Name:        "get_stock_price",
		Description: "Get a stock price",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"symbol": map[string]any{"type": "string"}},
			"required":   []string{"symbol"},
		},
	}}
}

func (s *stubTools) Invoke(_ context.Context, call protocol.ToolCall) tools.Result {
	s.calls = append(s.calls, call)
	var args struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args.Symbol == "" {
		return tools.ErrorResult("symbol is required")
	}
	return tools.Result{Content: fmt.Sprintf(`{"symbol": %q, "price": "150.00"}`, args.Symbol)}
}

type stubAgent struct {
	out       outcome.Outcome
	sessionID string
}

func (a *stubAgent) Invoke(_ context.Context, sessionID, _ string) (outcome.Outcome, error) {
	a.sessionID = sessionID
	return a.out, nil
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

// call sends a JSON-RPC request through the server and decodes the result.
func call(t *testing.T, s *mcpserver.Server, method string, params any, out any) {
	t.Helper()
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), req)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  any             `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	require.Nil(t, envelope.Error, string(data))
	require.NoError(t, json.Unmarshal(envelope.Result, out))
}

func TestToolsList(t *testing.T) {
	s, err := mcpserver.New("stockagent", "test", &stubTools{}, &stubAgent{})
	require.NoError(t, err)

	var result struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	call(t, s, "tools/list", map[string]any{}, &result)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"get_stock_price", mcpserver.AskTool}, names)
}

func TestToolsList_WithoutAgent(t *testing.T) {
	s, err := mcpserver.New("stockagent", "test", &stubTools{}, nil)
	require.NoError(t, err)

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	call(t, s, "tools/list", map[string]any{}, &result)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, "get_stock_price", result.Tools[0].Name)
}

func TestCallRegistryTool(t *testing.T) {
	stub := &stubTools{}
	s, err := mcpserver.New("stockagent", "test", stub, nil)
	require.NoError(t, err)

	var result toolResult
	call(t, s, "tools/call", map[string]any{
		"name":      "get_stock_price",
		"arguments": map[string]any{"symbol": "AAPL"},
	}, &result)

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.JSONEq(t, `{"symbol": "AAPL", "price": "150.00"}`, result.Content[0].Text)
	require.Len(t, stub.calls, 1)
	assert.NotEmpty(t, stub.calls[0].ID)
}

func TestCallRegistryTool_Error(t *testing.T) {
	s, err := mcpserver.New("stockagent", "test", &stubTools{}, nil)
	require.NoError(t, err)

	var result toolResult
	call(t, s, "tools/call", map[string]any{
		"name":      "get_stock_price",
		"arguments": map[string]any{},
	}, &result)

	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "symbol is required")
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		out       outcome.Outcome
		sessionID string
		isError   bool
	}{
		{
			name:      "completed with session",
			args:      map[string]any{"query": "Price of AAPL?", "session_id": "s1"},
			out:       outcome.Outcome{Kind: outcome.Completed, Message: "AAPL is $150.00"},
			sessionID: "s1",
		},
		{
			name:      "default session",
			args:      map[string]any{"query": "Price?"},
			out:       outcome.Outcome{Kind: outcome.InputRequired, Message: "Which symbol?"},
			sessionID: mcpserver.DefaultSessionID,
		},
		{
			name:      "error outcome",
			args:      map[string]any{"query": "Price?"},
			out:       outcome.Unprocessable(),
			sessionID: mcpserver.DefaultSessionID,
			isError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &stubAgent{out: tt.out}
			s, err := mcpserver.New("stockagent", "test", &stubTools{}, agent)
			require.NoError(t, err)

			var result toolResult
			call(t, s, "tools/call", map[string]any{"name": mcpserver.AskTool, "arguments": tt.args}, &result)

			assert.Equal(t, tt.isError, result.IsError)
			assert.Equal(t, tt.sessionID, agent.sessionID)
			require.Len(t, result.Content, 1)

			var body map[string]string
			require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &body))
			assert.Equal(t, string(tt.out.Kind), body["status"])
			assert.Equal(t, tt.out.Message, body["message"])
		})
	}
}

func TestAsk_MissingQuery(t *testing.T) {
	s, err := mcpserver.New("stockagent", "test", &stubTools{}, &stubAgent{})
	require.NoError(t, err)

	var result toolResult
	call(t, s, "tools/call", map[string]any{"name": mcpserver.AskTool, "arguments": map[string]any{}}, &result)
	assert.True(t, result.IsError)
}
