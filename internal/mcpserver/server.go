// Package mcpserver exposes the tool set and the agent itself to MCP clients.
// Every registered tool is published under its own name; the "ask" tool runs
// a full kernel invocation.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/kernel"
	"github.com/tailored-agentic-units/stockagent/outcome"
)

// AskTool is the name of the tool that runs an agent invocation.
const AskTool = "ask"

// DefaultSessionID is used by ask when the caller names no session.
const DefaultSessionID = "mcp"

// Agent runs invocations for the ask tool.
type Agent interface {
	Invoke(ctx context.Context, sessionID, query string) (outcome.Outcome, error)
}

// Server wraps an MCPServer bound to a tool executor and an agent.
type Server struct {
	tools     kernel.ToolExecutor
	agent     Agent
	mcpServer *server.MCPServer
}

// New creates a Server. A nil agent omits the ask tool.
func New(name, version string, tools kernel.ToolExecutor, a Agent) (*Server, error) {
	s := &Server{
		tools:     tools,
		agent:     a,
		mcpServer: server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	if a != nil {
		s.registerAsk()
	}
	return s, nil
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin and stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() error {
	for _, tool := range s.tools.List() {
		schema, err := json.Marshal(tool.Parameters)
		if err != nil {
			return fmt.Errorf("tool %s: encode schema: %w", tool.Name, err)
		}
		s.mcpServer.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, schema),
			s.toolHandler(tool.Name),
		)
	}
	return nil
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		res := s.tools.Invoke(ctx, protocol.NewToolCall(uuid.NewString(), name, string(args)))
		if res.IsError {
			return mcp.NewToolResultError(res.Content), nil
		}
		return mcp.NewToolResultText(res.Content), nil
	}
}

func (s *Server) registerAsk() {
	tool := mcp.NewTool(AskTool,
		mcp.WithDescription("Ask the stock and crypto assistant a question. Conversation state is kept per session_id."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question or instruction")),
		mcp.WithString("session_id", mcp.Description("Conversation identifier; defaults to \""+DefaultSessionID+"\"")),
	)
	s.mcpServer.AddTool(tool, s.handleAsk)
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID := request.GetString("session_id", DefaultSessionID)

	out, err := s.agent.Invoke(ctx, sessionID, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body, err := json.Marshal(map[string]string{
		"status":  string(out.Kind),
		"message": out.Message,
	})
	if err != nil {
		return nil, err
	}
	if out.Kind == outcome.Error {
		return mcp.NewToolResultError(string(body)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
