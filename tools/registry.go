// Package tools holds the immutable set of tools the model may call.
//
// A Registry is built once at startup and never mutated. Tool failures are
// data, not control flow: Invoke turns every failure into an error payload
// that is fed back to the model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the LLM.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next LLM turn.
// IsError signals to the LLM that the tool invocation failed.
type Result struct {
	Content string
	IsError bool
}

// Definition pairs a tool's schema with its handler.
type Definition struct {
	Tool    protocol.Tool
	Handler Handler
}

// Registry is an immutable mapping from tool name to handler. Safe for
// concurrent use without locking.
type Registry struct {
	entries map[string]Definition
	order   []string
}

// New builds a Registry from defs, preserving their order for List.
// Returns ErrEmptyName or ErrAlreadyExists for invalid definitions.
func New(defs ...Definition) (*Registry, error) {
	r := &Registry{
		entries: make(map[string]Definition, len(defs)),
		order:   make([]string, 0, len(defs)),
	}

	for _, d := range defs {
		if d.Tool.Name == "" {
			return nil, ErrEmptyName
		}
		if _, exists := r.entries[d.Tool.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, d.Tool.Name)
		}
		r.entries[d.Tool.Name] = d
		r.order = append(r.order, d.Tool.Name)
	}

	return r, nil
}

// Get retrieves a tool definition by name.
func (r *Registry) Get(name string) (protocol.Tool, bool) {
	d, exists := r.entries[name]
	return d.Tool, exists
}

// List returns the definitions of all tools in registration order.
func (r *Registry) List() []protocol.Tool {
	tools := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].Tool)
	}
	return tools
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Execute dispatches a tool call to the registered handler by name.
// Returns ErrNotFound if the tool is not registered.
// Handler errors are wrapped with the tool name for context.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	d, exists := r.entries[name]
	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	result, err := d.Handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}

// Invoke runs a model-requested tool call and always returns a Result.
// Unknown tools, handler errors, and handler panics become an error payload
// with IsError set.
func (r *Registry) Invoke(ctx context.Context, call protocol.ToolCall) (result Result) {
	d, exists := r.entries[call.Name]
	if !exists {
		return ErrorResult(fmt.Sprintf("%s: %s", ErrNotFound, call.Name))
	}

	defer func() {
		if p := recover(); p != nil {
			result = ErrorResult(fmt.Sprintf("tool %s panicked: %v", call.Name, p))
		}
	}()

	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	res, err := d.Handler(ctx, args)
	if err != nil {
		return ErrorResult(err.Error())
	}
	return res
}

// ErrorResult builds the {"error": msg} payload returned for failed tools.
func ErrorResult(msg string) Result {
	data, _ := json.Marshal(map[string]string{"error": msg})
	return Result{Content: string(data), IsError: true}
}
