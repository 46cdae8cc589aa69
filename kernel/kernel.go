// Package kernel implements the per-session task execution loop that composes
// agent, tools, session, and memory into the query/dispatch/resolve cycle.
//
// The kernel initializes from configuration via New, creating all subsystems
// internally. Functional options allow test overrides of any subsystem.
//
//	k, err := kernel.New(&cfg)
//	out, err := k.Invoke(ctx, "s1", "What is the stock price of AAPL?")
package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	conciter "github.com/sourcegraph/conc/iter"

	"github.com/tailored-agentic-units/stockagent/agent"
	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/internal/stocktools"
	"github.com/tailored-agentic-units/stockagent/memory"
	"github.com/tailored-agentic-units/stockagent/observability"
	"github.com/tailored-agentic-units/stockagent/outcome"
	"github.com/tailored-agentic-units/stockagent/session"
	"github.com/tailored-agentic-units/stockagent/tools"
)

// Result holds the details of one invocation.
type Result struct {
	Outcome    outcome.Outcome  // Terminal outcome, also stored on the session.
	Iterations int              // Number of model queries made.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
	Cause      error            // Diagnostic behind a kernel-produced Error outcome. Never shown to callers.
}

type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int           // Loop cycle in which the call occurred.
	Result    string        // Tool output or error payload.
	IsError   bool          // Whether the call failed.
	Duration  time.Duration // Wall time of the call.
}

// ToolExecutor abstracts tool listing and invocation for testability.
// *tools.Registry is the production implementation.
type ToolExecutor interface {
	List() []protocol.Tool
	Invoke(ctx context.Context, call protocol.ToolCall) tools.Result
}

// Option configures a Kernel after config-driven initialization.
// Applied by New after cold start; overrides replace config-created defaults.
type Option func(*Kernel)

// WithAgent overrides the config-created agent.
func WithAgent(a agent.Agent) Option {
	return func(k *Kernel) { k.agent = a }
}

// WithRegistry overrides the config-created agent registry.
func WithRegistry(r *agent.Registry) Option {
	return func(k *Kernel) { k.registry = r }
}

// WithStore overrides the config-created session store.
func WithStore(s session.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithToolExecutor overrides the config-created tool registry.
func WithToolExecutor(e ToolExecutor) Option {
	return func(k *Kernel) { k.tools = e }
}

// WithMemorySource overrides the config-created memory source.
func WithMemorySource(s memory.Source) Option {
	return func(k *Kernel) { k.memory = s }
}

// WithObserver overrides the config-resolved observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// Kernel runs invocations against per-session conversation state.
// Invocations on different sessions run concurrently; invocations on the same
// session are serialized by the store's session lock.
type Kernel struct {
	agent            agent.Agent
	registry         *agent.Registry
	store            session.Store
	tools            ToolExecutor
	memory           memory.Source
	observer         observability.Observer
	maxIterations    int
	maxParallelTools int
	systemPrompt     string
}

// New creates a Kernel from configuration. Subsystems (agent, session, tools,
// memory, observers) are initialized from their respective config sections.
// Functional options applied after initialization can override any subsystem
// for testing.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	reg := agent.NewRegistry()
	for name, agentCfg := range cfg.Agents {
		if err := reg.Register(name, agentCfg); err != nil {
			return nil, fmt.Errorf("failed to register agent %q: %w", name, err)
		}
	}

	var (
		a   agent.Agent
		err error
	)
	if cfg.DefaultAgent != "" {
		a, err = reg.Get(cfg.DefaultAgent)
	} else {
		a, err = agent.New(&cfg.Agent)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	store, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	toolset, err := stocktools.FromConfig(&cfg.Tools)
	if err != nil {
		return nil, fmt.Errorf("failed to create tools: %w", err)
	}

	observer, err := observability.Resolve(cfg.Observers...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observers: %w", err)
	}

	k := &Kernel{
		agent:            a,
		registry:         reg,
		store:            store,
		tools:            toolset,
		memory:           memory.NewSource(&cfg.Memory),
		observer:         observer,
		maxIterations:    cfg.MaxIterations,
		maxParallelTools: cfg.MaxParallelTools,
		systemPrompt:     cfg.SystemPrompt,
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.maxIterations <= 0 {
		k.maxIterations = defaultMaxIterations
	}
	if k.maxParallelTools <= 0 {
		k.maxParallelTools = defaultMaxParallelTools
	}

	return k, nil
}

// Registry returns the kernel's agent registry.
func (k *Kernel) Registry() *agent.Registry {
	return k.registry
}

// Store returns the kernel's session store.
func (k *Kernel) Store() session.Store {
	return k.store
}

// Tools returns the kernel's tool executor.
func (k *Kernel) Tools() ToolExecutor {
	return k.tools
}

// Invoke runs the loop to completion and returns the session's new outcome.
// The error is non-nil only for an empty session id or cancellation; every
// other failure is reported as an outcome.Error outcome.
func (k *Kernel) Invoke(ctx context.Context, sessionID, query string) (outcome.Outcome, error) {
	result, err := k.Run(ctx, sessionID, query)
	if err != nil {
		return outcome.Outcome{}, err
	}
	return result.Outcome, nil
}

// Run is Invoke with the full invocation record.
func (k *Kernel) Run(ctx context.Context, sessionID, query string) (*Result, error) {
	return k.run(ctx, "kernel.Invoke", sessionID, query, nil)
}

// Reset discards a session's history and outcome once any in-flight
// invocation on it has finished.
func (k *Kernel) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	unlock, err := k.store.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	return k.store.Delete(ctx, sessionID)
}

// Sessions lists the ids of the sessions the store holds.
func (k *Kernel) Sessions(ctx context.Context) ([]string, error) {
	return k.store.IDs(ctx)
}

// Agents describes the named agents from configuration.
func (k *Kernel) Agents() []agent.AgentInfo {
	return k.registry.List()
}

// run is the loop shared by Invoke and Stream. progress, when non-nil,
// receives in-progress events; it is called from the invoking goroutine only.
func (k *Kernel) run(ctx context.Context, source, sessionID, query string, progress func(ProgressEvent)) (*Result, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	unlock, err := k.store.Lock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	start := time.Now()
	toolList := k.tools.List()
	result := &Result{}

	observability.Emit(ctx, k.observer, EventInvokeStart, observability.LevelInfo, source, map[string]any{
		"session_id":     sessionID,
		"query_length":   len(query),
		"max_iterations": k.maxIterations,
		"tools":          len(toolList),
	})

	if _, err := k.store.GetOrCreate(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	if err := k.store.Append(ctx, sessionID, protocol.UserMessage(query)); err != nil {
		return nil, fmt.Errorf("failed to record query: %w", err)
	}

	system, err := k.systemContent(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return k.canceled(ctx, source, sessionID, result)
		}
		observability.Emit(ctx, k.observer, EventError, observability.LevelWarning, source, map[string]any{
			observability.KeyReason: "memory",
			observability.KeyError:  err.Error(),
		})
	}

	for iteration := 1; ; iteration++ {
		if ctx.Err() != nil {
			return k.canceled(ctx, source, sessionID, result)
		}

		observability.Emit(ctx, k.observer, EventIterationStart, observability.LevelVerbose, source, map[string]any{
			"iteration": iteration,
		})

		turns, err := k.store.Turns(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}

		modelStart := time.Now()
		resp, err := k.agent.Tools(ctx, protocol.BuildMessages(system, turns), toolList)
		result.Iterations = iteration
		if err != nil {
			if ctx.Err() != nil {
				return k.canceled(ctx, source, sessionID, result)
			}
			return k.resolve(ctx, source, sessionID, start, result, outcome.Unprocessable(), reasonModel,
				fmt.Errorf("agent call failed: %w", err))
		}

		data := map[string]any{
			"iteration":                 iteration,
			"tool_calls":                len(resp.ToolCalls),
			observability.KeyDurationMS: time.Since(modelStart).Milliseconds(),
		}
		if resp.Usage != nil {
			data["tokens"] = resp.Usage.Total()
		}
		observability.Emit(ctx, k.observer, EventModelResponse, observability.LevelVerbose, source, data)

		if !resp.HasToolCalls() {
			if err := k.store.Append(context.WithoutCancel(ctx), sessionID, protocol.AssistantMessage(resp.Content)); err != nil {
				return nil, fmt.Errorf("failed to record reply: %w", err)
			}

			out, err := outcome.Extract(resp.Content)
			if err != nil {
				return k.resolve(ctx, source, sessionID, start, result, out, reasonSchemaViolation, err)
			}
			return k.resolve(ctx, source, sessionID, start, result, out, "", nil)
		}

		// Tool calls requested on the last iteration are not run: the model
		// could never observe their results.
		if iteration == k.maxIterations {
			if ctx.Err() != nil {
				return k.canceled(ctx, source, sessionID, result)
			}
			return k.resolve(ctx, source, sessionID, start, result, outcome.Unprocessable(), reasonMaxIterations, ErrMaxIterations)
		}

		progress(ProgressEvent{Content: ProgressLookingUp})

		records := k.dispatch(ctx, source, iteration, resp.ToolCalls)

		pairs := make([]protocol.Turn, 0, 2*len(records))
		for _, r := range records {
			pairs = append(pairs,
				protocol.ToolRequest(iteration, r.ToolCall),
				protocol.ToolResult(iteration, r.ToolCall, r.Result, r.IsError),
			)
		}
		if err := k.store.Append(context.WithoutCancel(ctx), sessionID, pairs...); err != nil {
			return nil, fmt.Errorf("failed to record tool results: %w", err)
		}
		result.ToolCalls = append(result.ToolCalls, records...)

		for range records {
			progress(ProgressEvent{Content: ProgressProcessing})
		}
	}
}

// dispatch invokes calls concurrently, bounded by maxParallelTools, and
// returns their records in request order.
func (k *Kernel) dispatch(ctx context.Context, source string, iteration int, calls []protocol.ToolCall) []ToolCallRecord {
	mapper := conciter.Mapper[protocol.ToolCall, ToolCallRecord]{
		MaxGoroutines: k.maxParallelTools,
	}

	return mapper.Map(calls, func(call *protocol.ToolCall) ToolCallRecord {
		observability.Emit(ctx, k.observer, EventToolCall, observability.LevelVerbose, source, map[string]any{
			"iteration":           iteration,
			observability.KeyTool: call.Name,
		})

		start := time.Now()
		res := k.tools.Invoke(ctx, *call)
		record := ToolCallRecord{
			ToolCall:  *call,
			Iteration: iteration,
			Result:    res.Content,
			IsError:   res.IsError,
			Duration:  time.Since(start),
		}

		observability.Emit(ctx, k.observer, EventToolComplete, observability.LevelVerbose, source, map[string]any{
			"iteration":                 iteration,
			observability.KeyTool:       call.Name,
			observability.KeyError:      record.IsError,
			observability.KeyDurationMS: record.Duration.Milliseconds(),
		})

		return record
	})
}

// resolve stores the terminal outcome. A non-empty reason marks a
// kernel-produced Error outcome whose cause is logged, not returned.
func (k *Kernel) resolve(ctx context.Context, source, sessionID string, start time.Time, result *Result, out outcome.Outcome, reason string, cause error) (*Result, error) {
	if cause != nil {
		observability.Emit(ctx, k.observer, EventError, observability.LevelWarning, source, map[string]any{
			observability.KeyReason: reason,
			observability.KeyError:  cause.Error(),
			"iterations":            result.Iterations,
		})
	}

	if err := k.store.SetOutcome(context.WithoutCancel(ctx), sessionID, out); err != nil {
		return nil, fmt.Errorf("failed to record outcome: %w", err)
	}

	result.Outcome = out
	result.Cause = cause

	observability.Emit(ctx, k.observer, EventInvokeComplete, observability.LevelInfo, source, map[string]any{
		observability.KeyOutcome:    string(out.Kind),
		"iterations":                result.Iterations,
		"tool_calls":                len(result.ToolCalls),
		observability.KeyDurationMS: time.Since(start).Milliseconds(),
	})

	return result, nil
}

func (k *Kernel) canceled(ctx context.Context, source, sessionID string, result *Result) (*Result, error) {
	err := ctx.Err()
	observability.Emit(context.WithoutCancel(ctx), k.observer, EventInvokeCanceled, observability.LevelInfo, source, map[string]any{
		"session_id":           sessionID,
		"iterations":           result.Iterations,
		observability.KeyError: err.Error(),
	})
	return result, err
}

func (k *Kernel) systemContent(ctx context.Context) (string, error) {
	if k.memory == nil {
		return k.systemPrompt, nil
	}

	docs, err := k.memory.Documents(ctx)
	if err != nil {
		return k.systemPrompt, fmt.Errorf("failed to load memory: %w", err)
	}
	return memory.Compose(k.systemPrompt, docs), nil
}

// IsCanceled reports whether err ended an invocation by cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
