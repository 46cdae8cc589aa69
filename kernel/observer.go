package kernel

import "github.com/tailored-agentic-units/stockagent/observability"

// Kernel event types emitted during an invocation.
const (
	EventInvokeStart    observability.EventType = "kernel.invoke.start"
	EventInvokeComplete observability.EventType = "kernel.invoke.complete"
	EventInvokeCanceled observability.EventType = "kernel.invoke.canceled"
	EventIterationStart observability.EventType = "kernel.iteration.start"
	EventModelResponse  observability.EventType = "kernel.model.response"
	EventToolCall       observability.EventType = "kernel.tool.call"
	EventToolComplete   observability.EventType = "kernel.tool.complete"
	EventError          observability.EventType = "kernel.error"
)

// Reasons attached to EventError.
const (
	reasonSchemaViolation = "schema_violation"
	reasonMaxIterations   = "max_iterations"
	reasonModel           = "model"
)
