package kernel

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"

	"github.com/tailored-agentic-units/stockagent/outcome"
)

// Progress messages yielded while tools run.
const (
	ProgressLookingUp  = "Looking up the stock price..."
	ProgressProcessing = "Processing the stock price.."
)

// ErrStreamConsumed is yielded when a Stream sequence is ranged over twice.
var ErrStreamConsumed = errors.New("stream already consumed")

// ProgressEvent is one element of a streamed invocation.
type ProgressEvent struct {
	IsTaskComplete   bool   `json:"is_task_complete"`
	RequireUserInput bool   `json:"require_user_input"`
	Content          string `json:"content"`
}

// Final reports whether e carries the invocation's outcome.
func (e ProgressEvent) Final() bool {
	return e.IsTaskComplete || e.RequireUserInput
}

// EventFromOutcome converts an outcome to the terminal event shape.
func EventFromOutcome(o outcome.Outcome) ProgressEvent {
	return ProgressEvent{
		IsTaskComplete:   o.Kind == outcome.Completed,
		RequireUserInput: o.Kind != outcome.Completed,
		Content:          o.Message,
	}
}

// Stream runs the same loop as Invoke and yields progress while it runs.
// The last element is the outcome as a final ProgressEvent, or a non-nil
// error for an empty session id or cancellation.
//
// The sequence is single-use and is consumed on the ranging goroutine.
// Breaking out of the range cancels the invocation; no outcome is stored.
func (k *Kernel) Stream(ctx context.Context, sessionID, query string) iter.Seq2[ProgressEvent, error] {
	var consumed atomic.Bool

	return func(yield func(ProgressEvent, error) bool) {
		if consumed.Swap(true) {
			yield(ProgressEvent{}, ErrStreamConsumed)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		open := true
		progress := func(e ProgressEvent) {
			if open && !yield(e, nil) {
				open = false
				cancel()
			}
		}

		result, err := k.run(ctx, "kernel.Stream", sessionID, query, progress)
		if !open {
			return
		}
		if err != nil {
			yield(ProgressEvent{}, err)
			return
		}
		yield(EventFromOutcome(result.Outcome), nil)
	}
}
