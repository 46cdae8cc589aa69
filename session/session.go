// Package session stores conversation history and the latest outcome per
// session identifier.
//
// Sessions are created on first reference. The in-memory store keeps them for
// the lifetime of the process; a restart loses every session. Store is the
// seam for swapping in durable storage without touching the kernel.
package session

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
	"github.com/tailored-agentic-units/stockagent/outcome"
)

// Session is a point-in-time snapshot of one conversation.
type Session struct {
	ID        string
	Turns     []protocol.Turn
	Latest    *outcome.Outcome
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UnlockFunc releases a session lock. Calling it more than once is a no-op.
type UnlockFunc func()

// Store holds sessions keyed by identifier. Implementations must be safe for
// concurrent use.
//
// Store does not serialize writers by itself: callers that append turns hold
// the session's Lock for the whole read-modify-append cycle.
type Store interface {
	// GetOrCreate returns a snapshot of the session, creating it if unseen.
	GetOrCreate(ctx context.Context, id string) (Session, error)
	// Append adds turns to the end of the session history in one step.
	Append(ctx context.Context, id string, turns ...protocol.Turn) error
	// Turns returns a copy of the session history.
	Turns(ctx context.Context, id string) ([]protocol.Turn, error)
	// LatestOutcome returns the outcome of the most recently resolved
	// invocation, if any.
	LatestOutcome(ctx context.Context, id string) (outcome.Outcome, bool, error)
	// SetOutcome records the outcome of a resolved invocation.
	SetOutcome(ctx context.Context, id string, o outcome.Outcome) error
	// Lock blocks until the caller holds the session exclusively or ctx is
	// done.
	Lock(ctx context.Context, id string) (UnlockFunc, error)
	// Delete removes the session and its history.
	Delete(ctx context.Context, id string) error
	// IDs lists known session identifiers in sorted order.
	IDs(ctx context.Context) ([]string, error)
}
