package kernel

import "errors"

var (
	// ErrMaxIterations records that the loop exhausted its iteration budget
	// without a final model reply. The caller sees an Error outcome; the
	// error is carried on Result.Cause.
	ErrMaxIterations = errors.New("max iterations reached")

	// ErrEmptySessionID is returned when an invocation names no session.
	ErrEmptySessionID = errors.New("session id is required")
)
