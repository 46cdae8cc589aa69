package agent

import "errors"

// Sentinel errors for agent construction and the agent registry.
var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("agent returned empty response")
	ErrEmptyAgentName  = errors.New("agent name is empty")
	ErrAgentExists     = errors.New("agent already registered")
	ErrAgentNotFound   = errors.New("agent not found")
)
