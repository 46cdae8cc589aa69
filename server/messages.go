package server

import (
	"errors"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/stockagent/kernel"
	"github.com/tailored-agentic-units/stockagent/outcome"
)

// Request and response field names.
const (
	FieldSessionID        = "session_id"
	FieldQuery            = "query"
	FieldStatus           = "status"
	FieldMessage          = "message"
	FieldIsTaskComplete   = "is_task_complete"
	FieldRequireUserInput = "require_user_input"
	FieldContent          = "content"
)

// Request validation errors.
var (
	ErrMissingSessionID = errors.New("session_id is required")
	ErrMissingQuery     = errors.New("query is required")
)

// NewRequest builds an RPC request message.
func NewRequest(sessionID, query string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldSessionID: sessionID,
		FieldQuery:     query,
	})
}

// NewResetRequest builds a Reset request message.
func NewResetRequest(sessionID string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{FieldSessionID: sessionID})
}

func parseSessionID(msg *structpb.Struct) (string, error) {
	sessionID := strings.TrimSpace(msg.GetFields()[FieldSessionID].GetStringValue())
	if sessionID == "" {
		return "", ErrMissingSessionID
	}
	return sessionID, nil
}

func parseRequest(msg *structpb.Struct) (sessionID, query string, err error) {
	if sessionID, err = parseSessionID(msg); err != nil {
		return "", "", err
	}
	query = msg.GetFields()[FieldQuery].GetStringValue()
	if strings.TrimSpace(query) == "" {
		return "", "", ErrMissingQuery
	}
	return sessionID, query, nil
}

func outcomeMessage(o outcome.Outcome) (*structpb.Struct, error) {
	event := kernel.EventFromOutcome(o)
	return structpb.NewStruct(map[string]any{
		FieldStatus:           string(o.Kind),
		FieldMessage:          o.Message,
		FieldIsTaskComplete:   event.IsTaskComplete,
		FieldRequireUserInput: event.RequireUserInput,
	})
}

func eventMessage(e kernel.ProgressEvent) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		FieldIsTaskComplete:   e.IsTaskComplete,
		FieldRequireUserInput: e.RequireUserInput,
		FieldContent:          e.Content,
	})
}

// ParseOutcome reads an Invoke response message.
func ParseOutcome(msg *structpb.Struct) (outcome.Outcome, error) {
	fields := msg.GetFields()
	o := outcome.Outcome{
		Kind:    outcome.Kind(fields[FieldStatus].GetStringValue()),
		Message: fields[FieldMessage].GetStringValue(),
	}
	if !o.Kind.Valid() {
		return outcome.Outcome{}, errors.New("response has no valid status")
	}
	return o, nil
}

// ParseEvent reads a Stream response message.
func ParseEvent(msg *structpb.Struct) kernel.ProgressEvent {
	fields := msg.GetFields()
	return kernel.ProgressEvent{
		IsTaskComplete:   fields[FieldIsTaskComplete].GetBoolValue(),
		RequireUserInput: fields[FieldRequireUserInput].GetBoolValue(),
		Content:          fields[FieldContent].GetStringValue(),
	}
}
