// Package outcome classifies a model's final message into the terminal result
// of an invocation.
//
// The model is instructed to answer with {"status": ..., "message": ...}.
// Anything that does not validate against that contract resolves to an Error
// outcome carrying FallbackMessage; it never defaults to Completed.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Kind is the classification of an Outcome.
type Kind string

const (
	InputRequired Kind = "input_required"
	Completed     Kind = "completed"
	Error         Kind = "error"
)

// Valid reports whether k is one of the three outcome kinds.
func (k Kind) Valid() bool {
	switch k {
	case InputRequired, Completed, Error:
		return true
	}
	return false
}

// FallbackMessage is returned to callers whenever the request could not be
// resolved. Diagnostic detail is logged, never returned.
const FallbackMessage = "We are unable to process your request at the moment. Please try again."

// ErrSchemaViolation is returned by Extract when the final message does not
// conform to the response contract.
var ErrSchemaViolation = errors.New("final message violates response schema")

// Outcome is the terminal result of one invocation.
type Outcome struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// IsComplete reports whether the task finished. InputRequired and Error both
// need the caller's attention.
func (o Outcome) IsComplete() bool {
	return o.Kind == Completed
}

// Unprocessable returns the generic Error outcome.
func Unprocessable() Outcome {
	return Outcome{Kind: Error, Message: FallbackMessage}
}

// Schema is the JSON Schema the final message must satisfy.
const Schema = `{
	"type": "object",
	"properties": {
		"status": {"type": "string", "enum": ["input_required", "completed", "error"]},
		"message": {"type": "string"}
	},
	"required": ["status", "message"]
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(Schema))
})

type structured struct {
	Status  Kind   `json:"status"`
	Message string `json:"message"`
}

// Extract validates text against Schema and maps it to an Outcome. On a
// violation it returns Unprocessable together with an error wrapping
// ErrSchemaViolation that describes what was wrong.
func Extract(text string) (Outcome, error) {
	body, ok := locateObject(text)
	if !ok {
		return Unprocessable(), fmt.Errorf("%w: no JSON object in final message", ErrSchemaViolation)
	}

	schema, err := compiledSchema()
	if err != nil {
		return Unprocessable(), fmt.Errorf("%w: compile schema: %v", ErrSchemaViolation, err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return Unprocessable(), fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return Unprocessable(), fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(problems, "; "))
	}

	var s structured
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return Unprocessable(), fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	return Outcome{Kind: s.Status, Message: s.Message}, nil
}
