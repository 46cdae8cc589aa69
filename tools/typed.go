package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/tailored-agentic-units/stockagent/core/protocol"
)

// Typed builds a Definition whose input schema is derived from In and whose
// arguments are decoded into In before fn runs. The value fn returns is
// encoded as the JSON result payload.
func Typed[In any, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error)) Definition {
	return Definition{
		Tool: protocol.Tool{
			Name:        name,
			Description: description,
			Parameters:  GenerateSchema[In](),
		},
		Handler: func(ctx context.Context, args json.RawMessage) (Result, error) {
			in, err := decodeStrict[In](args)
			if err != nil {
				return Result{}, err
			}

			out, err := fn(ctx, in)
			if err != nil {
				return Result{}, err
			}

			data, err := json.Marshal(out)
			if err != nil {
				return Result{}, fmt.Errorf("failed to encode %s result: %w", name, err)
			}
			return Result{Content: string(data)}, nil
		},
	}
}

// decodeStrict decodes args into In, rejecting fields the schema does not
// declare and any trailing data. Empty args decode to the zero value.
func decodeStrict[In any](args json.RawMessage) (In, error) {
	var in In
	if len(bytes.TrimSpace(args)) == 0 {
		return in, nil
	}

	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if dec.More() {
		return in, fmt.Errorf("%w: trailing data after arguments", ErrInvalidArguments)
	}
	return in, nil
}

// GenerateSchema derives an inline JSON Schema object from T.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T
	schema := reflector.Reflect(v)

	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	delete(out, "$schema")
	delete(out, "$id")

	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return out
}
