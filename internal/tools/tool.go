package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aristath/pragmas/internal/domain"
)

// Tool is a pure, deterministic computation unit.
type Tool interface {
	Name() string
	Description() string
	Level() Level
	// Validate turns raw input into the tool's typed input or a validation error.
	Validate(raw any) (any, error)
	// Execute runs on input previously returned by Validate.
	Execute(ctx context.Context, input any, caller *domain.Caller) (any, error)
}

// Definition adapts a typed compute function to the Tool interface.
// validate may fill defaults on the decoded input before checking it.
type Definition[In any, Out any] struct {
	name        string
	description string
	level       Level
	validate    func(*In) error
	compute     func(In) (Out, error)
}

// Define creates a tool definition
func Define[In any, Out any](name, description string, level Level, validate func(*In) error, compute func(In) (Out, error)) *Definition[In, Out] {
	return &Definition[In, Out]{
		name:        name,
		description: description,
		level:       level,
		validate:    validate,
		compute:     compute,
	}
}

func (d *Definition[In, Out]) Name() string        { return d.name }
func (d *Definition[In, Out]) Description() string { return d.description }
func (d *Definition[In, Out]) Level() Level        { return d.level }

// Validate accepts the typed input, a pointer to it, JSON bytes, or any
// JSON-marshalable value (e.g. a decoded map).
func (d *Definition[In, Out]) Validate(raw any) (any, error) {
	in, err := decode[In](raw)
	if err != nil {
		return nil, err
	}
	if d.validate != nil {
		if err := d.validate(&in); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// Execute runs the compute function on validated input
func (d *Definition[In, Out]) Execute(_ context.Context, input any, _ *domain.Caller) (any, error) {
	in, ok := input.(In)
	if !ok {
		return nil, fmt.Errorf("tool %s: unexpected input type %T", d.name, input)
	}
	return d.compute(in)
}

func decode[In any](raw any) (In, error) {
	var in In

	var data []byte
	switch v := raw.(type) {
	case In:
		return v, nil
	case *In:
		if v != nil {
			return *v, nil
		}
		data = []byte("{}")
	case nil:
		data = []byte("{}")
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return in, domain.NewValidationError("Invalid input: not JSON-encodable", nil)
		}
		data = b
	}

	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, domain.NewValidationError(fmt.Sprintf("Invalid input: %v", err), nil)
	}
	return in, nil
}
