package capability

import (
	"context"
	"fmt"

	"concierge/internal/domain"
)

// SchemaCapability is materialized from a caller-declared schema at
// negotiation time. Invocation is declarative: arguments are validated
// against the schema, then relayed to the caller as a UIEvent. No executable
// code ever crosses the boundary, which is what lets caller and backend
// versions evolve independently.
type SchemaCapability struct {
	def domain.CapabilityDefinition
}

// FromSchema builds an invocable capability from an advertised schema.
func FromSchema(s domain.CapabilitySchema) *SchemaCapability {
	render := s.Render
	if render == "" {
		render = domain.RenderRelay
	}
	return &SchemaCapability{
		def: domain.CapabilityDefinition{
			Name:        s.Name,
			Description: s.Description,
			Arguments:   s.Parameters.Fields(),
			Effect:      domain.EffectRendersUI,
			Render:      render,
		},
	}
}

func (c *SchemaCapability) Definition() domain.CapabilityDefinition { return c.def }

// Invoke validates args against the declared fields and emits a UIEvent
// named after the capability, carrying the bound arguments as properties.
func (c *SchemaCapability) Invoke(ctx context.Context, args map[string]any) (*domain.Result, error) {
	if err := c.validate(args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return &domain.Result{
		Content:  fmt.Sprintf("%s component rendered.", c.def.Name),
		UIEvents: []domain.UIEvent{{Name: c.def.Name, Properties: args}},
	}, nil
}

func (c *SchemaCapability) validate(args map[string]any) error {
	for _, f := range c.def.Arguments {
		v, present := args[f.Name]
		if !present {
			if f.Required {
				return fmt.Errorf("missing required argument %q", f.Name)
			}
			continue
		}
		if !typeMatches(f.Type, v) {
			return fmt.Errorf("argument %q: expected %s, got %T", f.Name, f.Type, v)
		}
	}
	return nil
}

// typeMatches checks a value against a JSON Schema type name. Engines decode
// JSON, so numbers arrive as float64 and integers need a whole-value check.
func typeMatches(typ string, v any) bool {
	if v == nil {
		return true
	}
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	case "array":
		switch v.(type) {
		case []any, []string:
			return true
		}
		return false
	case "object":
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}
