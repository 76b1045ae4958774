package capability

import (
	"context"

	"concierge/internal/domain"
)

// Func adapts a plain function to the Capability interface.
type Func struct {
	Def domain.CapabilityDefinition
	Fn  func(ctx context.Context, args map[string]any) (*domain.Result, error)
}

func (f *Func) Definition() domain.CapabilityDefinition { return f.Def }

func (f *Func) Invoke(ctx context.Context, args map[string]any) (*domain.Result, error) {
	return f.Fn(ctx, args)
}

// ArgString extracts a string argument, tolerating absence.
func ArgString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

// ArgStrings extracts a string-slice argument. Engines deliver JSON arrays
// as []any, so both forms are accepted.
func ArgStrings(args map[string]any, key string) []string {
	if args == nil {
		return nil
	}
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
