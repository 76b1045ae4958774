// Package gateway is the capability provider boundary: backend services that
// expose a fixed list of named operations with schema-shaped arguments over a
// call/response interface. Every operation a provider exposes automatically
// belongs to the domain that owns the provider connection.
package gateway

import (
	"context"

	"concierge/internal/domain"
)

// Provider is one backend capability provider. Implementations may live in
// another process; the bundled ones are in-process simulations.
type Provider interface {
	// Name is the owning domain.
	Name() string
	// Operations lists the provider's capability definitions.
	Operations() []domain.CapabilityDefinition
	// Call invokes one operation.
	Call(ctx context.Context, op string, args map[string]any) (string, error)
}

// Capabilities wraps every operation of a provider as an invocable
// capability. No per-operation hardcoding: whatever the provider lists is
// what the owning domain gets as fixed capabilities.
func Capabilities(p Provider) []domain.Capability {
	ops := p.Operations()
	caps := make([]domain.Capability, 0, len(ops))
	for _, def := range ops {
		caps = append(caps, &operation{provider: p, def: def})
	}
	return caps
}

type operation struct {
	provider Provider
	def      domain.CapabilityDefinition
}

func (o *operation) Definition() domain.CapabilityDefinition { return o.def }

func (o *operation) Invoke(ctx context.Context, args map[string]any) (*domain.Result, error) {
	content, err := o.provider.Call(ctx, o.def.Name, args)
	if err != nil {
		return nil, err
	}
	return &domain.Result{Content: content}, nil
}
