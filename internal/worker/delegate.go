package worker

import (
	"context"
	"fmt"

	"concierge/internal/domain"
)

// Delegate exposes another domain's worker to a parent worker as an ordinary
// capability. Communication is explicit message passing through the
// invocation's return value: the child's final text becomes the call result,
// its UIEvents ride along in order, and a child suspension propagates up as
// a checkpoint draft instead of being handled here.
type Delegate struct {
	def   domain.CapabilityDefinition
	build func() *Worker
}

// NewDelegate wraps a child-worker factory. A fresh child is built per
// invocation so its toolset stays request-scoped.
func NewDelegate(name, description string, build func() *Worker) *Delegate {
	return &Delegate{
		def: domain.CapabilityDefinition{
			Name:        name,
			Description: description,
			Arguments: []domain.ArgumentField{
				{Name: "request", Type: "string", Required: true, Description: "The task to hand to the specialist, in natural language"},
			},
			Effect: domain.EffectPure,
		},
		build: build,
	}
}

func (d *Delegate) Definition() domain.CapabilityDefinition { return d.def }

func (d *Delegate) Invoke(ctx context.Context, args map[string]any) (*domain.Result, error) {
	request, _ := args["request"].(string)
	if request == "" {
		return nil, fmt.Errorf("delegate %s: missing request", d.def.Name)
	}

	child := d.build()
	out, err := child.Run(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("delegate %s: %w", d.def.Name, err)
	}

	switch out.State {
	case StateAwaitingApproval:
		return &domain.Result{Suspension: out.Suspension}, nil
	case StateFailed:
		return nil, fmt.Errorf("delegate %s: %s", d.def.Name, out.FailReason)
	}
	return &domain.Result{Content: out.Text, UIEvents: out.UIEvents}, nil
}
