package domain

import "context"

// SideEffect classifies what invoking a capability does beyond returning text.
type SideEffect string

const (
	// EffectPure capabilities just compute or call a backend and return text.
	EffectPure SideEffect = "pure"
	// EffectRendersUI capabilities emit a UIEvent for the caller to render.
	EffectRendersUI SideEffect = "renders_ui"
	// EffectApprovalRequired capabilities may never run until an external
	// decision arrives; selecting one suspends the whole request.
	EffectApprovalRequired SideEffect = "approval_required"
)

// RenderMode controls how a UI-rendering capability's output reaches the caller.
type RenderMode string

const (
	// RenderRelay emits a UIEvent on the side channel and feeds a short
	// confirmation back into the reasoning loop.
	RenderRelay RenderMode = "relay"
	// RenderInline ends the worker turn directly with the capability's
	// result, skipping another reasoning round trip.
	RenderInline RenderMode = "inline"
)

// ArgumentField is one entry in a capability's ordered argument schema.
type ArgumentField struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // JSON Schema type: string | number | integer | boolean | array | object
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// CapabilityDefinition is the engine-visible shape of a capability.
// Identity is the name; definitions are immutable once registered.
type CapabilityDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Arguments   []ArgumentField `json:"arguments"`
	Effect      SideEffect      `json:"effect"`
	Render      RenderMode      `json:"render,omitempty"`
}

// Parameters renders the argument schema as a JSON Schema object, which is
// the format reasoning engines expect for tool declarations.
func (d CapabilityDefinition) Parameters() map[string]any {
	props := make(map[string]any, len(d.Arguments))
	var required []string
	for _, a := range d.Arguments {
		props[a.Name] = map[string]any{"type": a.Type, "description": a.Description}
		if a.Required {
			required = append(required, a.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Result is what one capability invocation produced.
type Result struct {
	Content  string
	UIEvents []UIEvent
	// Suspension is set when the capability wrapped a nested worker that hit
	// an approval point. It must propagate up untouched.
	Suspension *Checkpoint
}

// Capability is a named, invocable action with a declared argument schema.
type Capability interface {
	Definition() CapabilityDefinition
	Invoke(ctx context.Context, args map[string]any) (*Result, error)
}

// UIEvent describes something for the caller to render. Events travel on a
// side channel, in emission order, independent of the textual reply.
type UIEvent struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}
