package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Request is one inbound end-user request.
type Request struct {
	Text          string        `json:"text"`
	DomainHint    string        `json:"domain_hint,omitempty"`
	Advertisement Advertisement `json:"advertisement"`
}

// Advertisement is the caller's declaration of which capabilities it can
// render or handle for this request. It is ephemeral per-call input and is
// never cached across requests.
type Advertisement struct {
	Names   []string           `json:"capability_names,omitempty"`
	Schemas []CapabilitySchema `json:"capability_schemas,omitempty"`
}

// AllNames returns every advertised capability name: bare names plus the
// names of fully schema-declared capabilities.
func (a Advertisement) AllNames() []string {
	names := make([]string, 0, len(a.Names)+len(a.Schemas))
	seen := make(map[string]bool, len(a.Names)+len(a.Schemas))
	for _, n := range a.Names {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, s := range a.Schemas {
		if s.Name != "" && !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return names
}

// Schema returns the advertised schema for name, if the caller sent one.
func (a Advertisement) Schema(name string) (CapabilitySchema, bool) {
	for _, s := range a.Schemas {
		if s.Name == name {
			return s, true
		}
	}
	return CapabilitySchema{}, false
}

// CapabilitySchema is a caller-owned capability declaration: name plus a
// JSON-schema-shaped parameter block. Callers use these to add new UI
// capabilities without a backend release.
type CapabilitySchema struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Parameters  SchemaParameters `json:"parameters"`
	Render      RenderMode       `json:"render_mode,omitempty"` // defaults to relay
}

type SchemaParameters struct {
	Properties map[string]SchemaProperty `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

type SchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Fields converts the parameter block into an ordered argument schema:
// required fields first, each group alphabetical. JSON objects carry no
// order, so this keeps engine-visible declarations deterministic.
func (p SchemaParameters) Fields() []ArgumentField {
	required := make(map[string]bool, len(p.Required))
	for _, r := range p.Required {
		required[r] = true
	}
	fields := make([]ArgumentField, 0, len(p.Properties))
	for name, prop := range p.Properties {
		typ := prop.Type
		if typ == "" {
			typ = "string"
		}
		fields = append(fields, ArgumentField{
			Name:        name,
			Type:        typ,
			Required:    required[name],
			Description: prop.Description,
		})
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Required != fields[j].Required {
			return fields[i].Required
		}
		return fields[i].Name < fields[j].Name
	})
	return fields
}

// Response is the normal outbound reply: the worker's final text verbatim
// plus all UIEvents in emission order.
type Response struct {
	Text     string    `json:"text"`
	UIEvents []UIEvent `json:"ui_events"`
}

// Suspension is the outbound reply when a request paused for approval.
type Suspension struct {
	CheckpointID   string   `json:"checkpoint_id"`
	CapabilityName string   `json:"capability_name"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options,omitempty"`
}

// Reply is what the router hands back: exactly one of the two fields is set.
type Reply struct {
	Response   *Response
	Suspension *Suspension
}

// ResumeRequest asks to resolve a pending checkpoint with the caller's decision.
type ResumeRequest struct {
	CheckpointID string   `json:"checkpoint_id"`
	Decision     Decision `json:"decision"`
}

// Decision is the external answer that resolves a checkpoint: either a
// selected option or a free-form payload.
type Decision struct {
	Selected string         `json:"selected,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// UnmarshalJSON accepts both wire forms: a bare string ("approve") or a
// structured object.
func (d *Decision) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Selected = s
		d.Payload = nil
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decision must be a string or an object: %w", err)
	}
	if sel, ok := m["selected"].(string); ok {
		d.Selected = sel
		delete(m, "selected")
	}
	if len(m) > 0 {
		d.Payload = m
	}
	return nil
}

func (d Decision) MarshalJSON() ([]byte, error) {
	if d.Payload == nil {
		return json.Marshal(d.Selected)
	}
	m := make(map[string]any, len(d.Payload)+1)
	for k, v := range d.Payload {
		m[k] = v
	}
	if d.Selected != "" {
		m["selected"] = d.Selected
	}
	return json.Marshal(m)
}

// ResultText renders the decision as the textual result bound to the
// suspended capability invocation.
func (d Decision) ResultText() string {
	if d.Selected != "" && len(d.Payload) == 0 {
		return d.Selected
	}
	b, err := json.Marshal(d)
	if err != nil {
		return d.Selected
	}
	return string(b)
}
