package negotiate

import "concierge/internal/domain"

// Toolset is the capability set actually handed to a worker for one request.
// It is computed fresh per request and never shared.
type Toolset struct {
	list  []domain.Capability
	index map[string]domain.Capability
}

func newToolset(capacity int) *Toolset {
	return &Toolset{
		list:  make([]domain.Capability, 0, capacity),
		index: make(map[string]domain.Capability, capacity),
	}
}

// add inserts a capability unless the name is already present. First insert
// wins, which is how fixed capabilities shadow advertised ones.
func (t *Toolset) add(c domain.Capability) {
	name := c.Definition().Name
	if _, exists := t.index[name]; exists {
		return
	}
	t.index[name] = c
	t.list = append(t.list, c)
}

// Get returns the capability with the given name.
func (t *Toolset) Get(name string) (domain.Capability, bool) {
	c, ok := t.index[name]
	return c, ok
}

// Definitions returns the engine-visible declarations in insertion order.
func (t *Toolset) Definitions() []domain.CapabilityDefinition {
	defs := make([]domain.CapabilityDefinition, len(t.list))
	for i, c := range t.list {
		defs[i] = c.Definition()
	}
	return defs
}

// Names returns the capability names in insertion order.
func (t *Toolset) Names() []string {
	names := make([]string, len(t.list))
	for i, c := range t.list {
		names[i] = c.Definition().Name
	}
	return names
}

func (t *Toolset) Len() int { return len(t.list) }
