// Package policy defines which advertised capabilities each domain may use,
// plus the per-domain descriptors (routing description, worker instructions)
// that the supervisor needs.
package policy

import "sort"

// DomainSpec describes one routing domain. Specs are loaded at startup and
// immutable afterwards.
type DomainSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"` // shown to the classifier
	// Instructions is the behavioral policy handed to the domain worker's
	// reasoning engine as the system prompt.
	Instructions string `yaml:"instructions"`
	// Keywords feed the fallback classifier when the engine is unavailable.
	Keywords []string `yaml:"keywords,omitempty"`
	// Permitted lists the advertised capability names this domain may use.
	Permitted []string `yaml:"permitted,omitempty"`
	// Gateway names the capability provider whose operations become this
	// domain's fixed capabilities.
	Gateway string `yaml:"gateway,omitempty"`
	// Delegates lists domains this domain's worker may invoke as capabilities.
	Delegates []string `yaml:"delegates,omitempty"`
}

// Table maps domain names to permitted advertised-capability sets.
type Table struct {
	permitted map[string]map[string]bool
}

// NewTable builds the permission table from domain specs.
func NewTable(specs []DomainSpec) *Table {
	t := &Table{permitted: make(map[string]map[string]bool, len(specs))}
	for _, s := range specs {
		set := make(map[string]bool, len(s.Permitted))
		for _, name := range s.Permitted {
			set[name] = true
		}
		t.permitted[s.Name] = set
	}
	return t
}

// Allows reports whether the domain may use the advertised capability.
// Unknown domains allow nothing.
func (t *Table) Allows(domain, name string) bool {
	return t.permitted[domain][name]
}

// PermittedFor returns the sorted permitted names for a domain. Unknown
// domains get an empty set, never an error: they simply negotiate an empty
// toolset downstream.
func (t *Table) PermittedFor(domain string) []string {
	set := t.permitted[domain]
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
