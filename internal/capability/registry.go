// Package capability holds the static capability registry plus the two ways
// capabilities come to exist: registered implementations and caller-declared
// schemas materialized at negotiation time.
package capability

import (
	"fmt"
	"log/slog"
	"sync"

	"concierge/internal/domain"
)

// Registry is the static mapping from capability name to implementation.
// It is populated at startup and read-only afterwards.
type Registry struct {
	mu     sync.RWMutex
	caps   map[string]domain.Capability
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		caps:   make(map[string]domain.Capability),
		logger: logger,
	}
}

// Register adds a capability. Names are unique and stable; a second register
// under the same name fails.
func (r *Registry) Register(c domain.Capability) error {
	name := c.Definition().Name
	if name == "" {
		return fmt.Errorf("capability has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[name]; exists {
		return fmt.Errorf("%q: %w", name, domain.ErrDuplicateCapability)
	}
	r.caps[name] = c
	r.logger.Debug("registered capability", "name", name)
	return nil
}

// Get returns the capability with the given name, if registered.
func (r *Registry) Get(name string) (domain.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	return c, ok
}

// Lookup resolves names to capabilities, preserving input order. Unknown
// names are dropped, never an error: callers advertising capabilities from
// future protocol versions must keep working against older backends.
func (r *Registry) Lookup(names []string) []domain.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resolved := make([]domain.Capability, 0, len(names))
	for _, name := range names {
		if c, ok := r.caps[name]; ok {
			resolved = append(resolved, c)
		}
	}
	return resolved
}

// Names returns all registered capability names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.caps))
	for n := range r.caps {
		names = append(names, n)
	}
	return names
}
