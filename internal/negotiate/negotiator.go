// Package negotiate computes the request-scoped capability set from a
// caller's advertisement, a domain's permission policy, and the domain's
// fixed backend capabilities.
package negotiate

import (
	"log/slog"

	"concierge/internal/capability"
	"concierge/internal/domain"
	"concierge/internal/policy"
)

// Negotiator intersects advertisements against domain policy. It holds only
// immutable startup state and is safe for concurrent use.
type Negotiator struct {
	table    *policy.Table
	registry *capability.Registry
	logger   *slog.Logger
}

func New(table *policy.Table, registry *capability.Registry, logger *slog.Logger) *Negotiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Negotiator{table: table, registry: registry, logger: logger}
}

// Negotiate produces the toolset for one request. It never fails; it only
// narrows:
//
//  1. advertised names outside the domain's permitted set are dropped
//  2. permitted names resolve through the registry; names the registry does
//     not know resolve through a caller-supplied schema, if one was sent
//  3. names that resolve neither way are dropped silently (future-version
//     callers must keep working)
//  4. fixed capabilities always win name collisions; trusted backend
//     operations are never shadowed by caller-advertised ones
func (n *Negotiator) Negotiate(domainName string, adv domain.Advertisement, fixed []domain.Capability) *Toolset {
	advertised := adv.AllNames()

	relevant := make([]string, 0, len(advertised))
	for _, name := range advertised {
		if n.table.Allows(domainName, name) {
			relevant = append(relevant, name)
		}
	}

	ts := newToolset(len(fixed) + len(relevant))
	for _, c := range fixed {
		ts.add(c)
	}
	for _, name := range relevant {
		if c, ok := n.registry.Get(name); ok {
			ts.add(c)
			continue
		}
		if schema, ok := adv.Schema(name); ok {
			ts.add(capability.FromSchema(schema))
		}
		// Unresolvable name: dropped.
	}

	n.logger.Debug("negotiated toolset",
		"domain", domainName,
		"advertised", len(advertised),
		"relevant", len(relevant),
		"fixed", len(fixed),
		"total", ts.Len(),
	)
	return ts
}
