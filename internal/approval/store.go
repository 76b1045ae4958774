// Package approval implements the suspend/resume controller: checkpoint
// persistence, exactly-once resume, and time-to-live garbage collection.
package approval

import (
	"context"
	"sort"
	"sync"
	"time"

	"concierge/internal/domain"
)

// Store persists checkpoints between the suspension and the resume, which
// may arrive from a different process instance.
type Store interface {
	// Put persists a new checkpoint.
	Put(ctx context.Context, cp *domain.Checkpoint) error
	// Claim atomically marks a pending checkpoint resolved and returns it.
	// Returns domain.ErrUnknownCheckpoint or domain.ErrAlreadyResolved.
	// Concurrent claims on the same id are serialized; only one succeeds.
	Claim(ctx context.Context, id string) (*domain.Checkpoint, error)
	// Sweep deletes pending checkpoints created before pendingCutoff and
	// resolved ones resolved before resolvedCutoff. Resolved rows stay
	// around until their cutoff so a replayed decision still gets
	// AlreadyResolved instead of UnknownCheckpoint.
	Sweep(ctx context.Context, pendingCutoff, resolvedCutoff time.Time) (int, error)
	// Pending returns unresolved checkpoints, oldest first.
	Pending(ctx context.Context) ([]*domain.Checkpoint, error)
	Close() error
}

// MemoryStore keeps checkpoints in process memory. Suitable for tests and
// single-instance deployments that accept losing pending approvals on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	cp         *domain.Checkpoint
	resolved   bool
	resolvedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStore) Put(ctx context.Context, cp *domain.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cp.ID] = &memoryEntry{cp: cp}
	return nil
}

func (s *MemoryStore) Claim(ctx context.Context, id string) (*domain.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrUnknownCheckpoint
	}
	if e.resolved {
		return nil, domain.ErrAlreadyResolved
	}
	e.resolved = true
	e.resolvedAt = time.Now()
	return e.cp, nil
}

func (s *MemoryStore) Sweep(ctx context.Context, pendingCutoff, resolvedCutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		expired := e.cp.CreatedAt.Before(pendingCutoff)
		if e.resolved {
			expired = e.resolvedAt.Before(resolvedCutoff)
		}
		if expired {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Pending(ctx context.Context) ([]*domain.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Checkpoint
	for _, e := range s.entries {
		if !e.resolved {
			out = append(out, e.cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
