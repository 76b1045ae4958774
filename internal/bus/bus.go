// Package bus carries side-channel notifications (UI events, checkpoint
// lifecycle) from the router to in-process observers such as the SSE
// endpoint. The primary reply never travels here.
package bus

import (
	"log/slog"
	"sync"
	"time"

	"concierge/internal/domain"
)

const defaultBuffer = 64

// Notifier is a Go-channel based broadcast bus. Publishing never blocks;
// slow subscribers drop notifications rather than stalling request handling.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[int]chan domain.Notification
	nextID int
	closed bool
	logger *slog.Logger
}

func New(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		subs:   make(map[int]chan domain.Notification),
		logger: logger,
	}
}

// Publish broadcasts a notification to every subscriber.
func (n *Notifier) Publish(note domain.Notification) {
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.logger.Warn("attempted to publish to closed notifier")
		return
	}
	for id, ch := range n.subs {
		select {
		case ch <- note:
		default:
			n.logger.Warn("subscriber buffer full, dropping notification",
				"subscriber", id, "type", note.Type)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away.
func (n *Notifier) Subscribe() (<-chan domain.Notification, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan domain.Notification, defaultBuffer)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close shuts the bus down and disconnects all subscribers.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
