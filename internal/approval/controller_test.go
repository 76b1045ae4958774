package approval

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"concierge/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestController(store Store) *Controller {
	return NewController(ControllerConfig{Store: store, Logger: testLogger()})
}

func draft() domain.Checkpoint {
	return domain.Checkpoint{
		CapabilityName: "restart_router",
		Prompt:         "Restart the router now?",
		Options:        []string{"approve", "deny"},
		Frames: []domain.ExecutionFrame{{
			Domain:      "wifi",
			Messages:    []domain.Message{{Role: "user", Content: "restart it"}},
			PendingCall: domain.ToolCall{ID: "call_1", Name: "restart_router"},
		}},
	}
}

func TestController_BeginAssignsIdentity(t *testing.T) {
	c := newTestController(NewMemoryStore())

	cp, err := c.Begin(context.Background(), draft())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if cp.ID == "" {
		t.Fatal("checkpoint must get a unique id")
	}
	if cp.CreatedAt.IsZero() {
		t.Fatal("checkpoint must be timestamped")
	}

	cp2, err := c.Begin(context.Background(), draft())
	if err != nil {
		t.Fatalf("second begin failed: %v", err)
	}
	if cp2.ID == cp.ID {
		t.Fatal("checkpoint ids must be unique")
	}
}

func TestController_ResumeRoundTrip(t *testing.T) {
	c := newTestController(NewMemoryStore())
	cp, err := c.Begin(context.Background(), draft())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	got, err := c.Resume(context.Background(), cp.ID, domain.Decision{Selected: "approve"})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if got.CapabilityName != "restart_router" {
		t.Errorf("wrong checkpoint back: %+v", got)
	}
	if len(got.Frames) != 1 || got.Frames[0].Domain != "wifi" {
		t.Errorf("frames not preserved: %+v", got.Frames)
	}
}

func TestController_UnknownCheckpoint(t *testing.T) {
	c := newTestController(NewMemoryStore())
	_, err := c.Resume(context.Background(), "no-such-id", domain.Decision{Selected: "approve"})
	if !errors.Is(err, domain.ErrUnknownCheckpoint) {
		t.Fatalf("expected ErrUnknownCheckpoint, got %v", err)
	}
}

func TestController_SecondResumeRejected(t *testing.T) {
	c := newTestController(NewMemoryStore())
	cp, _ := c.Begin(context.Background(), draft())

	if _, err := c.Resume(context.Background(), cp.ID, domain.Decision{Selected: "approve"}); err != nil {
		t.Fatalf("first resume failed: %v", err)
	}
	_, err := c.Resume(context.Background(), cp.ID, domain.Decision{Selected: "deny"})
	if !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestController_ConcurrentResumeSingleWinner(t *testing.T) {
	c := newTestController(NewMemoryStore())
	cp, _ := c.Begin(context.Background(), draft())

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Resume(context.Background(), cp.ID, domain.Decision{Selected: "approve"}); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("expected exactly one winning resume, got %d", won)
	}
}

func TestMemoryStore_SweepExpiresPending(t *testing.T) {
	store := NewMemoryStore()
	old := draft()
	old.ID = "old"
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	fresh := draft()
	fresh.ID = "fresh"
	fresh.CreatedAt = time.Now()

	ctx := context.Background()
	store.Put(ctx, &old)
	store.Put(ctx, &fresh)

	removed, err := store.Sweep(ctx, time.Now().Add(-24*time.Hour), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if _, err := store.Claim(ctx, "old"); !errors.Is(err, domain.ErrUnknownCheckpoint) {
		t.Errorf("expired checkpoint should be gone, got %v", err)
	}
	if _, err := store.Claim(ctx, "fresh"); err != nil {
		t.Errorf("fresh checkpoint should survive: %v", err)
	}
}

// Resolved checkpoints outlive the sweep until their resolution ages past
// the cutoff, so a replayed decision still reads as already answered.
func TestMemoryStore_SweepKeepsRecentlyResolved(t *testing.T) {
	store := NewMemoryStore()
	cp := draft()
	cp.ID = "resolved"
	cp.CreatedAt = time.Now().Add(-48 * time.Hour)

	ctx := context.Background()
	store.Put(ctx, &cp)
	if _, err := store.Claim(ctx, "resolved"); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if _, err := store.Sweep(ctx, time.Now().Add(-24*time.Hour), time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	_, err := store.Claim(ctx, "resolved")
	if !errors.Is(err, domain.ErrAlreadyResolved) {
		t.Fatalf("replay should see already_resolved, got %v", err)
	}
}

func TestController_Pending(t *testing.T) {
	c := newTestController(NewMemoryStore())
	ctx := context.Background()

	first, _ := c.Begin(ctx, draft())
	c.Begin(ctx, draft())

	pending, err := c.Pending(ctx)
	if err != nil {
		t.Fatalf("pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	if _, err := c.Resume(ctx, first.ID, domain.Decision{Selected: "approve"}); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	pending, _ = c.Pending(ctx)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending after resolve, got %d", len(pending))
	}
}
