package bus

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"concierge/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	n := New(testLogger())
	defer n.Close()

	ch, cancel := n.Subscribe()
	defer cancel()

	n.Publish(domain.Notification{Type: domain.NotifyUIEvent, Domain: "wifi"})

	select {
	case note := <-ch:
		if note.Type != domain.NotifyUIEvent || note.Domain != "wifi" {
			t.Fatalf("unexpected notification: %+v", note)
		}
		if note.Timestamp.IsZero() {
			t.Error("publish should stamp the notification")
		}
	case <-time.After(time.Second):
		t.Fatal("notification never arrived")
	}
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New(testLogger())
	defer n.Close()

	ch1, cancel1 := n.Subscribe()
	defer cancel1()
	ch2, cancel2 := n.Subscribe()
	defer cancel2()

	n.Publish(domain.Notification{Type: domain.NotifyCheckpointCreated, CheckpointID: "cp-1"})

	for i, ch := range []<-chan domain.Notification{ch1, ch2} {
		select {
		case note := <-ch:
			if note.CheckpointID != "cp-1" {
				t.Fatalf("subscriber %d got wrong notification: %+v", i, note)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never got the notification", i)
		}
	}
}

func TestNotifier_CancelStopsDelivery(t *testing.T) {
	n := New(testLogger())
	defer n.Close()

	ch, cancel := n.Subscribe()
	cancel()

	// The channel is closed on cancel; publish must not panic.
	n.Publish(domain.Notification{Type: domain.NotifyUIEvent})

	if _, open := <-ch; open {
		t.Fatal("channel should be closed after cancel")
	}
}

func TestNotifier_SlowSubscriberDoesNotBlock(t *testing.T) {
	n := New(testLogger())
	defer n.Close()

	_, cancel := n.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < defaultBuffer*2; i++ {
			n.Publish(domain.Notification{Type: domain.NotifyUIEvent})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestNotifier_PublishAfterClose(t *testing.T) {
	n := New(testLogger())
	ch, cancel := n.Subscribe()
	defer cancel()

	n.Close()
	n.Publish(domain.Notification{Type: domain.NotifyUIEvent})

	if _, open := <-ch; open {
		t.Fatal("subscribers should be disconnected on close")
	}
}
