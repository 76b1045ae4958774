package router

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"concierge/internal/approval"
	"concierge/internal/capability"
	"concierge/internal/domain"
	"concierge/internal/gateway"
	"concierge/internal/policy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// scriptedEngine returns canned completions in call order, across every
// worker that shares it.
type scriptedEngine struct {
	steps []*domain.Completion
	calls int
}

func (e *scriptedEngine) Complete(ctx context.Context, req domain.CompletionRequest) (*domain.Completion, error) {
	if e.calls >= len(e.steps) {
		return &domain.Completion{Content: "out of script"}, nil
	}
	step := e.steps[e.calls]
	e.calls++
	return step, nil
}

func text(s string) *domain.Completion { return &domain.Completion{Content: s} }

func callCap(name string, args map[string]any) *domain.Completion {
	return &domain.Completion{ToolCalls: []domain.ToolCall{{ID: "call_" + name, Name: name, Arguments: args}}}
}

func newTestSupervisor(t *testing.T, eng domain.Engine) *Supervisor {
	t.Helper()
	registry := capability.NewRegistry(testLogger())
	if err := capability.RegisterBuiltins(registry); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	approvals := approval.NewController(approval.ControllerConfig{
		Store:  approval.NewMemoryStore(),
		Logger: testLogger(),
	})

	s, err := New(Config{
		Specs:     policy.DefaultSpecs(),
		Registry:  registry,
		Gateways:  []gateway.Provider{gateway.NewWiFi(), gateway.NewVideo(), gateway.NewBilling()},
		Engine:    eng,
		Approvals: approvals,
		Logger:    testLogger(),
		Strategy:  "keyword",
	})
	if err != nil {
		t.Fatalf("build supervisor: %v", err)
	}
	return s
}

func TestSupervisor_DirectReplyVerbatim(t *testing.T) {
	eng := &scriptedEngine{steps: []*domain.Completion{
		text("Your router looks healthy to me."),
	}}
	s := newTestSupervisor(t, eng)

	reply, err := s.Handle(context.Background(), domain.Request{
		Text:       "is my router ok?",
		DomainHint: "wifi",
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if reply.Suspension != nil {
		t.Fatal("expected a normal reply")
	}
	if reply.Response.Text != "Your router looks healthy to me." {
		t.Fatalf("worker text must pass through verbatim, got %q", reply.Response.Text)
	}
	if reply.Response.UIEvents == nil {
		t.Error("UI events must serialize as an empty array, not null")
	}
}

func TestSupervisor_KeywordClassification(t *testing.T) {
	eng := &scriptedEngine{steps: []*domain.Completion{
		text("Let's check your connection."),
	}}
	s := newTestSupervisor(t, eng)

	// No hint; "wifi" and "router" match the wifi domain keywords.
	reply, err := s.Handle(context.Background(), domain.Request{Text: "my wifi router keeps dropping"})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if reply.Response == nil {
		t.Fatal("expected a reply")
	}
}

func TestSupervisor_UnknownDomainDegrades(t *testing.T) {
	eng := &scriptedEngine{steps: []*domain.Completion{
		text("I can answer that generally."),
	}}
	s := newTestSupervisor(t, eng)

	// Nothing matches any domain keywords; the request still gets an answer
	// from a generalist worker with an empty toolset.
	reply, err := s.Handle(context.Background(), domain.Request{Text: "tell me about turtles"})
	if err != nil {
		t.Fatalf("degraded handling failed: %v", err)
	}
	if reply.Response.Text != "I can answer that generally." {
		t.Fatalf("unexpected reply: %q", reply.Response.Text)
	}
}

func TestSupervisor_SuspendAndResume(t *testing.T) {
	eng := &scriptedEngine{steps: []*domain.Completion{
		callCap("restart_router", map[string]any{"device_id": "rt-1"}),
		text("Done! Your router is restarting now."),
	}}
	s := newTestSupervisor(t, eng)
	ctx := context.Background()

	reply, err := s.Handle(ctx, domain.Request{
		Text:          "please restart my router",
		DomainHint:    "wifi",
		Advertisement: domain.Advertisement{Names: []string{"confirmation_dialog"}},
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if reply.Suspension == nil {
		t.Fatal("expected a suspension reply")
	}
	sus := reply.Suspension
	if sus.CheckpointID == "" {
		t.Fatal("suspension must reference a persisted checkpoint")
	}
	if sus.CapabilityName != "restart_router" {
		t.Errorf("wrong capability: %q", sus.CapabilityName)
	}
	if sus.Prompt == "" {
		t.Error("suspension must carry a prompt")
	}

	final, err := s.Resume(ctx, domain.ResumeRequest{
		CheckpointID: sus.CheckpointID,
		Decision:     domain.Decision{Selected: "approve"},
	})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if final.Suspension != nil {
		t.Fatal("expected the resumed request to complete")
	}
	if final.Response.Text != "Done! Your router is restarting now." {
		t.Fatalf("unexpected final text: %q", final.Response.Text)
	}
}

func TestSupervisor_ResumeUnknownAndReplayed(t *testing.T) {
	eng := &scriptedEngine{steps: []*domain.Completion{
		callCap("restart_router", nil),
		text("restarting"),
	}}
	s := newTestSupervisor(t, eng)
	ctx := context.Background()

	_, err := s.Resume(ctx, domain.ResumeRequest{
		CheckpointID: "no-such-checkpoint",
		Decision:     domain.Decision{Selected: "approve"},
	})
	var coded *CodedError
	if !errors.As(err, &coded) || coded.Code != domain.CodeUnknownCheckpoint {
		t.Fatalf("expected unknown_checkpoint, got %v", err)
	}

	reply, err := s.Handle(ctx, domain.Request{Text: "restart my router", DomainHint: "wifi"})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	id := reply.Suspension.CheckpointID
	if _, err := s.Resume(ctx, domain.ResumeRequest{CheckpointID: id, Decision: domain.Decision{Selected: "approve"}}); err != nil {
		t.Fatalf("first resume failed: %v", err)
	}

	_, err = s.Resume(ctx, domain.ResumeRequest{CheckpointID: id, Decision: domain.Decision{Selected: "approve"}})
	if !errors.As(err, &coded) || coded.Code != domain.CodeAlreadyResolved {
		t.Fatalf("expected already_resolved, got %v", err)
	}
}

// A rental in the video domain delegates payment to billing, which suspends
// on process_payment. One checkpoint with two frames results; the approval
// unwinds billing first, then video.
func TestSupervisor_NestedDelegationSuspendResume(t *testing.T) {
	eng := &scriptedEngine{steps: []*domain.Completion{
		// video worker hands payment to the billing delegate
		callCap("billing_assistant", map[string]any{"request": "charge $3.99 for Forrest Gump"}),
		// billing worker wants to charge, which needs approval
		callCap("process_payment", map[string]any{"amount": 3.99}),
		// after approval: billing concludes, then video concludes
		text("Payment of $3.99 processed."),
		text("Enjoy Forrest Gump! The rental is paid for."),
	}}
	s := newTestSupervisor(t, eng)
	ctx := context.Background()

	reply, err := s.Handle(ctx, domain.Request{
		Text:       "rent forrest gump for me",
		DomainHint: "video",
	})
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if reply.Suspension == nil {
		t.Fatal("expected a suspension from the nested worker")
	}
	if reply.Suspension.CapabilityName != "process_payment" {
		t.Fatalf("checkpoint should name the innermost capability, got %q", reply.Suspension.CapabilityName)
	}

	final, err := s.Resume(ctx, domain.ResumeRequest{
		CheckpointID: reply.Suspension.CheckpointID,
		Decision:     domain.Decision{Selected: "approve"},
	})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if final.Response == nil {
		t.Fatal("expected the unwind to complete")
	}
	if final.Response.Text != "Enjoy Forrest Gump! The rental is paid for." {
		t.Fatalf("outermost frame's text should be the reply, got %q", final.Response.Text)
	}
}

