// Package worker runs one request to completion against a negotiated
// toolset. The reasoning itself is delegated to the external engine; the
// worker owns the bounded invocation loop, error recovery, UI event
// ordering, and the suspend point for approval-required capabilities.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"concierge/internal/domain"
	"concierge/internal/negotiate"
)

const (
	defaultMaxIterations = 10
	defaultMaxTokens     = 4096
	defaultTemperature   = 0.7
	defaultCallTimeout   = 30 * time.Second
)

// State of a worker after Run or Resume returned.
type State string

const (
	StateRunning          State = "running"
	StateAwaitingApproval State = "awaiting_approval"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// Outcome is the worker's terminal result for one Run or Resume.
type Outcome struct {
	State      State
	Text       string
	UIEvents   []domain.UIEvent
	FailReason string
	// Suspension is an unpersisted checkpoint draft. Persisting it is the
	// top-level entry point's job; intermediate layers pass it up untouched.
	Suspension *domain.Checkpoint
	// Iterations consumed from the reasoning-loop budget.
	Iterations int
}

// Worker is an execution unit bound to one domain for one request. It is
// built fresh per request with that request's negotiated toolset and holds
// no state that outlives the request.
type Worker struct {
	domainName    string
	instructions  string
	toolset       *negotiate.Toolset
	engine        domain.Engine
	logger        *slog.Logger
	maxIterations int
	maxTokens     int
	temperature   float64
	callTimeout   time.Duration
}

type Config struct {
	Domain        string
	Instructions  string
	Toolset       *negotiate.Toolset
	Engine        domain.Engine
	Logger        *slog.Logger
	MaxIterations int
	MaxTokens     int
	Temperature   float64
	CallTimeout   time.Duration
}

func New(cfg Config) *Worker {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Worker{
		domainName:    cfg.Domain,
		instructions:  cfg.Instructions,
		toolset:       cfg.Toolset,
		engine:        cfg.Engine,
		logger:        cfg.Logger,
		maxIterations: cfg.MaxIterations,
		maxTokens:     cfg.MaxTokens,
		temperature:   cfg.Temperature,
		callTimeout:   cfg.CallTimeout,
	}
}

// Run processes a single request from scratch.
func (w *Worker) Run(ctx context.Context, request string) (*Outcome, error) {
	messages := []domain.Message{{Role: "user", Content: request}}
	return w.loop(ctx, messages, nil, 0)
}

// Resume re-enters the reasoning loop from a suspended frame, with the
// decision's payload already bound as the pending capability's result.
func (w *Worker) Resume(ctx context.Context, frame domain.ExecutionFrame, result string) (*Outcome, error) {
	messages := append(append([]domain.Message{}, frame.Messages...), domain.Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: frame.PendingCall.ID,
		ToolName:   frame.PendingCall.Name,
	})
	events := append([]domain.UIEvent{}, frame.UIEvents...)
	return w.loop(ctx, messages, events, frame.Iterations)
}

// loop is the reasoning/invocation cycle: ask the engine, execute the
// selected capability, feed the result back, repeat until the engine
// concludes or the iteration budget runs out. Invocations are strictly
// sequential; the loop issues at most one at a time.
func (w *Worker) loop(ctx context.Context, messages []domain.Message, events []domain.UIEvent, used int) (*Outcome, error) {
	for iter := used; iter < w.maxIterations; iter++ {
		w.logger.Debug("worker iteration", "domain", w.domainName, "iteration", iter+1, "messages", len(messages))

		resp, err := w.engine.Complete(ctx, domain.CompletionRequest{
			System:       w.instructions,
			Messages:     messages,
			Capabilities: w.toolset.Definitions(),
			MaxTokens:    w.maxTokens,
			Temperature:  w.temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("reasoning engine: %w", err)
		}

		if !resp.HasToolCalls() {
			return &Outcome{
				State:      StateCompleted,
				Text:       resp.Content,
				UIEvents:   events,
				Iterations: iter + 1,
			}, nil
		}

		// One invocation per iteration: surplus selections are discarded and
		// the engine re-decides with the first result in hand.
		call := resp.ToolCalls[0]
		if call.Arguments == nil {
			call.Arguments = map[string]any{}
		}
		messages = append(messages, domain.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: []domain.ToolCall{call},
		})

		cap, ok := w.toolset.Get(call.Name)
		if !ok {
			messages = appendToolResult(messages, call,
				fmt.Sprintf("Error: capability %q is not available in this request", call.Name))
			continue
		}
		def := cap.Definition()

		if def.Effect == domain.EffectApprovalRequired {
			w.logger.Info("suspending for approval",
				"domain", w.domainName, "capability", call.Name)
			return &Outcome{
				State:      StateAwaitingApproval,
				Suspension: w.checkpointDraft(def, call, messages, events, iter+1),
				Iterations: iter + 1,
			}, nil
		}

		result, err := w.invoke(ctx, cap, call)
		if err != nil {
			// Invocation failures are recoverable: the engine sees the error
			// text and may retry, explain, or give up on its own.
			w.logger.Warn("capability invocation failed",
				"domain", w.domainName, "capability", call.Name, "error", err)
			messages = appendToolResult(messages, call,
				fmt.Sprintf("Error executing capability %s: %s", call.Name, err.Error()))
			continue
		}

		if result.Suspension != nil {
			// A nested worker suspended. Stack our own frame on top so the
			// resume can unwind back through us.
			cp := result.Suspension
			cp.Frames = append(cp.Frames, domain.ExecutionFrame{
				Domain:      w.domainName,
				Messages:    messages,
				PendingCall: call,
				UIEvents:    events,
				Iterations:  iter + 1,
			})
			return &Outcome{
				State:      StateAwaitingApproval,
				Suspension: cp,
				Iterations: iter + 1,
			}, nil
		}

		events = append(events, result.UIEvents...)

		if def.Render == domain.RenderInline && result.Content != "" {
			// Inline capabilities end the turn directly; their output is the
			// user-visible answer.
			return &Outcome{
				State:      StateCompleted,
				Text:       result.Content,
				UIEvents:   events,
				Iterations: iter + 1,
			}, nil
		}

		messages = appendToolResult(messages, call, result.Content)
	}

	w.logger.Warn("reasoning loop exceeded", "domain", w.domainName, "max", w.maxIterations)
	return &Outcome{
		State:      StateFailed,
		FailReason: "reasoning loop exceeded",
		UIEvents:   events,
		Iterations: w.maxIterations,
	}, nil
}

func (w *Worker) invoke(ctx context.Context, cap domain.Capability, call domain.ToolCall) (*domain.Result, error) {
	cctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	w.logger.Debug("invoking capability", "domain", w.domainName, "capability", call.Name)
	result, err := cap.Invoke(cctx, call.Arguments)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &domain.Result{}
	}
	return result, nil
}

// checkpointDraft freezes the current execution into a single-frame
// checkpoint. The frame's messages already include the assistant turn that
// selected the pending capability, so a resume only has to append the
// decision as the call's result.
func (w *Worker) checkpointDraft(def domain.CapabilityDefinition, call domain.ToolCall, messages []domain.Message, events []domain.UIEvent, iterations int) *domain.Checkpoint {
	return &domain.Checkpoint{
		CapabilityName: def.Name,
		Arguments:      call.Arguments,
		Prompt:         approvalPrompt(def, call.Arguments),
		Options:        approvalOptions(call.Arguments),
		Frames: []domain.ExecutionFrame{{
			Domain:      w.domainName,
			Messages:    messages,
			PendingCall: call,
			UIEvents:    events,
			Iterations:  iterations,
		}},
	}
}

func appendToolResult(messages []domain.Message, call domain.ToolCall, content string) []domain.Message {
	return append(messages, domain.Message{
		Role:       "tool",
		Content:    content,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	})
}
