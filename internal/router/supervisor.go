// Package router is the entry point for end-user requests: it classifies the
// domain, builds that domain's worker with a freshly negotiated toolset,
// dispatches, and relays the worker's answer verbatim. Suspensions become
// persisted checkpoints here and nowhere else.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"concierge/internal/approval"
	"concierge/internal/bus"
	"concierge/internal/capability"
	"concierge/internal/domain"
	"concierge/internal/gateway"
	"concierge/internal/metrics"
	"concierge/internal/negotiate"
	"concierge/internal/policy"
	"concierge/internal/worker"
)

const degradedInstructions = `You are a helpful customer service assistant. You have no specialized tools for this request; answer from general knowledge, and if the request needs an action you cannot perform, say so and suggest contacting support.`

// Supervisor routes requests to domain workers and assembles replies.
type Supervisor struct {
	specs      map[string]policy.DomainSpec
	order      []string
	classifier *classifier
	negotiator *negotiate.Negotiator
	fixed      map[string][]domain.Capability // domain -> gateway-backed capabilities
	engine     domain.Engine
	approvals  *approval.Controller
	notifier   *bus.Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger

	maxIterations int
	maxTokens     int
	temperature   float64
	callTimeout   time.Duration
	defaultDomain string
}

type Config struct {
	Specs         []policy.DomainSpec
	Registry      *capability.Registry
	Gateways      []gateway.Provider
	Engine        domain.Engine
	Approvals     *approval.Controller
	Notifier      *bus.Notifier
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	Strategy      string // keyword | llm | hybrid (default hybrid)
	DefaultDomain string // fallback when classification finds nothing
	MaxIterations int
	MaxTokens     int
	Temperature   float64
	CallTimeout   time.Duration
}

func New(cfg Config) (*Supervisor, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Specs) == 0 {
		return nil, fmt.Errorf("router: no domain specs configured")
	}

	specs := make(map[string]policy.DomainSpec, len(cfg.Specs))
	order := make([]string, 0, len(cfg.Specs))
	for _, s := range cfg.Specs {
		if _, dup := specs[s.Name]; dup {
			return nil, fmt.Errorf("router: duplicate domain spec %q", s.Name)
		}
		specs[s.Name] = s
		order = append(order, s.Name)
	}

	fixed := make(map[string][]domain.Capability, len(cfg.Gateways))
	for _, p := range cfg.Gateways {
		// Provider operations belong to the provider's owning domain,
		// whatever they are.
		fixed[p.Name()] = gateway.Capabilities(p)
	}

	table := policy.NewTable(cfg.Specs)
	return &Supervisor{
		specs:         specs,
		order:         order,
		classifier:    newClassifier(cfg.Specs, cfg.Engine, cfg.Strategy, cfg.Logger),
		negotiator:    negotiate.New(table, cfg.Registry, cfg.Logger),
		fixed:         fixed,
		engine:        cfg.Engine,
		approvals:     cfg.Approvals,
		notifier:      cfg.Notifier,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		maxIterations: cfg.MaxIterations,
		maxTokens:     cfg.MaxTokens,
		temperature:   cfg.Temperature,
		callTimeout:   cfg.CallTimeout,
		defaultDomain: cfg.DefaultDomain,
	}, nil
}

// Handle runs one request end to end: classify, negotiate, dispatch. The
// worker's final text is the reply; no commentary is added here.
func (s *Supervisor) Handle(ctx context.Context, req domain.Request) (*domain.Reply, error) {
	dom := s.selectDomain(ctx, req)
	s.logger.Info("routing request", "domain", dom, "advertised", len(req.Advertisement.AllNames()))

	w := s.buildWorker(dom, req.Advertisement)
	out, err := w.Run(ctx, req.Text)
	if err != nil {
		s.countRequest(dom, "error")
		s.logger.Error("worker run failed", "domain", dom, "error", err)
		return nil, &CodedError{Code: domain.CodeInternal, Message: "the assistant could not process this request", err: err}
	}
	s.observeIterations(out.Iterations)

	switch out.State {
	case worker.StateAwaitingApproval:
		s.countRequest(dom, "suspended")
		return s.suspend(ctx, out.Suspension, req.Advertisement)
	case worker.StateFailed:
		s.countRequest(dom, "failed")
		return nil, &CodedError{Code: domain.CodeLoopExceeded, Message: "the assistant could not complete this request"}
	}

	s.countRequest(dom, "completed")
	s.notifyEvents(dom, out.UIEvents)
	s.notify(domain.Notification{Type: domain.NotifyRequestCompleted, Domain: dom})
	return &domain.Reply{Response: &domain.Response{Text: out.Text, UIEvents: events(out.UIEvents)}}, nil
}

// selectDomain honors a hint that names a configured domain; everything else
// goes through the classifier. The classifier's single choice is
// authoritative, with no secondary disambiguation.
func (s *Supervisor) selectDomain(ctx context.Context, req domain.Request) string {
	if req.DomainHint != "" {
		if _, ok := s.specs[req.DomainHint]; ok {
			return req.DomainHint
		}
		s.logger.Warn("unknown domain hint, classifying instead", "hint", req.DomainHint)
	}
	if dom := s.classifier.classify(ctx, req.Text); dom != "" {
		return dom
	}
	return s.defaultDomain
}

// buildWorker constructs a request-scoped worker: the domain's gateway
// operations plus delegate capabilities form the fixed set, then the
// advertisement is negotiated on top. Unknown domains get a degraded worker
// with an empty toolset rather than a rejection.
func (s *Supervisor) buildWorker(dom string, adv domain.Advertisement) *worker.Worker {
	spec, known := s.specs[dom]
	instructions := spec.Instructions
	if !known {
		instructions = degradedInstructions
	}

	var fixed []domain.Capability
	if known {
		fixed = append(fixed, s.fixed[spec.Gateway]...)
		for _, child := range spec.Delegates {
			childSpec, ok := s.specs[child]
			if !ok {
				s.logger.Warn("delegate references unknown domain", "domain", dom, "delegate", child)
				continue
			}
			child := child // capture for the factory
			fixed = append(fixed, worker.NewDelegate(
				child+"_assistant",
				fmt.Sprintf("Hand a task to the %s specialist: %s", child, childSpec.Description),
				func() *worker.Worker { return s.buildWorker(child, adv) },
			))
		}
	}

	return worker.New(worker.Config{
		Domain:        dom,
		Instructions:  instructions,
		Toolset:       s.negotiator.Negotiate(dom, adv, fixed),
		Engine:        s.engine,
		Logger:        s.logger,
		MaxIterations: s.maxIterations,
		MaxTokens:     s.maxTokens,
		Temperature:   s.temperature,
		CallTimeout:   s.callTimeout,
	})
}

// suspend persists a checkpoint draft and shapes the suspension reply. The
// draft is propagated unchanged from wherever in the call chain it arose.
func (s *Supervisor) suspend(ctx context.Context, draft *domain.Checkpoint, adv domain.Advertisement) (*domain.Reply, error) {
	draft.Advertisement = adv
	cp, err := s.approvals.Begin(ctx, *draft)
	if err != nil {
		return nil, &CodedError{Code: domain.CodeInternal, Message: "could not record the approval request", err: err}
	}

	if s.metrics != nil {
		s.metrics.Suspensions.WithLabelValues(cp.CapabilityName).Inc()
		s.metrics.PendingCheckpoints.Inc()
	}
	s.notify(domain.Notification{Type: domain.NotifyCheckpointCreated, CheckpointID: cp.ID})

	return &domain.Reply{Suspension: &domain.Suspension{
		CheckpointID:   cp.ID,
		CapabilityName: cp.CapabilityName,
		Prompt:         cp.Prompt,
		Options:        cp.Options,
	}}, nil
}

func (s *Supervisor) notify(n domain.Notification) {
	if s.notifier != nil {
		s.notifier.Publish(n)
	}
}

func (s *Supervisor) notifyEvents(dom string, evs []domain.UIEvent) {
	for i := range evs {
		ev := evs[i]
		s.notify(domain.Notification{Type: domain.NotifyUIEvent, Domain: dom, Event: &ev})
		if s.metrics != nil {
			s.metrics.UIEvents.Inc()
		}
	}
}

func (s *Supervisor) countRequest(dom, outcome string) {
	if s.metrics != nil {
		s.metrics.Requests.WithLabelValues(dom, outcome).Inc()
	}
}

func (s *Supervisor) observeIterations(n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.LoopIterations.Observe(float64(n))
	}
}

// events normalizes a nil slice so the wire shape is always an array.
func events(evs []domain.UIEvent) []domain.UIEvent {
	if evs == nil {
		return []domain.UIEvent{}
	}
	return evs
}
