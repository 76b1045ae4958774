// Package server exposes the HTTP surface: request dispatch, checkpoint
// resolution, the notification event stream, health and metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"concierge/internal/approval"
	"concierge/internal/bus"
	"concierge/internal/domain"
	"concierge/internal/router"
)

// Server wires the supervisor and notification bus to HTTP handlers.
type Server struct {
	supervisor *router.Supervisor
	approvals  *approval.Controller
	notifier   *bus.Notifier
	logger     *slog.Logger

	metricsEndpoint string // empty disables the metrics handler
	httpServer      *http.Server
}

type Config struct {
	Supervisor      *router.Supervisor
	Approvals       *approval.Controller
	Notifier        *bus.Notifier
	Logger          *slog.Logger
	MetricsEndpoint string
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		supervisor:      cfg.Supervisor,
		approvals:       cfg.Approvals,
		notifier:        cfg.Notifier,
		logger:          cfg.Logger,
		metricsEndpoint: cfg.MetricsEndpoint,
	}
}

// Handler builds the route table. Exposed separately from Start so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Post("/v1/requests", s.handleRequest)
	r.Post("/v1/resume", s.handleResume)
	r.Get("/v1/checkpoints", s.handleCheckpoints)
	r.Get("/v1/events", s.handleEvents)
	r.Get("/healthz", s.handleHealth)
	if s.metricsEndpoint != "" {
		r.Handle(s.metricsEndpoint, promhttp.Handler())
	}
	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutCtx)
	}
}

// handleRequest dispatches one user request. A completed request returns 200
// with the reply; a suspended one returns 202 with the checkpoint reference.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "text is required")
		return
	}

	reply, err := s.supervisor.Handle(r.Context(), req)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	s.writeReply(w, reply)
}

// handleResume resolves a pending checkpoint with the caller's decision.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	var req domain.ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "invalid request body")
		return
	}
	if req.CheckpointID == "" {
		s.writeError(w, http.StatusBadRequest, domain.CodeBadRequest, "checkpoint_id is required")
		return
	}

	reply, err := s.supervisor.Resume(r.Context(), req)
	if err != nil {
		s.writeCodedError(w, err)
		return
	}
	s.writeReply(w, reply)
}

// handleCheckpoints lists unresolved checkpoints as suspension summaries.
func (s *Server) handleCheckpoints(w http.ResponseWriter, r *http.Request) {
	pending, err := s.approvals.Pending(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, domain.CodeInternal, "could not list pending approvals")
		return
	}

	out := make([]domain.Suspension, 0, len(pending))
	for _, cp := range pending {
		out = append(out, domain.Suspension{
			CheckpointID:   cp.ID,
			CapabilityName: cp.CapabilityName,
			Prompt:         cp.Prompt,
			Options:        cp.Options,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"checkpoints": out})
}

// handleEvents streams bus notifications over SSE until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, domain.CodeInternal, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.notifier.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case note, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(note)
			if err != nil {
				s.logger.Error("notification encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", note.Type, data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type replyBody struct {
	Status     string             `json:"status"` // "completed" | "suspended"
	Reply      *domain.Response   `json:"reply,omitempty"`
	Suspension *domain.Suspension `json:"suspension,omitempty"`
}

func (s *Server) writeReply(w http.ResponseWriter, reply *domain.Reply) {
	if reply.Suspension != nil {
		writeJSON(w, http.StatusAccepted, replyBody{Status: "suspended", Suspension: reply.Suspension})
		return
	}
	writeJSON(w, http.StatusOK, replyBody{Status: "completed", Reply: reply.Response})
}

// writeCodedError maps router error codes onto HTTP statuses. Unknown errors
// collapse into a generic 500 so internals never leak.
func (s *Server) writeCodedError(w http.ResponseWriter, err error) {
	var coded *router.CodedError
	if !errors.As(err, &coded) {
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, domain.CodeInternal, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch coded.Code {
	case domain.CodeUnknownCheckpoint:
		status = http.StatusNotFound
	case domain.CodeAlreadyResolved:
		status = http.StatusConflict
	case domain.CodeBadRequest:
		status = http.StatusBadRequest
	case domain.CodeLoopExceeded:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "code", coded.Code, "error", err)
	} else {
		s.logger.Warn("request rejected", "code", coded.Code)
	}
	s.writeError(w, status, coded.Code, coded.Message)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
