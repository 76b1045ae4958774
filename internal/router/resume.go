package router

import (
	"context"
	"errors"

	"concierge/internal/domain"
	"concierge/internal/worker"
)

// Resume resolves a checkpoint with the caller's decision and continues
// execution exactly where it stopped. Frames unwind innermost first: the
// decision becomes the suspended capability's result in frame 0; each outer
// frame then receives its child's final text as the result of the delegate
// call it was waiting on.
func (s *Supervisor) Resume(ctx context.Context, req domain.ResumeRequest) (*domain.Reply, error) {
	cp, err := s.approvals.Resume(ctx, req.CheckpointID, req.Decision)
	if err != nil {
		s.countResume("rejected")
		switch {
		case errors.Is(err, domain.ErrUnknownCheckpoint):
			return nil, &CodedError{Code: domain.CodeUnknownCheckpoint, Message: "no pending approval with this id", err: err}
		case errors.Is(err, domain.ErrAlreadyResolved):
			return nil, &CodedError{Code: domain.CodeAlreadyResolved, Message: "this approval was already answered", err: err}
		}
		return nil, &CodedError{Code: domain.CodeInternal, Message: "could not resolve the approval", err: err}
	}
	if s.metrics != nil {
		s.metrics.PendingCheckpoints.Dec()
	}
	s.notify(domain.Notification{Type: domain.NotifyCheckpointResolved, CheckpointID: cp.ID})

	result := req.Decision.ResultText()
	var out *worker.Outcome
	for i, frame := range cp.Frames {
		w := s.buildWorker(frame.Domain, cp.Advertisement)
		out, err = w.Resume(ctx, frame, result)
		if err != nil {
			s.countResume("failed")
			s.logger.Error("worker resume failed", "domain", frame.Domain, "checkpoint", cp.ID, "error", err)
			return nil, &CodedError{Code: domain.CodeInternal, Message: "the assistant could not continue this request", err: err}
		}
		s.observeIterations(out.Iterations - frame.Iterations)

		if out.State == worker.StateAwaitingApproval {
			// Suspended again mid-unwind: the frames we have not reached yet
			// are still pending and ride along on the new checkpoint.
			draft := out.Suspension
			draft.Frames = append(draft.Frames, cp.Frames[i+1:]...)
			s.countResume("resuspended")
			return s.suspend(ctx, draft, cp.Advertisement)
		}
		if out.State == worker.StateFailed {
			s.countResume("failed")
			return nil, &CodedError{Code: domain.CodeLoopExceeded, Message: "the assistant could not complete this request"}
		}

		// This frame finished. Its text becomes the pending delegate call's
		// result in the next frame out; its UI events join the parent stream
		// after the parent's own pre-suspension events.
		result = out.Text
		if i+1 < len(cp.Frames) {
			cp.Frames[i+1].UIEvents = append(cp.Frames[i+1].UIEvents, out.UIEvents...)
		}
	}

	s.countResume("completed")
	dom := cp.Frames[len(cp.Frames)-1].Domain
	s.notifyEvents(dom, out.UIEvents)
	s.notify(domain.Notification{Type: domain.NotifyRequestCompleted, Domain: dom, CheckpointID: cp.ID})
	return &domain.Reply{Response: &domain.Response{Text: out.Text, UIEvents: events(out.UIEvents)}}, nil
}

func (s *Supervisor) countResume(outcome string) {
	if s.metrics != nil {
		s.metrics.Resumes.WithLabelValues(outcome).Inc()
	}
}
