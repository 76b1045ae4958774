package domain

import "time"

// ExecutionFrame is one suspended worker's execution state. Frames are
// ordered innermost first: frame 0 is the worker whose capability invocation
// was intercepted; each later frame is a parent waiting on a delegate call.
type ExecutionFrame struct {
	Domain      string    `json:"domain"`
	Messages    []Message `json:"messages"`
	PendingCall ToolCall  `json:"pending_call"`
	UIEvents    []UIEvent `json:"ui_events,omitempty"`
	// Iterations already consumed from the worker's reasoning-loop budget.
	Iterations int `json:"iterations"`
}

// Checkpoint is a persisted, resumable suspension point created when an
// approval-required capability was about to run. A suspension anywhere in
// the call chain surfaces as exactly one checkpoint at the top-level entry
// point; intermediate layers never hold their own.
type Checkpoint struct {
	ID             string           `json:"id"`
	CapabilityName string           `json:"capability_name"`
	Arguments      map[string]any   `json:"arguments,omitempty"`
	Prompt         string           `json:"prompt"`
	Options        []string         `json:"options,omitempty"`
	Frames         []ExecutionFrame `json:"frames"`
	// Advertisement from the original request, kept so the toolset can be
	// renegotiated identically when the resume arrives.
	Advertisement Advertisement `json:"advertisement"`
	CreatedAt     time.Time     `json:"created_at"`
}
