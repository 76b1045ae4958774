package domain

import "context"

// Engine is the external reasoning engine. Given the conversation so far and
// the negotiated capability set, it either concludes with final text or
// selects a capability to invoke.
type Engine interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

type CompletionRequest struct {
	System       string
	Messages     []Message
	Capabilities []CapabilityDefinition
	MaxTokens    int
	Temperature  float64
}

type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the engine selected a capability instead of
// concluding with a final answer.
func (c *Completion) HasToolCalls() bool {
	return len(c.ToolCalls) > 0
}

// Message is one turn in a worker's conversation trace.
type Message struct {
	Role       string     `json:"role"` // system | user | assistant | tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// ToolCall is an engine-selected capability invocation.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}
