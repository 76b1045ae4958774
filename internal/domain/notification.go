package domain

import "time"

// NotificationType classifies a side-channel notification.
type NotificationType string

const (
	NotifyUIEvent            NotificationType = "ui.event"
	NotifyCheckpointCreated  NotificationType = "checkpoint.created"
	NotifyCheckpointResolved NotificationType = "checkpoint.resolved"
	NotifyRequestCompleted   NotificationType = "request.completed"
)

// Notification is an observational event published on the internal bus and
// relayed to event-stream subscribers. It never carries the primary reply.
type Notification struct {
	Type         NotificationType `json:"type"`
	Domain       string           `json:"domain,omitempty"`
	CheckpointID string           `json:"checkpoint_id,omitempty"`
	Event        *UIEvent         `json:"event,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}
