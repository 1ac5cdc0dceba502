package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTaskCreated = "task.created"
	EventTaskStatus  = "task.status"
	EventTaskDeleted = "task.deleted"
)

// TaskEvent is broadcast whenever a task in the current bucket changes.
type TaskEvent struct {
	TaskID string `json:"task_id"`
	Bucket string `json:"bucket"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
