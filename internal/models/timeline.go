package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimelineEventType discriminates the record a timeline event was derived from.
type TimelineEventType string

const (
	EventBlueprint TimelineEventType = "blueprint"
	EventAudit     TimelineEventType = "audit"
)

// TimelineEvent is a request-scoped projection over blueprints and audit logs.
// It is never persisted.
type TimelineEvent struct {
	ID      uuid.UUID         `json:"id"`
	Type    TimelineEventType `json:"type"`
	Date    time.Time         `json:"date"`
	Summary string            `json:"summary"`
	Details json.RawMessage   `json:"details"`
}

// BlueprintEvent projects a blueprint onto the timeline.
func BlueprintEvent(b Blueprint) TimelineEvent {
	return TimelineEvent{
		ID:      b.ID,
		Type:    EventBlueprint,
		Date:    b.CreatedAt,
		Summary: fmt.Sprintf("Blueprint v%d", b.Version),
		Details: rawOrNull(b.Content),
	}
}

// AuditEvent projects an audit log onto the timeline.
func AuditEvent(a AuditLog) TimelineEvent {
	return TimelineEvent{
		ID:      a.ID,
		Type:    EventAudit,
		Date:    a.CreatedAt,
		Summary: fmt.Sprintf("Audit Score: %d/100", a.DisplayScore()),
		Details: rawOrNull(a.Findings),
	}
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}
