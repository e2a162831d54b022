package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Change event types, one per entity kind.
const (
	StudentChanged    = "student.changed"
	ClassChanged      = "class.changed"
	AssignmentChanged = "assignment.changed"
	GradeChanged      = "grade.changed"
	AttendanceChanged = "attendance.changed"
)

// Change operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpBatch  = "batch"
)

// ChangeEvent announces that stored data changed and derived views are stale.
type ChangeEvent struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Op       string    `json:"op"`
	EntityID int       `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}

// NewChangeEvent stamps an event with a fresh id and the current time.
func NewChangeEvent(typ, op string, entityID int) ChangeEvent {
	return ChangeEvent{
		ID:       uuid.NewString(),
		Type:     typ,
		Op:       op,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
}

// Message wraps the event for transport.
func (e ChangeEvent) Message() (Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: e.Type, Body: body}, nil
}

// PublishChange encodes and publishes e.
func PublishChange(ctx context.Context, p Publisher, e ChangeEvent) error {
	msg, err := e.Message()
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return p.Publish(ctx, msg)
}

// DecodeChange parses a message produced by PublishChange.
func DecodeChange(msg Message) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode %q message: %w", msg.Type, err)
	}
	if e.Type == "" {
		e.Type = msg.Type
	}
	return e, nil
}
