// Package event emits the best-effort side effects of a committed mutation:
// audit rows, notification rows and websocket pushes. Emission runs after
// the primary transaction commits, so a failure here can never be confused
// with a failure of the core state change — it is logged and dropped.
package event

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
)

// Notification describes a per-user message to persist and push.
type Notification struct {
	UserID    uuid.UUID
	Type      string
	Title     string
	Message   string
	Category  string
	RelatedID string
}

// Event is one committed action with its audit payload and fan-out.
type Event struct {
	ActorID       *uuid.UUID
	Action        string
	Entity        string
	EntityID      string
	Details       map[string]interface{}
	Notifications []Notification
}

// Broadcaster pushes a serialized message to connected websocket clients.
type Broadcaster interface {
	Send(message []byte)
}

// Emitter writes audit and notification rows after the fact.
type Emitter struct {
	audits        repository.AuditRepository
	notifications repository.NotificationRepository
	hub           Broadcaster
	logger        *zap.Logger
}

func NewEmitter(audits repository.AuditRepository, notifications repository.NotificationRepository, hub Broadcaster, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{audits: audits, notifications: notifications, hub: hub, logger: logger}
}

// Emit records the audit entry and fans out notifications. Errors are
// logged, never returned: by the time Emit runs the primary mutation has
// already committed.
func (e *Emitter) Emit(ctx context.Context, ev Event) {
	details, err := json.Marshal(ev.Details)
	if err != nil {
		details = []byte("{}")
	}

	entry := model.AuditLog{
		UserID:   ev.ActorID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Details:  string(details),
	}
	if err := e.audits.Create(ctx, &entry); err != nil {
		e.logger.Warn("audit write failed",
			zap.String("action", ev.Action),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err))
	}

	for _, n := range ev.Notifications {
		row := model.Notification{
			UserID:    n.UserID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Status:    model.NotificationUnread,
			Category:  n.Category,
			RelatedID: n.RelatedID,
		}
		if err := e.notifications.Create(ctx, &row); err != nil {
			e.logger.Warn("notification write failed",
				zap.String("type", n.Type),
				zap.String("user_id", n.UserID.String()),
				zap.Error(err))
			continue
		}
		e.push(row)
	}
}

func (e *Emitter) push(n model.Notification) {
	if e.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":        "notification",
		"notification": n,
	})
	if err != nil {
		return
	}
	e.hub.Send(payload)
}
