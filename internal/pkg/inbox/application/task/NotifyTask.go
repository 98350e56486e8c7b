package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"textback/internal/infrastructure/queue/port"
	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// TypeNotify is the task type for notification fan-out.
const TypeNotify = "inbox:notify"

// QueueNotify is the asynq queue notification tasks go to.
const QueueNotify = "notify"

// Notify triggers.
const (
	TriggerMessage    = "message"
	TriggerAssignment = "assignment"
)

// NotifyPayload is the serialized trigger handed to the background worker.
// It carries a snapshot of the state at trigger time so the handler does not
// re-read the conversation.
type NotifyPayload struct {
	Trigger        string      `json:"trigger"`
	BusinessID     uuid.UUID   `json:"business_id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	MessageID      *uuid.UUID  `json:"message_id,omitempty"`
	Sender         string      `json:"sender,omitempty"`
	SenderType     string      `json:"sender_type,omitempty"`
	AssignedTo     *uuid.UUID  `json:"assigned_to,omitempty"`
	AssignmentID   *uuid.UUID  `json:"assignment_id,omitempty"`
	AssignedBy     *uuid.UUID  `json:"assigned_by,omitempty"`
	Mentions       []uuid.UUID `json:"mentions,omitempty"`
}

// NewNotifyTask serializes a payload into a queue task.
func NewNotifyTask(p NotifyPayload) (port.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return port.Task{}, fmt.Errorf("notify task: marshal: %w", err)
	}
	return port.Task{Type: TypeNotify, Payload: b}, nil
}

// NewNotifyHandler builds the worker-side handler that applies the fan-out
// rules and writes notifications. Each recipient's write is independent: a
// failure for one is logged and does not abort the others.
func NewNotifyHandler(repo repository.InboxRepository, logger *slog.Logger) port.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t port.Task) error {
		var p NotifyPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return fmt.Errorf("notify task: unmarshal: %w", err)
		}
		now := time.Now().UTC()
		var failed int

		write := func(n inbox.Notification) {
			if err := repo.CreateNotification(ctx, n); err != nil {
				failed++
				logger.Warn("notification write failed",
					slog.String("user_id", n.UserID.String()),
					slog.String("type", string(n.Type)),
					slog.Any("error", err))
			}
		}

		switch p.Trigger {
		case TriggerMessage:
			switch inbox.SenderType(p.SenderType) {
			case inbox.SenderCustomer:
				// Unassigned conversations notify nobody.
				if p.AssignedTo == nil {
					return nil
				}
				write(inbox.Notification{
					ID:             uuid.New(),
					UserID:         *p.AssignedTo,
					BusinessID:     p.BusinessID,
					ConversationID: p.ConversationID,
					// No message id: repeated customer messages collapse
					// into one unread notification per conversation.
					Type:      inbox.NotificationNewMessage,
					Payload:   map[string]any{"conversationId": p.ConversationID.String()},
					CreatedAt: now,
				})
			case inbox.SenderTeam:
				author, _ := uuid.Parse(p.Sender)
				for _, m := range p.Mentions {
					if m == author {
						continue
					}
					write(inbox.Notification{
						ID:             uuid.New(),
						UserID:         m,
						BusinessID:     p.BusinessID,
						ConversationID: p.ConversationID,
						MessageID:      p.MessageID,
						Type:           inbox.NotificationMention,
						Payload: map[string]any{
							"conversationId": p.ConversationID.String(),
							"mentionedBy":    p.Sender,
						},
						CreatedAt: now,
					})
				}
			}
		case TriggerAssignment:
			if p.AssignedTo == nil {
				return nil
			}
			payload := map[string]any{"conversationId": p.ConversationID.String()}
			if p.AssignmentID != nil {
				payload["assignmentId"] = p.AssignmentID.String()
			}
			if p.AssignedBy != nil {
				payload["assignedBy"] = p.AssignedBy.String()
			}
			write(inbox.Notification{
				ID:             uuid.New(),
				UserID:         *p.AssignedTo,
				BusinessID:     p.BusinessID,
				ConversationID: p.ConversationID,
				Type:           inbox.NotificationAssignment,
				Payload:        payload,
				CreatedAt:      now,
			})
		default:
			logger.Warn("unknown notify trigger", slog.String("trigger", p.Trigger))
			return nil
		}

		if failed > 0 {
			return fmt.Errorf("notify task: %d notification write(s) failed", failed)
		}
		return nil
	}
}

// RegisterNotifyTask wires the handler into the queue server.
func RegisterNotifyTask(srv port.Server, repo repository.InboxRepository, logger *slog.Logger) {
	srv.Register(TypeNotify, NewNotifyHandler(repo, logger))
}
