package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"textback/internal/infrastructure/events"
	queue "textback/internal/infrastructure/queue/port"
	"textback/internal/infrastructure/realtime"
	inbox "textback/internal/pkg/inbox/application/domain"
	"textback/internal/pkg/inbox/application/task"
)

// Notifier fans out the side channels of a mutation: the background
// notification task, the integration event, and the realtime push. Every
// collaborator is optional and every call is best-effort; a notifier failure
// never surfaces to the triggering caller.
type Notifier struct {
	Queue    queue.Client
	Events   events.Publisher
	Realtime *realtime.Router
	Log      *slog.Logger
}

func NewNotifier(q queue.Client, ev events.Publisher, rt *realtime.Router, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{Queue: q, Events: ev, Realtime: rt, Log: logger}
}

// MessageAppended dispatches the fan-out for a newly appended message.
func (n *Notifier) MessageAppended(ctx context.Context, c *inbox.Conversation, m *inbox.Message) {
	if n == nil || c == nil || m == nil {
		return
	}
	p := task.NotifyPayload{
		Trigger:        task.TriggerMessage,
		BusinessID:     c.BusinessID,
		ConversationID: c.ID,
		MessageID:      &m.ID,
		Sender:         m.Sender,
		SenderType:     string(m.SenderType),
		AssignedTo:     c.AssignedTo,
		Mentions:       m.Mentions(),
	}
	n.enqueue(ctx, p)

	if m.SenderType == inbox.SenderCustomer {
		n.publish(ctx, events.KeyMessageInbound, c.BusinessID.String(), map[string]any{
			"conversationId": c.ID.String(),
			"messageId":      m.ID.String(),
			"customerPhone":  c.CustomerPhone,
		})
	}
	n.broadcast(c.BusinessID.String(), "message.appended", map[string]any{
		"conversationId": c.ID.String(),
		"messageId":      m.ID.String(),
		"senderType":     string(m.SenderType),
	}, authorUserID(m))
}

// ConversationAssigned dispatches the fan-out for a completed assignment.
func (n *Notifier) ConversationAssigned(ctx context.Context, c *inbox.Conversation, a *inbox.Assignment) {
	if n == nil || c == nil || a == nil {
		return
	}
	p := task.NotifyPayload{
		Trigger:        task.TriggerAssignment,
		BusinessID:     c.BusinessID,
		ConversationID: c.ID,
		AssignedTo:     &a.UserID,
		AssignmentID:   &a.ID,
		AssignedBy:     &a.AssignedBy,
	}
	n.enqueue(ctx, p)

	n.publish(ctx, events.KeyConversationAssigned, c.BusinessID.String(), map[string]any{
		"conversationId": c.ID.String(),
		"userId":         a.UserID.String(),
		"assignmentId":   a.ID.String(),
	})
	n.broadcast(c.BusinessID.String(), "conversation.assigned", map[string]any{
		"conversationId": c.ID.String(),
		"userId":         a.UserID.String(),
	}, "")
}

// ConversationResolved announces a resolution to the inbox and downstream consumers.
func (n *Notifier) ConversationResolved(ctx context.Context, c *inbox.Conversation) {
	if n == nil || c == nil {
		return
	}
	n.publish(ctx, events.KeyConversationResolved, c.BusinessID.String(), map[string]any{
		"conversationId": c.ID.String(),
	})
	n.broadcast(c.BusinessID.String(), "conversation.resolved", map[string]any{
		"conversationId": c.ID.String(),
	}, "")
}

func (n *Notifier) enqueue(ctx context.Context, p task.NotifyPayload) {
	if n.Queue == nil {
		return
	}
	t, err := task.NewNotifyTask(p)
	if err != nil {
		n.Log.Warn("notify task build failed", slog.Any("error", err))
		return
	}
	if _, err := n.Queue.Enqueue(ctx, t, queue.EnqueueOption{Queue: task.QueueNotify, MaxRetry: 3}); err != nil {
		n.Log.Warn("notify task enqueue failed", slog.Any("error", err))
	}
}

func (n *Notifier) publish(ctx context.Context, key, businessID string, data map[string]any) {
	if n.Events == nil {
		return
	}
	env := events.Envelope{Meta: events.Meta{Type: key, BusinessID: businessID}, Data: data}
	if err := n.Events.Publish(ctx, key, env); err != nil {
		n.Log.Warn("event publish failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (n *Notifier) broadcast(businessID, event string, data map[string]any, excludeUserID string) {
	if n.Realtime == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		return
	}
	n.Realtime.Broadcast(businessID, payload, excludeUserID)
}

// authorUserID returns the author's user id for team messages, empty otherwise.
func authorUserID(m *inbox.Message) string {
	if m.SenderType == inbox.SenderTeam {
		return m.Sender
	}
	return ""
}
