package inbox

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotificationMention    NotificationType = "mention"
	NotificationNewMessage NotificationType = "new_message"
	NotificationAssignment NotificationType = "assignment"
)

func (n NotificationType) Valid() bool {
	switch n {
	case NotificationMention, NotificationNewMessage, NotificationAssignment:
		return true
	}
	return false
}

// Notification is written by the fan-out worker and never mutated by the
// engine except read-marking. Delivery is at-least-once; the store
// deduplicates on (user_id, conversation_id, message_id, type).
type Notification struct {
	ID             uuid.UUID        `db:"id"`
	UserID         uuid.UUID        `db:"user_id"`
	BusinessID     uuid.UUID        `db:"business_id"`
	ConversationID uuid.UUID        `db:"conversation_id"`
	MessageID      *uuid.UUID       `db:"message_id"`
	Type           NotificationType `db:"type"`
	Payload        map[string]any   `db:"payload"`
	CreatedAt      time.Time        `db:"created_at"`
	ReadAt         *time.Time       `db:"read_at"`
}
