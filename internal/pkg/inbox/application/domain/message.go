package inbox

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "textback/pkg/errors"
)

// SenderType distinguishes who authored a message.
type SenderType string

const (
	SenderTeam     SenderType = "team"
	SenderCustomer SenderType = "customer"
	SenderSystem   SenderType = "system"
)

func (s SenderType) Valid() bool {
	switch s {
	case SenderTeam, SenderCustomer, SenderSystem:
		return true
	}
	return false
}

// MessageType is the content kind.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageDocument MessageType = "document"
	MessageSystem   MessageType = "system"
)

func (m MessageType) Valid() bool {
	switch m {
	case MessageText, MessageImage, MessageDocument, MessageSystem:
		return true
	}
	return false
}

// CustomerSender is the sender marker for customer-authored messages,
// which have no team user id.
const CustomerSender = "customer"

// Message is an append-only log entry in a conversation.
//
// Messages are totally ordered by (CreatedAt, Seq); Seq is a per-conversation
// monotonic counter assigned by the repository under the conversation lock,
// used as tie-break since timestamp resolution may collide.
type Message struct {
	ID             uuid.UUID               `db:"id"`
	ConversationID uuid.UUID               `db:"conversation_id"`
	Sender         string                  `db:"sender"`
	SenderType     SenderType              `db:"sender_type"`
	MessageType    MessageType             `db:"message_type"`
	Content        string                  `db:"content"`
	Metadata       map[string]any          `db:"metadata"`
	Seq            int64                   `db:"seq"`
	CreatedAt      time.Time               `db:"created_at"`
	ReadBy         map[uuid.UUID]time.Time `db:"-"`
}

// NewMessage validates and normalizes a message ready to persist.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == uuid.Nil {
		return nil, apperrors.InvalidArg("conversationId is required")
	}
	if m.Sender == "" {
		return nil, apperrors.InvalidArg("sender is required")
	}
	if !m.SenderType.Valid() {
		return nil, apperrors.InvalidArg("unknown senderType: " + string(m.SenderType))
	}
	if m.MessageType == "" {
		m.MessageType = MessageText
	}
	if !m.MessageType.Valid() {
		return nil, apperrors.InvalidArg("unknown messageType: " + string(m.MessageType))
	}
	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}

// Mentions extracts explicit mention user ids from message metadata.
// Only structured metadata is consulted; free-text @name parsing is not
// attempted. Malformed entries are dropped.
func (m *Message) Mentions() []uuid.UUID {
	if m.Metadata == nil {
		return nil
	}
	raw, ok := m.Metadata["mentions"]
	if !ok {
		return nil
	}
	var out []uuid.UUID
	appendID := func(v any) {
		s, ok := v.(string)
		if !ok {
			return
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return
		}
		out = append(out, id)
	}
	switch vs := raw.(type) {
	case []any:
		for _, v := range vs {
			appendID(v)
		}
	case []string:
		for _, v := range vs {
			appendID(v)
		}
	}
	return out
}
