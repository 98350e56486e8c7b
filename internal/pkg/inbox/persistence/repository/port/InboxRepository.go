package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
)

// SortDirection orders message listings.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ConversationFilter narrows the inbox list view. Zero values mean "any".
type ConversationFilter struct {
	Status          inbox.Status
	AssignedTo      *uuid.UUID
	Priority        inbox.Priority
	Search          string // matches customer name or phone
	CustomerPhone   string
	IncludeArchived bool
	Limit           int
	Offset          int
}

// MessageQuery controls thread pagination. Default ascending by
// (created_at, seq); offset-based, acceptable for the bounded conversation
// sizes in scope.
type MessageQuery struct {
	SortDirection SortDirection
	Limit         int
	Offset        int
}

// NotificationQuery controls the per-user notification listing.
type NotificationQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// InboxRepository defines persistence operations for the inbox engine.
// Every operation is scoped by business id; implementations must treat a
// tenant mismatch as ErrTenantMismatch, not as an empty result.
type InboxRepository interface {
	GetBusiness(ctx context.Context, id uuid.UUID) (*inbox.Business, error)

	CreateConversation(ctx context.Context, c inbox.Conversation) (*inbox.Conversation, error)
	GetConversation(ctx context.Context, businessID, id uuid.UUID) (*inbox.Conversation, error)
	// FindOpenConversationByPhone returns the most recent non-archived
	// conversation with the customer, or nil when none exists.
	FindOpenConversationByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*inbox.Conversation, error)
	ListConversations(ctx context.Context, businessID uuid.UUID, f ConversationFilter) ([]inbox.Conversation, inbox.ConversationStats, error)
	UpdateConversation(ctx context.Context, businessID, id uuid.UUID, patch ConversationPatch) (*inbox.Conversation, error)

	// Assign atomically completes any active assignment, inserts the new one
	// and transitions the conversation to open. Implementations must
	// serialize concurrent calls per conversation (row lock or equivalent)
	// so that at most one active assignment ever exists.
	Assign(ctx context.Context, businessID, conversationID, userID, assignedBy uuid.UUID, notes *string) (*inbox.Conversation, *inbox.Assignment, error)
	Resolve(ctx context.Context, businessID, conversationID, resolvedBy uuid.UUID) (*inbox.Conversation, error)
	Reopen(ctx context.Context, businessID, conversationID uuid.UUID) (*inbox.Conversation, error)
	Archive(ctx context.Context, businessID, conversationID, archivedBy uuid.UUID) (*inbox.Conversation, error)

	ActiveAssignment(ctx context.Context, businessID, conversationID uuid.UUID) (*inbox.Assignment, error)
	CompleteAssignment(ctx context.Context, businessID, assignmentID, completedBy uuid.UUID) error
	AnnotateAssignment(ctx context.Context, businessID, assignmentID uuid.UUID, notes string) error

	// AppendMessage assigns the next per-conversation sequence number and
	// advances the conversation's last_message_at in the same transaction.
	AppendMessage(ctx context.Context, businessID uuid.UUID, m inbox.Message) (*inbox.Message, error)
	ListMessages(ctx context.Context, businessID, conversationID uuid.UUID, q MessageQuery) ([]inbox.Message, error)
	// MarkMessagesRead records a read timestamp for every message the user
	// has not yet read and returns the count updated. Idempotent.
	MarkMessagesRead(ctx context.Context, businessID, conversationID, userID uuid.UUID, at time.Time) (int, error)

	// CreateNotification is deduplicated on
	// (user_id, conversation_id, message_id, type); duplicates are dropped
	// silently.
	CreateNotification(ctx context.Context, n inbox.Notification) error
	ListNotifications(ctx context.Context, businessID, userID uuid.UUID, q NotificationQuery) ([]inbox.Notification, error)
	MarkNotificationsRead(ctx context.Context, businessID, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int, error)
}

// ConversationPatch carries the partial-update surface of a conversation.
// Nil fields are left untouched.
type ConversationPatch struct {
	CustomerName *string
	CustomerID   *string
	Priority     *inbox.Priority
}
