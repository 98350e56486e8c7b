package inbox

import (
	"time"

	"github.com/google/uuid"

	apperrors "textback/pkg/errors"
)

// Status is the conversation lifecycle state.
type Status string

const (
	StatusNew      Status = "new"
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusOpen, StatusResolved, StatusArchived:
		return true
	}
	return false
}

// Priority orders conversations in the inbox view.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Source records which channel opened the conversation.
type Source string

const (
	SourceSMS        Source = "sms"
	SourceMissedCall Source = "missed_call"
	SourceWeb        Source = "web"
)

func (s Source) Valid() bool {
	switch s {
	case SourceSMS, SourceMissedCall, SourceWeb:
		return true
	}
	return false
}

// Conversation is the unit of a customer-business interaction thread.
//
// Invariant: AssignedTo is non-nil iff exactly one Assignment for this
// conversation has CompletedAt == nil. The repository serializes the
// complete-prior/insert-new sequence; this type only validates and shapes
// the transition.
type Conversation struct {
	ID            uuid.UUID  `db:"id"`
	BusinessID    uuid.UUID  `db:"business_id"`
	CustomerPhone string     `db:"customer_phone"`
	CustomerName  string     `db:"customer_name"`
	CustomerID    *string    `db:"customer_id"`
	Source        Source     `db:"source"`
	Status        Status     `db:"status"`
	Priority      Priority   `db:"priority"`
	AssignedTo    *uuid.UUID `db:"assigned_to"`
	AssignedAt    *time.Time `db:"assigned_at"`
	LastMessageAt time.Time  `db:"last_message_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	ResolvedAt    *time.Time `db:"resolved_at"`
	ArchivedAt    *time.Time `db:"archived_at"`
}

// NewConversation validates required fields and returns a conversation in
// the initial state.
func NewConversation(c Conversation) (*Conversation, error) {
	if c.BusinessID == uuid.Nil {
		return nil, apperrors.InvalidArg("businessId is required")
	}
	if c.CustomerPhone == "" {
		return nil, apperrors.ErrMissingPhone
	}
	if c.Source == "" {
		return nil, apperrors.ErrMissingSource
	}
	if !c.Source.Valid() {
		return nil, apperrors.InvalidArg("unknown source: " + string(c.Source))
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
	if !c.Status.Valid() {
		return nil, apperrors.InvalidArg("unknown status: " + string(c.Status))
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if !c.Priority.Valid() {
		return nil, apperrors.InvalidArg("unknown priority: " + string(c.Priority))
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.LastMessageAt.IsZero() {
		c.LastMessageAt = c.CreatedAt
	}
	return &c, nil
}

// Assign validates and applies the assign transition in memory.
// Legal from new, open and resolved; archived is terminal. The caller is
// responsible for completing the prior active assignment atomically.
func (c *Conversation) Assign(userID uuid.UUID, now time.Time) error {
	if c.Status == StatusArchived {
		return apperrors.InvalidTransition(string(c.Status), string(StatusOpen))
	}
	c.Status = StatusOpen
	c.AssignedTo = &userID
	at := now
	c.AssignedAt = &at
	c.ResolvedAt = nil
	c.UpdatedAt = now
	return nil
}

// Resolve moves the conversation to resolved. Legal from open, and from new
// when nothing was ever assigned (direct resolution).
func (c *Conversation) Resolve(now time.Time) error {
	switch c.Status {
	case StatusOpen:
	case StatusNew:
		if c.AssignedTo != nil {
			return apperrors.InvalidTransition(string(c.Status), string(StatusResolved))
		}
	default:
		return apperrors.InvalidTransition(string(c.Status), string(StatusResolved))
	}
	c.Status = StatusResolved
	at := now
	c.ResolvedAt = &at
	c.UpdatedAt = now
	return nil
}

// Reopen is legal only from resolved. The conversation returns to open when
// it still has an assignee on record, otherwise to new. Resolving completes
// the assignment row but keeps the assignee, so resolve-then-reopen lands
// back in open.
func (c *Conversation) Reopen(assigned bool, now time.Time) error {
	if c.Status != StatusResolved {
		return apperrors.InvalidTransition(string(c.Status), string(StatusOpen))
	}
	c.ResolvedAt = nil
	if assigned {
		c.Status = StatusOpen
	} else {
		c.Status = StatusNew
	}
	c.UpdatedAt = now
	return nil
}

// Archive is legal from any non-archived state. Messages and assignments
// are retained; this is a soft lifecycle end.
func (c *Conversation) Archive(now time.Time) error {
	if c.Status == StatusArchived {
		return apperrors.InvalidTransition(string(c.Status), string(StatusArchived))
	}
	c.Status = StatusArchived
	at := now
	c.ArchivedAt = &at
	c.UpdatedAt = now
	return nil
}

// ConversationStats summarizes an inbox for the list view.
type ConversationStats struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Open       int `json:"open"`
	Resolved   int `json:"resolved"`
	Archived   int `json:"archived"`
	Unassigned int `json:"unassigned"`
}
