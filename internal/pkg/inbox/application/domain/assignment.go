package inbox

import (
	"time"

	"github.com/google/uuid"
)

// Assignment ties a conversation to a responsible team member.
//
// At most one assignment per conversation may have CompletedAt == nil
// (the "active assignment"). The repository enforces this atomically;
// in Postgres it is backed by a partial unique index on
// (conversation_id) WHERE completed_at IS NULL.
type Assignment struct {
	ID             uuid.UUID  `db:"id"`
	ConversationID uuid.UUID  `db:"conversation_id"`
	UserID         uuid.UUID  `db:"user_id"`
	AssignedBy     uuid.UUID  `db:"assigned_by"`
	AssignedAt     time.Time  `db:"assigned_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	CompletedBy    *uuid.UUID `db:"completed_by"`
	Notes          *string    `db:"notes"`
}

// Active reports whether this assignment is still the live one.
func (a *Assignment) Active() bool { return a != nil && a.CompletedAt == nil }
