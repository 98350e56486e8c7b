package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// AssignConversationInput identifies the conversation and the new assignee.
type AssignConversationInput struct {
	BusinessID     uuid.UUID
	ConversationID uuid.UUID
	UserID         uuid.UUID
	AssignedBy     uuid.UUID
	Notes          *string
}

// AssignConversationUseCase hands a conversation to a team member. The
// repository performs the complete-prior-insert-new sequence atomically so
// at most one assignment stays active.
type AssignConversationUseCase struct {
	Repo     repository.InboxRepository
	Notifier *Notifier
}

func NewAssignConversationUseCase(repo repository.InboxRepository, notifier *Notifier) *AssignConversationUseCase {
	return &AssignConversationUseCase{Repo: repo, Notifier: notifier}
}

func (uc *AssignConversationUseCase) Execute(ctx context.Context, in AssignConversationInput) (*inbox.Conversation, error) {
	if in.UserID == uuid.Nil {
		return nil, apperrors.InvalidArg("userId is required")
	}
	conv, assignment, err := uc.Repo.Assign(ctx, in.BusinessID, in.ConversationID, in.UserID, in.AssignedBy, in.Notes)
	if err != nil {
		return nil, err
	}
	uc.Notifier.ConversationAssigned(ctx, conv, assignment)
	return conv, nil
}
