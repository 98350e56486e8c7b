package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// GetConversationOutput bundles the conversation with its active assignment
// and, when requested, the message thread.
type GetConversationOutput struct {
	Conversation     *inbox.Conversation
	ActiveAssignment *inbox.Assignment
	Messages         []inbox.Message
}

// GetConversationUseCase loads one conversation detail view.
type GetConversationUseCase struct {
	Repo repository.InboxRepository
}

func NewGetConversationUseCase(repo repository.InboxRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Repo: repo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, businessID, id uuid.UUID, includeMessages bool) (*GetConversationOutput, error) {
	conv, err := uc.Repo.GetConversation(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	active, err := uc.Repo.ActiveAssignment(ctx, businessID, id)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	out := &GetConversationOutput{Conversation: conv, ActiveAssignment: active}
	if includeMessages {
		msgs, err := uc.Repo.ListMessages(ctx, businessID, id, repository.MessageQuery{})
		if err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		out.Messages = msgs
	}
	return out, nil
}
