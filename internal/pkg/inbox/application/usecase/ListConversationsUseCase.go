package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// ListConversationsOutput pairs the page with inbox-wide counters.
type ListConversationsOutput struct {
	Conversations []inbox.Conversation
	Stats         inbox.ConversationStats
}

// ListConversationsUseCase serves the filtered inbox view.
type ListConversationsUseCase struct {
	Repo repository.InboxRepository
}

func NewListConversationsUseCase(repo repository.InboxRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, businessID uuid.UUID, filter repository.ConversationFilter) (*ListConversationsOutput, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.InvalidArg("unknown status: " + string(filter.Status))
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, apperrors.InvalidArg("unknown priority: " + string(filter.Priority))
	}
	conversations, stats, err := uc.Repo.ListConversations(ctx, businessID, filter)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return &ListConversationsOutput{Conversations: conversations, Stats: stats}, nil
}
