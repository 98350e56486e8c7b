package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ReopenConversationUseCase brings a resolved conversation back. It lands in
// the open state when an assignment survives, otherwise back to new.
type ReopenConversationUseCase struct {
	Repo repository.InboxRepository
}

func NewReopenConversationUseCase(repo repository.InboxRepository) *ReopenConversationUseCase {
	return &ReopenConversationUseCase{Repo: repo}
}

func (uc *ReopenConversationUseCase) Execute(ctx context.Context, businessID, conversationID uuid.UUID) (*inbox.Conversation, error) {
	return uc.Repo.Reopen(ctx, businessID, conversationID)
}
