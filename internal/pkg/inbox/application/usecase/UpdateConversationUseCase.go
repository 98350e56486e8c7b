package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// UpdateConversationUseCase applies a partial update to customer details and
// priority. Status changes go through the dedicated transition use cases.
type UpdateConversationUseCase struct {
	Repo repository.InboxRepository
}

func NewUpdateConversationUseCase(repo repository.InboxRepository) *UpdateConversationUseCase {
	return &UpdateConversationUseCase{Repo: repo}
}

func (uc *UpdateConversationUseCase) Execute(ctx context.Context, businessID, id uuid.UUID, patch repository.ConversationPatch) (*inbox.Conversation, error) {
	return uc.Repo.UpdateConversation(ctx, businessID, id, patch)
}
