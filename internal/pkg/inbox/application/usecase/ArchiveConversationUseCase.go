package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ArchiveConversationUseCase soft-ends a conversation. Messages and
// assignments are kept; no further transitions are allowed.
type ArchiveConversationUseCase struct {
	Repo repository.InboxRepository
}

func NewArchiveConversationUseCase(repo repository.InboxRepository) *ArchiveConversationUseCase {
	return &ArchiveConversationUseCase{Repo: repo}
}

func (uc *ArchiveConversationUseCase) Execute(ctx context.Context, businessID, conversationID, archivedBy uuid.UUID) (*inbox.Conversation, error) {
	return uc.Repo.Archive(ctx, businessID, conversationID, archivedBy)
}
