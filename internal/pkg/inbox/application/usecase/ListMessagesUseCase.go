package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// ListMessagesUseCase pages through a thread and marks it read for the
// caller. Read-marking failures are swallowed: the caller still saw the
// messages.
type ListMessagesUseCase struct {
	Repo repository.InboxRepository
}

func NewListMessagesUseCase(repo repository.InboxRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{Repo: repo}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, businessID, conversationID, readerID uuid.UUID, q repository.MessageQuery) ([]inbox.Message, error) {
	if q.SortDirection != "" && q.SortDirection != repository.SortAsc && q.SortDirection != repository.SortDesc {
		return nil, apperrors.InvalidArg("sortDirection must be asc or desc")
	}
	msgs, err := uc.Repo.ListMessages(ctx, businessID, conversationID, q)
	if err != nil {
		return nil, err
	}
	if readerID != uuid.Nil {
		_, _ = uc.Repo.MarkMessagesRead(ctx, businessID, conversationID, readerID, time.Now().UTC())
	}
	return msgs, nil
}
