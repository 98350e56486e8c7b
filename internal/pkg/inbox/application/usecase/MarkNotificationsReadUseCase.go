package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// MarkNotificationsReadUseCase marks a member's notifications read. An empty
// id list means "all unread". Idempotent; returns the number updated.
type MarkNotificationsReadUseCase struct {
	Repo repository.InboxRepository
}

func NewMarkNotificationsReadUseCase(repo repository.InboxRepository) *MarkNotificationsReadUseCase {
	return &MarkNotificationsReadUseCase{Repo: repo}
}

func (uc *MarkNotificationsReadUseCase) Execute(ctx context.Context, businessID, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	count, err := uc.Repo.MarkNotificationsRead(ctx, businessID, userID, ids, time.Now().UTC())
	if err != nil {
		return 0, apperrors.ErrPersistenceFailed(err)
	}
	return count, nil
}
