package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// ListNotificationsUseCase serves a team member's notification feed.
type ListNotificationsUseCase struct {
	Repo repository.InboxRepository
}

func NewListNotificationsUseCase(repo repository.InboxRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{Repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, businessID, userID uuid.UUID, q repository.NotificationQuery) ([]inbox.Notification, error) {
	notifications, err := uc.Repo.ListNotifications(ctx, businessID, userID, q)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return notifications, nil
}
