package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ResolveConversationUseCase closes out a conversation and completes its
// active assignment in one transition.
type ResolveConversationUseCase struct {
	Repo     repository.InboxRepository
	Notifier *Notifier
}

func NewResolveConversationUseCase(repo repository.InboxRepository, notifier *Notifier) *ResolveConversationUseCase {
	return &ResolveConversationUseCase{Repo: repo, Notifier: notifier}
}

func (uc *ResolveConversationUseCase) Execute(ctx context.Context, businessID, conversationID, resolvedBy uuid.UUID) (*inbox.Conversation, error) {
	conv, err := uc.Repo.Resolve(ctx, businessID, conversationID, resolvedBy)
	if err != nil {
		return nil, err
	}
	uc.Notifier.ConversationResolved(ctx, conv)
	return conv, nil
}
