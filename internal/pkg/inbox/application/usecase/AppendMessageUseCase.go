package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// AppendMessageInput carries a new message for a conversation. Sender is a
// team member's user id, the customer marker, or a system marker.
type AppendMessageInput struct {
	BusinessID     uuid.UUID
	ConversationID uuid.UUID
	Sender         string
	SenderType     inbox.SenderType
	MessageType    inbox.MessageType
	Content        string
	Metadata       map[string]any
}

// AppendMessageUseCase appends to the thread and triggers the notification
// fan-out. The repository assigns the per-conversation sequence number.
type AppendMessageUseCase struct {
	Repo     repository.InboxRepository
	Notifier *Notifier
}

func NewAppendMessageUseCase(repo repository.InboxRepository, notifier *Notifier) *AppendMessageUseCase {
	return &AppendMessageUseCase{Repo: repo, Notifier: notifier}
}

func (uc *AppendMessageUseCase) Execute(ctx context.Context, in AppendMessageInput) (*inbox.Message, error) {
	msg, err := inbox.NewMessage(inbox.Message{
		ConversationID: in.ConversationID,
		Sender:         in.Sender,
		SenderType:     in.SenderType,
		MessageType:    in.MessageType,
		Content:        in.Content,
		Metadata:       in.Metadata,
	})
	if err != nil {
		return nil, err
	}

	appended, err := uc.Repo.AppendMessage(ctx, in.BusinessID, *msg)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.GetConversation(ctx, in.BusinessID, in.ConversationID)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	uc.Notifier.MessageAppended(ctx, conv, appended)
	return appended, nil
}
