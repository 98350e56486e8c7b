package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// CreateConversationInput carries the data needed to open a conversation.
// Validation and defaulting live in the domain constructor.
type CreateConversationInput struct {
	BusinessID     uuid.UUID
	CustomerName   string
	CustomerPhone  string
	CustomerID     *string
	Source         inbox.Source
	Status         inbox.Status
	Priority       inbox.Priority
	InitialMessage string
}

// CreateConversationUseCase opens a conversation, optionally seeding it with
// the customer's first message.
type CreateConversationUseCase struct {
	Repo     repository.InboxRepository
	Notifier *Notifier
}

func NewCreateConversationUseCase(repo repository.InboxRepository, notifier *Notifier) *CreateConversationUseCase {
	return &CreateConversationUseCase{Repo: repo, Notifier: notifier}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*inbox.Conversation, error) {
	conv, err := inbox.NewConversation(inbox.Conversation{
		BusinessID:    in.BusinessID,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerID:    in.CustomerID,
		Source:        in.Source,
		Status:        in.Status,
		Priority:      in.Priority,
	})
	if err != nil {
		return nil, err
	}

	created, err := uc.Repo.CreateConversation(ctx, *conv)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}

	if in.InitialMessage != "" {
		msg, err := inbox.NewMessage(inbox.Message{
			ConversationID: created.ID,
			Sender:         inbox.CustomerSender,
			SenderType:     inbox.SenderCustomer,
			MessageType:    inbox.MessageText,
			Content:        in.InitialMessage,
		})
		if err != nil {
			return nil, err
		}
		appended, err := uc.Repo.AppendMessage(ctx, in.BusinessID, *msg)
		if err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		created.LastMessageAt = appended.CreatedAt
		uc.Notifier.MessageAppended(ctx, created, appended)
	}

	return created, nil
}
