package usecase

import (
	"context"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// HandleInboundSMSInput is a carrier webhook for a customer text.
type HandleInboundSMSInput struct {
	BusinessID   uuid.UUID
	From         string
	Body         string
	CustomerName string
}

// HandleInboundSMSOutput reports where the text landed.
type HandleInboundSMSOutput struct {
	Conversation *inbox.Conversation
	Message      *inbox.Message
	Created      bool
}

// HandleInboundSMSUseCase threads an inbound text: reuse the customer's open
// conversation when one exists, otherwise open a fresh one.
type HandleInboundSMSUseCase struct {
	Repo     repository.InboxRepository
	Notifier *Notifier
}

func NewHandleInboundSMSUseCase(repo repository.InboxRepository, notifier *Notifier) *HandleInboundSMSUseCase {
	return &HandleInboundSMSUseCase{Repo: repo, Notifier: notifier}
}

func (uc *HandleInboundSMSUseCase) Execute(ctx context.Context, in HandleInboundSMSInput) (*HandleInboundSMSOutput, error) {
	if in.From == "" {
		return nil, apperrors.ErrMissingPhone
	}
	if in.Body == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	conv, err := uc.Repo.FindOpenConversationByPhone(ctx, in.BusinessID, in.From)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	created := false
	if conv == nil {
		fresh, err := inbox.NewConversation(inbox.Conversation{
			BusinessID:    in.BusinessID,
			CustomerPhone: in.From,
			CustomerName:  in.CustomerName,
			Source:        inbox.SourceSMS,
		})
		if err != nil {
			return nil, err
		}
		conv, err = uc.Repo.CreateConversation(ctx, *fresh)
		if err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		created = true
	}

	msg, err := inbox.NewMessage(inbox.Message{
		ConversationID: conv.ID,
		Sender:         inbox.CustomerSender,
		SenderType:     inbox.SenderCustomer,
		MessageType:    inbox.MessageText,
		Content:        in.Body,
	})
	if err != nil {
		return nil, err
	}
	appended, err := uc.Repo.AppendMessage(ctx, in.BusinessID, *msg)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	conv.LastMessageAt = appended.CreatedAt

	uc.Notifier.MessageAppended(ctx, conv, appended)
	return &HandleInboundSMSOutput{Conversation: conv, Message: appended, Created: created}, nil
}
