package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	"textback/internal/pkg/sms/dispatcher"
	apperrors "textback/pkg/errors"
)

// HandleMissedCallInput is the telephony webhook for an unanswered call.
type HandleMissedCallInput struct {
	BusinessID  uuid.UUID
	CallerPhone string
	CallerName  string
}

// HandleMissedCallOutput reports the conversation and whether the auto-reply
// went out.
type HandleMissedCallOutput struct {
	Conversation *inbox.Conversation
	AutoReply    *dispatcher.SendResult
}

// HandleMissedCallUseCase logs a missed call into the inbox and texts the
// caller the business's tier-specific auto-reply. The reply goes through the
// rate-limited dispatcher so back-to-back calls from one number do not spam.
type HandleMissedCallUseCase struct {
	Repo       repository.InboxRepository
	Dispatcher *dispatcher.Dispatcher
	Notifier   *Notifier
	Log        *slog.Logger
}

func NewHandleMissedCallUseCase(repo repository.InboxRepository, d *dispatcher.Dispatcher, notifier *Notifier, logger *slog.Logger) *HandleMissedCallUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandleMissedCallUseCase{Repo: repo, Dispatcher: d, Notifier: notifier, Log: logger}
}

func (uc *HandleMissedCallUseCase) Execute(ctx context.Context, in HandleMissedCallInput) (*HandleMissedCallOutput, error) {
	if in.CallerPhone == "" {
		return nil, apperrors.ErrMissingPhone
	}

	business, err := uc.Repo.GetBusiness(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.FindOpenConversationByPhone(ctx, in.BusinessID, in.CallerPhone)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if conv == nil {
		fresh, err := inbox.NewConversation(inbox.Conversation{
			BusinessID:    in.BusinessID,
			CustomerPhone: in.CallerPhone,
			CustomerName:  in.CallerName,
			Source:        inbox.SourceMissedCall,
			Priority:      inbox.PriorityHigh,
		})
		if err != nil {
			return nil, err
		}
		conv, err = uc.Repo.CreateConversation(ctx, *fresh)
		if err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
	}

	msg, err := inbox.NewMessage(inbox.Message{
		ConversationID: conv.ID,
		Sender:         "system",
		SenderType:     inbox.SenderSystem,
		MessageType:    inbox.MessageSystem,
		Content:        "Missed call from " + in.CallerPhone,
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

	out := &HandleMissedCallOutput{Conversation: conv}
	if uc.Dispatcher == nil || business.Phone == "" {
		return out, nil
	}

	reply := business.MissedCallReply()
	result, err := uc.Dispatcher.Send(ctx, business.Phone, in.CallerPhone, reply, dispatcher.SendOptions{})
	if err != nil {
		// The caller is logged in the inbox either way; an auto-reply
		// failure is not a webhook failure.
		uc.Log.Warn("auto-reply send failed",
			slog.String("to", in.CallerPhone),
			slog.Any("error", err))
		return out, nil
	}
	out.AutoReply = result

	if result.Status == dispatcher.StatusSent {
		replyMsg, err := inbox.NewMessage(inbox.Message{
			ConversationID: conv.ID,
			Sender:         "system",
			SenderType:     inbox.SenderSystem,
			MessageType:    inbox.MessageText,
			Content:        reply,
			Metadata:       map[string]any{"autoReply": true, "providerId": result.ProviderID},
		})
		if err == nil {
			if _, err := uc.Repo.AppendMessage(ctx, in.BusinessID, *replyMsg); err != nil {
				uc.Log.Warn("auto-reply message append failed", slog.Any("error", err))
			}
		}
	}
	return out, nil
}
