package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	"textback/internal/pkg/sms/dispatcher"
)

// MissedCallWebhookController receives unanswered-call events from the
// telephony provider and triggers the auto-reply (one controller per endpoint).
type MissedCallWebhookController struct {
	UC     *usecase.HandleMissedCallUseCase
	Secret string
}

func NewMissedCallWebhookController(repo repository.InboxRepository, d *dispatcher.Dispatcher, notifier *usecase.Notifier, logger *slog.Logger, secret string) *MissedCallWebhookController {
	return &MissedCallWebhookController{
		UC:     usecase.NewHandleMissedCallUseCase(repo, d, notifier, logger),
		Secret: secret,
	}
}

type missedCallWebhookRequest struct {
	From       string `json:"from" form:"From"`
	CallerName string `json:"callerName" form:"CallerName"`
}

func (h *MissedCallWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checkWebhookSecret(c, h.Secret) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
		businessID, err := uuid.Parse(c.Param("businessId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "businessId must be a valid id"})
			return
		}

		var req missedCallWebhookRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Auto-reply has its own gateway timeout on top of the DB work.
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.HandleMissedCallInput{
			BusinessID:  businessID,
			CallerPhone: req.From,
			CallerName:  req.CallerName,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		resp := gin.H{"conversation": conversationJSON(out.Conversation)}
		if out.AutoReply != nil {
			resp["autoReply"] = out.AutoReply
		}
		c.JSON(http.StatusOK, resp)
	}
}
