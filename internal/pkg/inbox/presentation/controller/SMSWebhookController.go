package controller

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// SMSWebhookController receives inbound texts from the carrier (one controller per endpoint).
// Webhooks authenticate with a shared secret rather than a session.
type SMSWebhookController struct {
	UC     *usecase.HandleInboundSMSUseCase
	Secret string
}

func NewSMSWebhookController(repo repository.InboxRepository, notifier *usecase.Notifier, secret string) *SMSWebhookController {
	return &SMSWebhookController{UC: usecase.NewHandleInboundSMSUseCase(repo, notifier), Secret: secret}
}

type smsWebhookRequest struct {
	From         string `json:"from" form:"From"`
	Body         string `json:"body" form:"Body"`
	CustomerName string `json:"customerName" form:"CustomerName"`
}

// checkWebhookSecret compares the header against the configured secret in
// constant time. An empty configured secret rejects everything.
func checkWebhookSecret(c *gin.Context, secret string) bool {
	if secret == "" {
		return false
	}
	given := c.GetHeader("X-Webhook-Secret")
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}

func (h *SMSWebhookController) Handle() gin.HandlerFunc {
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

		var req smsWebhookRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.HandleInboundSMSInput{
			BusinessID:   businessID,
			From:         req.From,
			Body:         req.Body,
			CustomerName: req.CustomerName,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		status := http.StatusOK
		if out.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"conversation": conversationJSON(out.Conversation),
			"message":      messageJSON(out.Message),
		})
	}
}
