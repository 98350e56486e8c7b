package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// AppendMessageController posts a team reply into a thread (one controller per endpoint).
type AppendMessageController struct {
	UC *usecase.AppendMessageUseCase
}

func NewAppendMessageController(repo repository.InboxRepository, notifier *usecase.Notifier) *AppendMessageController {
	return &AppendMessageController{UC: usecase.NewAppendMessageUseCase(repo, notifier)}
}

type appendMessageRequest struct {
	Content     string         `json:"content" binding:"required"`
	MessageType string         `json:"messageType"`
	Metadata    map[string]any `json:"metadata"`
}

func (h *AppendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c)
		if err != nil {
			replyError(c, err)
			return
		}
		conversationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid conversation id"})
			return
		}

		var req appendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.AppendMessageInput{
			BusinessID:     id.BusinessID,
			ConversationID: conversationID,
			Sender:         id.UserID.String(),
			SenderType:     inbox.SenderTeam,
			MessageType:    inbox.MessageType(req.MessageType),
			Content:        req.Content,
			Metadata:       req.Metadata,
		})
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": messageJSON(msg)})
	}
}
