package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ResolveConversationController closes out a conversation (one controller per endpoint).
type ResolveConversationController struct {
	UC *usecase.ResolveConversationUseCase
}

func NewResolveConversationController(repo repository.InboxRepository, notifier *usecase.Notifier) *ResolveConversationController {
	return &ResolveConversationController{UC: usecase.NewResolveConversationUseCase(repo, notifier)}
}

func (h *ResolveConversationController) Handle() gin.HandlerFunc {
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

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, id.BusinessID, conversationID, id.UserID)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conversationJSON(conv)})
	}
}
