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

// ReopenConversationController brings a resolved conversation back (one controller per endpoint).
type ReopenConversationController struct {
	UC *usecase.ReopenConversationUseCase
}

func NewReopenConversationController(repo repository.InboxRepository) *ReopenConversationController {
	return &ReopenConversationController{UC: usecase.NewReopenConversationUseCase(repo)}
}

func (h *ReopenConversationController) Handle() gin.HandlerFunc {
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

		conv, err := h.UC.Execute(ctx, id.BusinessID, conversationID)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conversationJSON(conv)})
	}
}
