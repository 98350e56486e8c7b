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

// AssignConversationController hands a conversation to a team member (one controller per endpoint).
type AssignConversationController struct {
	UC *usecase.AssignConversationUseCase
}

func NewAssignConversationController(repo repository.InboxRepository, notifier *usecase.Notifier) *AssignConversationController {
	return &AssignConversationController{UC: usecase.NewAssignConversationUseCase(repo, notifier)}
}

type assignConversationRequest struct {
	UserID string  `json:"userId" binding:"required"`
	Notes  *string `json:"notes"`
}

func (h *AssignConversationController) Handle() gin.HandlerFunc {
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

		var req assignConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be a valid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.AssignConversationInput{
			BusinessID:     id.BusinessID,
			ConversationID: conversationID,
			UserID:         userID,
			AssignedBy:     id.UserID,
			Notes:          req.Notes,
		})
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conversationJSON(conv)})
	}
}
