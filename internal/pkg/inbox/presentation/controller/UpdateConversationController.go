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

// UpdateConversationController applies partial edits (one controller per endpoint).
type UpdateConversationController struct {
	UC *usecase.UpdateConversationUseCase
}

func NewUpdateConversationController(repo repository.InboxRepository) *UpdateConversationController {
	return &UpdateConversationController{UC: usecase.NewUpdateConversationUseCase(repo)}
}

type updateConversationRequest struct {
	CustomerName *string `json:"customerName"`
	CustomerID   *string `json:"customerId"`
	Priority     *string `json:"priority"`
}

func (h *UpdateConversationController) Handle() gin.HandlerFunc {
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

		var req updateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		patch := repository.ConversationPatch{
			CustomerName: req.CustomerName,
			CustomerID:   req.CustomerID,
		}
		if req.Priority != nil {
			p := inbox.Priority(*req.Priority)
			patch.Priority = &p
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, id.BusinessID, conversationID, patch)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conversationJSON(conv)})
	}
}
