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

// GetConversationController serves the conversation detail view (one controller per endpoint).
type GetConversationController struct {
	UC *usecase.GetConversationUseCase
}

func NewGetConversationController(repo repository.InboxRepository) *GetConversationController {
	return &GetConversationController{UC: usecase.NewGetConversationUseCase(repo)}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
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
		includeMessages := c.Query("includeMessages") == "true" || c.Query("includeMessages") == "1"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, id.BusinessID, conversationID, includeMessages)
		if err != nil {
			replyError(c, err)
			return
		}

		conversation := conversationJSON(out.Conversation)
		conversation["activeAssignment"] = assignmentJSON(out.ActiveAssignment)
		if includeMessages {
			conversation["messages"] = messagesJSON(out.Messages)
		}
		c.JSON(http.StatusOK, gin.H{"conversation": conversation})
	}
}
