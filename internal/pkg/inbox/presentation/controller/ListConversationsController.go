package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ListConversationsController serves the inbox list view (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(repo repository.InboxRepository) *ListConversationsController {
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c)
		if err != nil {
			replyError(c, err)
			return
		}

		filter := repository.ConversationFilter{
			Status:        inbox.Status(c.Query("status")),
			Priority:      inbox.Priority(c.Query("priority")),
			Search:        c.Query("search"),
			CustomerPhone: c.Query("customerPhone"),
			Limit:         50,
		}
		if v := c.Query("assignedTo"); v != "" {
			uid, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "assignedTo must be a valid user id"})
				return
			}
			filter.AssignedTo = &uid
		}
		if v := c.Query("includeArchived"); v == "true" || v == "1" {
			filter.IncludeArchived = true
		}
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				filter.Offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, id.BusinessID, filter)
		if err != nil {
			replyError(c, err)
			return
		}

		conversations := make([]gin.H, 0, len(out.Conversations))
		for i := range out.Conversations {
			conversations = append(conversations, conversationJSON(&out.Conversations[i]))
		}
		c.JSON(http.StatusOK, gin.H{
			"conversations": conversations,
			"stats": gin.H{
				"total":      out.Stats.Total,
				"new":        out.Stats.New,
				"open":       out.Stats.Open,
				"resolved":   out.Stats.Resolved,
				"archived":   out.Stats.Archived,
				"unassigned": out.Stats.Unassigned,
			},
		})
	}
}
