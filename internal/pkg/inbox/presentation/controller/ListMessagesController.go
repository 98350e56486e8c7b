package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ListMessagesController pages a thread and marks it read for the caller
// (one controller per endpoint).
type ListMessagesController struct {
	UC *usecase.ListMessagesUseCase
}

func NewListMessagesController(repo repository.InboxRepository) *ListMessagesController {
	return &ListMessagesController{UC: usecase.NewListMessagesUseCase(repo)}
}

func (h *ListMessagesController) Handle() gin.HandlerFunc {
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

		q := repository.MessageQuery{
			SortDirection: repository.SortDirection(c.Query("sortDirection")),
			Limit:         50,
		}
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				q.Limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				q.Offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, id.BusinessID, conversationID, id.UserID, q)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"messages": messagesJSON(msgs),
			"count":    len(msgs),
		})
	}
}
