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

// MarkNotificationsReadController marks notifications read (one controller per endpoint).
type MarkNotificationsReadController struct {
	UC *usecase.MarkNotificationsReadUseCase
}

func NewMarkNotificationsReadController(repo repository.InboxRepository) *MarkNotificationsReadController {
	return &MarkNotificationsReadController{UC: usecase.NewMarkNotificationsReadUseCase(repo)}
}

type markNotificationsReadRequest struct {
	IDs []string `json:"ids"` // empty means all unread
}

func (h *MarkNotificationsReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c)
		if err != nil {
			replyError(c, err)
			return
		}

		var req markNotificationsReadRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ids := make([]uuid.UUID, 0, len(req.IDs))
		for _, raw := range req.IDs {
			nid, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be valid notification ids"})
				return
			}
			ids = append(ids, nid)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		count, err := h.UC.Execute(ctx, id.BusinessID, id.UserID, ids)
		if err != nil {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": count})
	}
}
