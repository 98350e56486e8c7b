package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// ListNotificationsController serves the caller's notification feed
// (one controller per endpoint).
type ListNotificationsController struct {
	UC *usecase.ListNotificationsUseCase
}

func NewListNotificationsController(repo repository.InboxRepository) *ListNotificationsController {
	return &ListNotificationsController{UC: usecase.NewListNotificationsUseCase(repo)}
}

func (h *ListNotificationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c)
		if err != nil {
			replyError(c, err)
			return
		}

		q := repository.NotificationQuery{Limit: 50}
		if v := c.Query("unreadOnly"); v == "true" || v == "1" {
			q.UnreadOnly = true
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

		notifications, err := h.UC.Execute(ctx, id.BusinessID, id.UserID, q)
		if err != nil {
			replyError(c, err)
			return
		}

		out := make([]gin.H, 0, len(notifications))
		for i := range notifications {
			out = append(out, notificationJSON(&notifications[i]))
		}
		c.JSON(http.StatusOK, gin.H{"notifications": out, "count": len(out)})
	}
}
