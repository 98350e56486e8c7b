package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	inbox "textback/internal/pkg/inbox/application/domain"
	"textback/internal/pkg/inbox/application/usecase"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

// CreateConversationController opens conversations from the UI (one controller per endpoint).
type CreateConversationController struct {
	UC *usecase.CreateConversationUseCase
}

func NewCreateConversationController(repo repository.InboxRepository, notifier *usecase.Notifier) *CreateConversationController {
	return &CreateConversationController{UC: usecase.NewCreateConversationUseCase(repo, notifier)}
}

type createConversationRequest struct {
	CustomerName   string  `json:"customerName"`
	CustomerPhone  string  `json:"customerPhone"`
	CustomerID     *string `json:"customerId"`
	Source         string  `json:"source"`
	InitialMessage string  `json:"initialMessage"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFrom(c)
		if err != nil {
			replyError(c, err)
			return
		}

		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateConversationInput{
			BusinessID:     id.BusinessID,
			CustomerName:   req.CustomerName,
			CustomerPhone:  req.CustomerPhone,
			CustomerID:     req.CustomerID,
			Source:         inbox.Source(req.Source),
			Status:         inbox.Status(req.Status),
			Priority:       inbox.Priority(req.Priority),
			InitialMessage: req.InitialMessage,
		})
		if err != nil {
			replyError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"conversation": conversationJSON(conv)})
	}
}
