package controller

import (
	"github.com/gin-gonic/gin"

	"textback/internal/infrastructure/session"
	inbox "textback/internal/pkg/inbox/application/domain"
	apperrors "textback/pkg/errors"
)

// IdentityKey is where the auth middleware stores the resolved session.
const IdentityKey = "textback.identity"

// identityFrom pulls the caller's identity set by the auth middleware.
func identityFrom(c *gin.Context) (*session.Identity, error) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	id, ok := v.(*session.Identity)
	if !ok || id == nil {
		return nil, apperrors.ErrNoSession
	}
	return id, nil
}

// Serialization keeps field names explicit; these are the compatibility
// contract for existing UI clients.

func conversationJSON(cv *inbox.Conversation) gin.H {
	return gin.H{
		"id":            cv.ID,
		"businessId":    cv.BusinessID,
		"customerPhone": cv.CustomerPhone,
		"customerName":  cv.CustomerName,
		"customerId":    cv.CustomerID,
		"source":        cv.Source,
		"status":        cv.Status,
		"priority":      cv.Priority,
		"assignedTo":    cv.AssignedTo,
		"assignedAt":    cv.AssignedAt,
		"lastMessageAt": cv.LastMessageAt,
		"createdAt":     cv.CreatedAt,
		"updatedAt":     cv.UpdatedAt,
		"resolvedAt":    cv.ResolvedAt,
		"archivedAt":    cv.ArchivedAt,
	}
}

func assignmentJSON(a *inbox.Assignment) gin.H {
	if a == nil {
		return nil
	}
	return gin.H{
		"id":             a.ID,
		"conversationId": a.ConversationID,
		"userId":         a.UserID,
		"assignedBy":     a.AssignedBy,
		"assignedAt":     a.AssignedAt,
		"completedAt":    a.CompletedAt,
		"notes":          a.Notes,
	}
}

func messageJSON(m *inbox.Message) gin.H {
	return gin.H{
		"id":             m.ID,
		"conversationId": m.ConversationID,
		"sender":         m.Sender,
		"senderType":     m.SenderType,
		"messageType":    m.MessageType,
		"content":        m.Content,
		"metadata":       m.Metadata,
		"seq":            m.Seq,
		"createdAt":      m.CreatedAt,
		"readBy":         m.ReadBy,
	}
}

func messagesJSON(msgs []inbox.Message) []gin.H {
	out := make([]gin.H, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageJSON(&msgs[i]))
	}
	return out
}

func notificationJSON(n *inbox.Notification) gin.H {
	return gin.H{
		"id":             n.ID,
		"userId":         n.UserID,
		"businessId":     n.BusinessID,
		"conversationId": n.ConversationID,
		"messageId":      n.MessageID,
		"type":           n.Type,
		"payload":        n.Payload,
		"createdAt":      n.CreatedAt,
		"readAt":         n.ReadAt,
	}
}
