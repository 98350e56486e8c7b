package task

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inbox "textback/internal/pkg/inbox/application/domain"
	"textback/internal/pkg/inbox/persistence/repository/adapter"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
)

func runNotify(t *testing.T, repo repository.InboxRepository, p NotifyPayload) {
	t.Helper()
	tk, err := NewNotifyTask(p)
	require.NoError(t, err)
	h := NewNotifyHandler(repo, nil)
	require.NoError(t, h(context.Background(), tk))
}

func TestCustomerMessageNotifiesAssigneeOnce(t *testing.T) {
	repo := adapter.NewMemoryInboxRepository()
	businessID := uuid.New()
	conversationID := uuid.New()
	assignee := uuid.New()

	// Three customer messages in a row collapse into a single unread
	// notification for the assignee.
	for i := 0; i < 3; i++ {
		msgID := uuid.New()
		runNotify(t, repo, NotifyPayload{
			Trigger:        TriggerMessage,
			BusinessID:     businessID,
			ConversationID: conversationID,
			MessageID:      &msgID,
			Sender:         inbox.CustomerSender,
			SenderType:     string(inbox.SenderCustomer),
			AssignedTo:     &assignee,
		})
	}

	got, err := repo.ListNotifications(context.Background(), businessID, assignee, repository.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inbox.NotificationNewMessage, got[0].Type)
	assert.Equal(t, conversationID, got[0].ConversationID)
}

func TestCustomerMessageOnUnassignedConversationNotifiesNobody(t *testing.T) {
	repo := adapter.NewMemoryInboxRepository()
	businessID := uuid.New()
	msgID := uuid.New()

	runNotify(t, repo, NotifyPayload{
		Trigger:        TriggerMessage,
		BusinessID:     businessID,
		ConversationID: uuid.New(),
		MessageID:      &msgID,
		Sender:         inbox.CustomerSender,
		SenderType:     string(inbox.SenderCustomer),
	})

	got, err := repo.ListNotifications(context.Background(), businessID, uuid.New(), repository.NotificationQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMentionsNotifyEveryoneExceptAuthor(t *testing.T) {
	repo := adapter.NewMemoryInboxRepository()
	businessID := uuid.New()
	conversationID := uuid.New()
	author := uuid.New()
	userX := uuid.New()
	userY := uuid.New()
	msgID := uuid.New()

	runNotify(t, repo, NotifyPayload{
		Trigger:        TriggerMessage,
		BusinessID:     businessID,
		ConversationID: conversationID,
		MessageID:      &msgID,
		Sender:         author.String(),
		SenderType:     string(inbox.SenderTeam),
		Mentions:       []uuid.UUID{userX, userY, author}, // self-mention dropped
	})

	ctx := context.Background()
	for _, u := range []uuid.UUID{userX, userY} {
		got, err := repo.ListNotifications(ctx, businessID, u, repository.NotificationQuery{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, inbox.NotificationMention, got[0].Type)
		require.NotNil(t, got[0].MessageID)
		assert.Equal(t, msgID, *got[0].MessageID)
	}

	got, err := repo.ListNotifications(ctx, businessID, author, repository.NotificationQuery{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssignmentNotifiesAssigneeWithAssignmentID(t *testing.T) {
	repo := adapter.NewMemoryInboxRepository()
	businessID := uuid.New()
	conversationID := uuid.New()
	assignee := uuid.New()
	assignedBy := uuid.New()
	assignmentID := uuid.New()

	runNotify(t, repo, NotifyPayload{
		Trigger:        TriggerAssignment,
		BusinessID:     businessID,
		ConversationID: conversationID,
		AssignedTo:     &assignee,
		AssignmentID:   &assignmentID,
		AssignedBy:     &assignedBy,
	})

	got, err := repo.ListNotifications(context.Background(), businessID, assignee, repository.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inbox.NotificationAssignment, got[0].Type)
	assert.Equal(t, assignmentID.String(), got[0].Payload["assignmentId"])
}
