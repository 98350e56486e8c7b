package adapter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

func seedConversation(t *testing.T, repo *MemoryInboxRepository, businessID uuid.UUID) *inbox.Conversation {
	t.Helper()
	c, err := inbox.NewConversation(inbox.Conversation{
		BusinessID:    businessID,
		CustomerPhone: "+15551230001",
		Source:        inbox.SourceSMS,
	})
	require.NoError(t, err)
	created, err := repo.CreateConversation(context.Background(), *c)
	require.NoError(t, err)
	return created
}

func TestConcurrentAssignKeepsSingleActiveAssignment(t *testing.T) {
	repo := NewMemoryInboxRepository()
	businessID := uuid.New()
	conv := seedConversation(t, repo, businessID)
	assignedBy := uuid.New()

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := repo.Assign(context.Background(), businessID, conv.ID, uuid.New(), assignedBy, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.ActiveAssignmentCount(conv.ID))

	got, err := repo.GetConversation(context.Background(), businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusOpen, got.Status)
	require.NotNil(t, got.AssignedTo)

	active, err := repo.ActiveAssignment(context.Background(), businessID, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, *got.AssignedTo, active.UserID)
}

func TestMessageOrderingAndSequence(t *testing.T) {
	repo := NewMemoryInboxRepository()
	businessID := uuid.New()
	conv := seedConversation(t, repo, businessID)
	ctx := context.Background()

	// Identical timestamps force the sequence tie-break.
	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		m, err := inbox.NewMessage(inbox.Message{
			ConversationID: conv.ID,
			Sender:         inbox.CustomerSender,
			SenderType:     inbox.SenderCustomer,
			Content:        "msg",
			CreatedAt:      at,
		})
		require.NoError(t, err)
		_, err = repo.AppendMessage(ctx, businessID, *m)
		require.NoError(t, err)
	}

	asc, err := repo.ListMessages(ctx, businessID, conv.ID, repository.MessageQuery{})
	require.NoError(t, err)
	require.Len(t, asc, 5)
	for i := 1; i < len(asc); i++ {
		assert.Greater(t, asc[i].Seq, asc[i-1].Seq)
	}

	desc, err := repo.ListMessages(ctx, businessID, conv.ID, repository.MessageQuery{SortDirection: repository.SortDesc})
	require.NoError(t, err)
	require.Len(t, desc, 5)
	for i := 1; i < len(desc); i++ {
		assert.Less(t, desc[i].Seq, desc[i-1].Seq)
	}
}

func TestMarkMessagesReadIsIdempotent(t *testing.T) {
	repo := NewMemoryInboxRepository()
	businessID := uuid.New()
	conv := seedConversation(t, repo, businessID)
	ctx := context.Background()
	reader := uuid.New()

	for i := 0; i < 3; i++ {
		m, err := inbox.NewMessage(inbox.Message{
			ConversationID: conv.ID,
			Sender:         inbox.CustomerSender,
			SenderType:     inbox.SenderCustomer,
			Content:        "hello",
		})
		require.NoError(t, err)
		_, err = repo.AppendMessage(ctx, businessID, *m)
		require.NoError(t, err)
	}

	count, err := repo.MarkMessagesRead(ctx, businessID, conv.ID, reader, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.MarkMessagesRead(ctx, businessID, conv.ID, reader, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTenantScoping(t *testing.T) {
	repo := NewMemoryInboxRepository()
	businessID := uuid.New()
	conv := seedConversation(t, repo, businessID)
	ctx := context.Background()

	_, err := repo.GetConversation(ctx, uuid.New(), conv.ID)
	assert.ErrorIs(t, err, apperrors.ErrTenantMismatch)

	_, err = repo.GetConversation(ctx, businessID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}

func TestNotificationDedupe(t *testing.T) {
	repo := NewMemoryInboxRepository()
	ctx := context.Background()
	businessID := uuid.New()
	userID := uuid.New()
	conversationID := uuid.New()

	base := inbox.Notification{
		UserID:         userID,
		BusinessID:     businessID,
		ConversationID: conversationID,
		Type:           inbox.NotificationNewMessage,
		CreatedAt:      time.Now().UTC(),
	}
	for i := 0; i < 3; i++ {
		n := base
		n.ID = uuid.New()
		require.NoError(t, repo.CreateNotification(ctx, n))
	}

	got, err := repo.ListNotifications(ctx, businessID, userID, repository.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// A different type for the same conversation is its own notification.
	other := base
	other.ID = uuid.New()
	other.Type = inbox.NotificationAssignment
	require.NoError(t, repo.CreateNotification(ctx, other))

	got, err = repo.ListNotifications(ctx, businessID, userID, repository.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestMarkNotificationsRead(t *testing.T) {
	repo := NewMemoryInboxRepository()
	ctx := context.Background()
	businessID := uuid.New()
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		msgID := uuid.New()
		require.NoError(t, repo.CreateNotification(ctx, inbox.Notification{
			ID:             uuid.New(),
			UserID:         userID,
			BusinessID:     businessID,
			ConversationID: uuid.New(),
			MessageID:      &msgID,
			Type:           inbox.NotificationMention,
			CreatedAt:      time.Now().UTC(),
		}))
	}

	count, err := repo.MarkNotificationsRead(ctx, businessID, userID, nil, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.MarkNotificationsRead(ctx, businessID, userID, nil, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	unread, err := repo.ListNotifications(ctx, businessID, userID, repository.NotificationQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestResolveCompletesActiveAssignment(t *testing.T) {
	repo := NewMemoryInboxRepository()
	businessID := uuid.New()
	conv := seedConversation(t, repo, businessID)
	ctx := context.Background()
	user := uuid.New()

	_, a, err := repo.Assign(ctx, businessID, conv.ID, user, uuid.New(), nil)
	require.NoError(t, err)
	require.True(t, a.Active())

	resolved, err := repo.Resolve(ctx, businessID, conv.ID, user)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusResolved, resolved.Status)

	active, err := repo.ActiveAssignment(ctx, businessID, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// The assignee survives resolution, so reopening lands back in open even
	// though the assignment row is completed.
	reopened, err := repo.Reopen(ctx, businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusOpen, reopened.Status)
	require.NotNil(t, reopened.AssignedTo)
	assert.Equal(t, user, *reopened.AssignedTo)
}

func TestReopenUnassignedGoesBackToNew(t *testing.T) {
	repo := NewMemoryInboxRepository()
	businessID := uuid.New()
	conv := seedConversation(t, repo, businessID)
	ctx := context.Background()

	// Direct resolution of a conversation nobody ever claimed.
	_, err := repo.Resolve(ctx, businessID, conv.ID, uuid.New())
	require.NoError(t, err)

	reopened, err := repo.Reopen(ctx, businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusNew, reopened.Status)
	assert.Nil(t, reopened.AssignedTo)
}
