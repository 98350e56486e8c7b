package adapter

import (
	"context"
	_ "embed"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// integrationPool connects to the database named by TEXTBACK_TEST_POSTGRES_DSN
// and applies the schema. Tests are skipped when the variable is unset.
func integrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEXTBACK_TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("set TEXTBACK_TEST_POSTGRES_DSN to run Postgres integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, schemaSQL)
	require.NoError(t, err)
	return pool
}

func seedPgConversation(t *testing.T, repo *PgInboxRepository, businessID uuid.UUID) *inbox.Conversation {
	t.Helper()
	c, err := inbox.NewConversation(inbox.Conversation{
		BusinessID:    businessID,
		CustomerPhone: "+1555" + uuid.NewString()[:7],
		Source:        inbox.SourceSMS,
	})
	require.NoError(t, err)
	created, err := repo.CreateConversation(context.Background(), *c)
	require.NoError(t, err)
	return created
}

func seedPgBusiness(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO businesses (id, name, phone, tier) VALUES ($1, $2, $3, $4)
	`, id, "Integration Garage", "+15550000000", "basic")
	require.NoError(t, err)
	return id
}

func TestPgConversationLifecycle(t *testing.T) {
	pool := integrationPool(t)
	repo := NewPgInboxRepository(pool)
	businessID := seedPgBusiness(t, pool)
	conv := seedPgConversation(t, repo, businessID)
	ctx := context.Background()
	user := uuid.New()

	got, a, err := repo.Assign(ctx, businessID, conv.ID, user, uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusOpen, got.Status)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, user, a.UserID)

	resolved, err := repo.Resolve(ctx, businessID, conv.ID, user)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	active, err := repo.ActiveAssignment(ctx, businessID, conv.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// The assignee survives resolution, so reopening lands back in open.
	reopened, err := repo.Reopen(ctx, businessID, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusOpen, reopened.Status)
	require.NotNil(t, reopened.AssignedTo)

	archived, err := repo.Archive(ctx, businessID, conv.ID, user)
	require.NoError(t, err)
	assert.Equal(t, inbox.StatusArchived, archived.Status)

	_, _, err = repo.Assign(ctx, businessID, conv.ID, user, uuid.New(), nil)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
}

func TestPgConcurrentAssignSingleActive(t *testing.T) {
	pool := integrationPool(t)
	repo := NewPgInboxRepository(pool)
	businessID := seedPgBusiness(t, pool)
	conv := seedPgConversation(t, repo, businessID)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, _, err := repo.Assign(ctx, businessID, conv.ID, uuid.New(), uuid.New(), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var activeCount int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM assignments WHERE conversation_id = $1 AND completed_at IS NULL
	`, conv.ID).Scan(&activeCount)
	require.NoError(t, err)
	assert.Equal(t, 1, activeCount)
}

func TestPgMessageSequenceAndReadMarking(t *testing.T) {
	pool := integrationPool(t)
	repo := NewPgInboxRepository(pool)
	businessID := seedPgBusiness(t, pool)
	conv := seedPgConversation(t, repo, businessID)
	ctx := context.Background()
	reader := uuid.New()

	for i := 0; i < 4; i++ {
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

	msgs, err := repo.ListMessages(ctx, businessID, conv.ID, repository.MessageQuery{})
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].Seq, msgs[i-1].Seq)
	}

	count, err := repo.MarkMessagesRead(ctx, businessID, conv.ID, reader, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	count, err = repo.MarkMessagesRead(ctx, businessID, conv.ID, reader, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPgNotificationDedupe(t *testing.T) {
	pool := integrationPool(t)
	repo := NewPgInboxRepository(pool)
	businessID := seedPgBusiness(t, pool)
	ctx := context.Background()
	userID := uuid.New()
	conversationID := seedPgConversation(t, repo, businessID).ID

	for i := 0; i < 3; i++ {
		err := repo.CreateNotification(ctx, inbox.Notification{
			ID:             uuid.New(),
			UserID:         userID,
			BusinessID:     businessID,
			ConversationID: conversationID,
			Type:           inbox.NotificationNewMessage,
			Payload:        map[string]any{"conversationId": conversationID.String()},
			CreatedAt:      time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	got, err := repo.ListNotifications(ctx, businessID, userID, repository.NotificationQuery{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPgTenantScoping(t *testing.T) {
	pool := integrationPool(t)
	repo := NewPgInboxRepository(pool)
	businessID := seedPgBusiness(t, pool)
	conv := seedPgConversation(t, repo, businessID)
	ctx := context.Background()

	_, err := repo.GetConversation(ctx, uuid.New(), conv.ID)
	assert.ErrorIs(t, err, apperrors.ErrTenantMismatch)
}
