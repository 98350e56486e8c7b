package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inbox "textback/internal/pkg/inbox/application/domain"
	"textback/internal/pkg/inbox/persistence/repository/adapter"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	"textback/internal/pkg/sms/dispatcher"
	smsport "textback/internal/pkg/sms/port"
	"textback/internal/pkg/sms/ratelimit"
	apperrors "textback/pkg/errors"
)

type recordingGateway struct {
	mu     sync.Mutex
	bodies []string
	tos    []string
}

func (g *recordingGateway) Send(_ context.Context, _, to, body string) (*smsport.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tos = append(g.tos, to)
	g.bodies = append(g.bodies, body)
	return &smsport.Receipt{ProviderID: "SM1", Status: "queued"}, nil
}

func missedCallFixture(t *testing.T, tier inbox.Tier) (*HandleMissedCallUseCase, *adapter.MemoryInboxRepository, *recordingGateway, uuid.UUID) {
	t.Helper()
	repo := adapter.NewMemoryInboxRepository()
	business := inbox.Business{ID: uuid.New(), Name: "Joe's Garage", Phone: "+15550009999", Tier: tier}
	repo.PutBusiness(business)

	gw := &recordingGateway{}
	d := dispatcher.New(gw, ratelimit.NewMemoryLimiter(10*time.Minute), nil, nil)
	uc := NewHandleMissedCallUseCase(repo, d, NewNotifier(nil, nil, nil, nil), nil)
	return uc, repo, gw, business.ID
}

func TestMissedCallOpensConversationAndSendsTierReply(t *testing.T) {
	uc, repo, gw, businessID := missedCallFixture(t, inbox.TierPro)
	ctx := context.Background()

	out, err := uc.Execute(ctx, HandleMissedCallInput{
		BusinessID:  businessID,
		CallerPhone: "+15551234567",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Conversation)
	assert.Equal(t, inbox.SourceMissedCall, out.Conversation.Source)
	assert.Equal(t, inbox.PriorityHigh, out.Conversation.Priority)

	require.NotNil(t, out.AutoReply)
	assert.Equal(t, dispatcher.StatusSent, out.AutoReply.Status)
	require.Len(t, gw.tos, 1)
	assert.Equal(t, "+15551234567", gw.tos[0])

	b, err := repo.GetBusiness(ctx, businessID)
	require.NoError(t, err)
	assert.Equal(t, b.MissedCallReply(), gw.bodies[0])

	// The missed call and the auto-reply both landed in the thread.
	msgs, err := repo.ListMessages(ctx, businessID, out.Conversation.ID, repository.MessageQuery{})
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestRepeatMissedCallIsRateLimited(t *testing.T) {
	uc, _, gw, businessID := missedCallFixture(t, inbox.TierBasic)
	ctx := context.Background()

	first, err := uc.Execute(ctx, HandleMissedCallInput{BusinessID: businessID, CallerPhone: "+15551234567"})
	require.NoError(t, err)
	require.NotNil(t, first.AutoReply)
	assert.Equal(t, dispatcher.StatusSent, first.AutoReply.Status)

	second, err := uc.Execute(ctx, HandleMissedCallInput{BusinessID: businessID, CallerPhone: "+15551234567"})
	require.NoError(t, err)
	require.NotNil(t, second.AutoReply)
	assert.Equal(t, dispatcher.StatusSkipped, second.AutoReply.Status)
	assert.Equal(t, dispatcher.ReasonRateLimited, second.AutoReply.Reason)

	// Only the first call reached the gateway, and both calls share one
	// conversation.
	assert.Len(t, gw.tos, 1)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)
}

func TestMissedCallForUnknownBusiness(t *testing.T) {
	uc, _, _, _ := missedCallFixture(t, inbox.TierBasic)

	_, err := uc.Execute(context.Background(), HandleMissedCallInput{
		BusinessID:  uuid.New(),
		CallerPhone: "+15551234567",
	})
	assert.ErrorIs(t, err, apperrors.ErrBusinessNotFound)
}

func TestMissedCallRequiresCallerPhone(t *testing.T) {
	uc, _, _, businessID := missedCallFixture(t, inbox.TierBasic)

	_, err := uc.Execute(context.Background(), HandleMissedCallInput{BusinessID: businessID})
	assert.ErrorIs(t, err, apperrors.ErrMissingPhone)
}
