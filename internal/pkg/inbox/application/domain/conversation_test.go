package inbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "textback/pkg/errors"
)

func newTestConversation(t *testing.T) *Conversation {
	t.Helper()
	c, err := NewConversation(Conversation{
		BusinessID:    uuid.New(),
		CustomerPhone: "+15551230001",
		CustomerName:  "Pat Doe",
		Source:        SourceSMS,
	})
	require.NoError(t, err)
	return c
}

func TestNewConversationDefaults(t *testing.T) {
	c := newTestConversation(t)
	assert.Equal(t, StatusNew, c.Status)
	assert.Equal(t, PriorityMedium, c.Priority)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestNewConversationValidation(t *testing.T) {
	_, err := NewConversation(Conversation{BusinessID: uuid.New(), Source: SourceSMS})
	assert.ErrorIs(t, err, apperrors.ErrMissingPhone)

	_, err = NewConversation(Conversation{BusinessID: uuid.New(), CustomerPhone: "+15550000000"})
	assert.ErrorIs(t, err, apperrors.ErrMissingSource)

	_, err = NewConversation(Conversation{
		BusinessID:    uuid.New(),
		CustomerPhone: "+15550000000",
		Source:        Source("carrier-pigeon"),
	})
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestAssignTransitions(t *testing.T) {
	now := time.Now().UTC()
	userA := uuid.New()

	c := newTestConversation(t)
	require.NoError(t, c.Assign(userA, now))
	assert.Equal(t, StatusOpen, c.Status)
	require.NotNil(t, c.AssignedTo)
	assert.Equal(t, userA, *c.AssignedTo)
	require.NotNil(t, c.AssignedAt)

	// Reassignment from open is legal.
	userB := uuid.New()
	require.NoError(t, c.Assign(userB, now))
	assert.Equal(t, userB, *c.AssignedTo)
}

func TestResolveAndReopen(t *testing.T) {
	now := time.Now().UTC()
	user := uuid.New()

	c := newTestConversation(t)
	require.NoError(t, c.Assign(user, now))
	require.NoError(t, c.Resolve(now))
	assert.Equal(t, StatusResolved, c.Status)
	require.NotNil(t, c.ResolvedAt)

	// Reopen with a surviving assignment lands back in open.
	require.NoError(t, c.Reopen(true, now))
	assert.Equal(t, StatusOpen, c.Status)
	assert.Nil(t, c.ResolvedAt)

	// Reopen is only legal from resolved.
	err := c.Reopen(true, now)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
}

func TestReopenWithoutAssignmentGoesBackToNew(t *testing.T) {
	now := time.Now().UTC()
	c := newTestConversation(t)

	// Direct resolution of an unassigned conversation.
	require.NoError(t, c.Resolve(now))
	require.NoError(t, c.Reopen(false, now))
	assert.Equal(t, StatusNew, c.Status)
}

func TestResolveUnassignedOpenIsRejectedFromNewOnlyWhenAssigned(t *testing.T) {
	now := time.Now().UTC()
	c := newTestConversation(t)
	require.NoError(t, c.Assign(uuid.New(), now))

	// Back to new is not a real state here, but resolving twice is illegal.
	require.NoError(t, c.Resolve(now))
	err := c.Resolve(now)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
}

func TestArchiveIsTerminal(t *testing.T) {
	now := time.Now().UTC()
	c := newTestConversation(t)
	require.NoError(t, c.Archive(now))
	assert.Equal(t, StatusArchived, c.Status)
	require.NotNil(t, c.ArchivedAt)

	assert.Error(t, c.Assign(uuid.New(), now))
	assert.Error(t, c.Resolve(now))
	assert.Error(t, c.Reopen(true, now))
	assert.Error(t, c.Archive(now))

	err := c.Assign(uuid.New(), now)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
	// Failed transitions leave the conversation untouched.
	assert.Equal(t, StatusArchived, c.Status)
	assert.Nil(t, c.AssignedTo)
}

func TestFullLifecycle(t *testing.T) {
	now := time.Now().UTC()
	userA := uuid.New()
	c := newTestConversation(t)

	require.NoError(t, c.Assign(userA, now))
	assert.Equal(t, StatusOpen, c.Status)

	require.NoError(t, c.Resolve(now))
	assert.Equal(t, StatusResolved, c.Status)

	require.NoError(t, c.Reopen(true, now))
	assert.Equal(t, StatusOpen, c.Status)

	require.NoError(t, c.Archive(now))
	assert.Equal(t, StatusArchived, c.Status)

	err := c.Assign(userA, now)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
}

func TestMessageMentions(t *testing.T) {
	userX := uuid.New()
	userY := uuid.New()

	m, err := NewMessage(Message{
		ConversationID: uuid.New(),
		Sender:         uuid.New().String(),
		SenderType:     SenderTeam,
		Content:        "ping",
		Metadata: map[string]any{
			"mentions": []any{userX.String(), userY.String(), "not-a-uuid"},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{userX, userY}, m.Mentions())

	// No metadata, no mentions.
	m2, err := NewMessage(Message{
		ConversationID: uuid.New(),
		Sender:         CustomerSender,
		SenderType:     SenderCustomer,
		Content:        "hi @someone",
	})
	require.NoError(t, err)
	assert.Empty(t, m2.Mentions())
}

func TestMissedCallReplyByTier(t *testing.T) {
	for _, tier := range []Tier{TierBasic, TierPro, TierEnterprise} {
		b := Business{ID: uuid.New(), Name: "Garage", Phone: "+15550001111", Tier: tier}
		assert.NotEmpty(t, b.MissedCallReply())
	}
}
