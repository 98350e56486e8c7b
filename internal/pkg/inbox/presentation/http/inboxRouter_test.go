package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textback/internal/infrastructure/session"
	"textback/internal/pkg/inbox/application/usecase"
	"textback/internal/pkg/inbox/persistence/repository/adapter"
)

const (
	tokenA = "token-business-a"
	tokenB = "token-business-b"
	secret = "hook-secret"
)

type testEnv struct {
	engine    *gin.Engine
	repo      *adapter.MemoryInboxRepository
	businessA uuid.UUID
	businessB uuid.UUID
	userA     uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := adapter.NewMemoryInboxRepository()
	businessA := uuid.New()
	businessB := uuid.New()
	userA := uuid.New()

	sessions := session.NewStaticStore(map[string]session.Identity{
		tokenA: {UserID: userA, BusinessID: businessA, Name: "Alex"},
		tokenB: {UserID: uuid.New(), BusinessID: businessB, Name: "Brook"},
	})
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	engine := gin.New()
	g := engine.Group("/api/v1")
	RegisterRoutes(g, Deps{
		Repo:          repo,
		Sessions:      sessions,
		Notifier:      usecase.NewNotifier(nil, nil, nil, logger),
		Logger:        logger,
		WebhookSecret: secret,
	})
	return &testEnv{engine: engine, repo: repo, businessA: businessA, businessB: businessB, userA: userA}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeConversationID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Conversation.ID)
	return out.Conversation.ID
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/conversations", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateConversationValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/conversations", tokenA, gin.H{
		"customerName": "Pat", "source": "sms",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/conversations", tokenA, gin.H{
		"customerPhone": "+15551230001",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConversationLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/conversations", tokenA, gin.H{
		"customerName":   "Pat Doe",
		"customerPhone":  "+15551230001",
		"source":         "sms",
		"initialMessage": "hi, my sink is leaking",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	convID := decodeConversationID(t, w)

	// List shows the new conversation with stats.
	w = env.do(t, http.MethodGet, "/api/v1/conversations", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Conversations []json.RawMessage `json:"conversations"`
		Stats         struct {
			Total int `json:"total"`
			New   int `json:"new"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Conversations, 1)
	assert.Equal(t, 1, list.Stats.Total)
	assert.Equal(t, 1, list.Stats.New)

	// Assign -> open.
	assignee := uuid.New()
	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/assign", tokenA, gin.H{
		"userId": assignee.String(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var assigned struct {
		Conversation struct {
			Status     string `json:"status"`
			AssignedTo string `json:"assignedTo"`
		} `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assigned))
	assert.Equal(t, "open", assigned.Conversation.Status)
	assert.Equal(t, assignee.String(), assigned.Conversation.AssignedTo)

	// Detail view carries the active assignment.
	w = env.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"?includeMessages=true", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Conversation struct {
			ActiveAssignment *struct {
				UserID string `json:"userId"`
			} `json:"activeAssignment"`
			Messages []json.RawMessage `json:"messages"`
		} `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.NotNil(t, detail.Conversation.ActiveAssignment)
	assert.Equal(t, assignee.String(), detail.Conversation.ActiveAssignment.UserID)
	assert.Len(t, detail.Conversation.Messages, 1)

	// Resolve, reopen, archive.
	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/resolve", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/reopen", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/archive", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Archived is terminal: further transitions conflict.
	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/assign", tokenA, gin.H{
		"userId": assignee.String(),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCrossTenantAccessIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/conversations", tokenA, gin.H{
		"customerPhone": "+15551230001",
		"source":        "sms",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	convID := decodeConversationID(t, w)

	w = env.do(t, http.MethodGet, "/api/v1/conversations/"+convID, tokenB, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/conversations/"+uuid.NewString(), tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessagesEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/conversations", tokenA, gin.H{
		"customerPhone": "+15551230001",
		"source":        "sms",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	convID := decodeConversationID(t, w)

	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", tokenA, gin.H{
		"content": "on my way",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Empty content is rejected before it reaches the thread.
	w = env.do(t, http.MethodPost, "/api/v1/conversations/"+convID+"/messages", tokenA, gin.H{
		"content": "",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/conversations/"+convID+"/messages", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs struct {
		Messages []struct {
			Content string `json:"content"`
			Seq     int64  `json:"seq"`
		} `json:"messages"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	assert.Equal(t, 1, msgs.Count)
	assert.Equal(t, "on my way", msgs.Messages[0].Content)
}

func TestSMSWebhook(t *testing.T) {
	env := newTestEnv(t)
	path := "/api/v1/webhooks/" + env.businessA.String() + "/sms"

	// Missing secret.
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"from":"+15559990000","body":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// With the secret a conversation is opened.
	req = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"from":"+15559990000","body":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", secret)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// A second text from the same number threads into the open conversation.
	req = httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"from":"+15559990000","body":"anyone there?"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", secret)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotificationsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/notifications", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/notifications/read", tokenA, gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Updated int `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Zero(t, out.Updated)
}
