package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"textback/internal/infrastructure/cache/port"
	apperrors "textback/pkg/errors"
)

// Identity describes the authenticated team member behind a session token.
type Identity struct {
	UserID     uuid.UUID `json:"user_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Name       string    `json:"name"`
}

// Store resolves bearer tokens to identities. Sessions are written by the
// auth service; this side only reads them.
type Store interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// CacheStore reads sessions stored as JSON under "session:<token>".
type CacheStore struct {
	cache port.Cache
}

func NewCacheStore(cache port.Cache) *CacheStore {
	return &CacheStore{cache: cache}
}

var _ Store = (*CacheStore)(nil)

func (s *CacheStore) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperrors.ErrNoSession
	}
	raw, err := s.cache.Get(ctx, "session:"+token)
	if err == port.ErrMiss {
		return nil, apperrors.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: lookup: %w", err)
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	if id.UserID == uuid.Nil || id.BusinessID == uuid.Nil {
		return nil, apperrors.ErrNoSession
	}
	return &id, nil
}

// StaticStore maps fixed tokens to identities. Used in tests and local
// development without Redis.
type StaticStore struct {
	tokens map[string]Identity
}

func NewStaticStore(tokens map[string]Identity) *StaticStore {
	return &StaticStore{tokens: tokens}
}

var _ Store = (*StaticStore)(nil)

func (s *StaticStore) Resolve(_ context.Context, token string) (*Identity, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	return &id, nil
}
