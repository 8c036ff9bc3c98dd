package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore keeps refresh tokens keyed by digest.
type RefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{tokens: make(map[string]model.RefreshToken)}
}

func (s *RefreshTokenStore) Create(_ context.Context, token model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	s.tokens[model.HashRefreshToken(token.Token)] = token
	return nil
}

func (s *RefreshTokenStore) GetByToken(_ context.Context, token string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.tokens[model.HashRefreshToken(token)]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}

func (s *RefreshTokenStore) MarkUsed(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.HashRefreshToken(token)
	rt, ok := s.tokens[key]
	if !ok {
		return model.ErrNotFound
	}
	if !rt.Active() {
		return model.ErrTokenAlreadyUsed
	}
	rt.IsUsed = true
	s.tokens[key] = rt
	return nil
}

func (s *RefreshTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.HashRefreshToken(token)
	rt, ok := s.tokens[key]
	if !ok {
		return model.ErrNotFound
	}
	rt.IsRevoked = true
	s.tokens[key] = rt
	return nil
}

func (s *RefreshTokenStore) RevokeAllByUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rt := range s.tokens {
		if rt.UserID == userID {
			rt.IsRevoked = true
			s.tokens[key] = rt
		}
	}
	return nil
}
