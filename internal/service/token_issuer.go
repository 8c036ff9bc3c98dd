package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
	"github.com/dtroode/tokenkeeper/internal/token"
)

// TokenIssuer mints an access/refresh pair for a user and persists the refresh record.
type TokenIssuer struct {
	codec      model.TokenCodec
	store      model.RefreshTokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

func NewTokenIssuer(
	codec model.TokenCodec,
	store model.RefreshTokenStore,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *TokenIssuer {
	return &TokenIssuer{
		codec:      codec,
		store:      store,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue returns a successful AuthResult carrying a fresh pair.
// Nothing is returned if the refresh record cannot be stored.
func (i *TokenIssuer) Issue(ctx context.Context, user model.User) (model.AuthResult, error) {
	access, err := i.codec.Encode(model.AccessClaims{UserID: user.ID, Email: user.Email}, i.accessTTL)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := token.NewRefreshToken()
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("issue refresh: %w", err)
	}

	now := i.now().UTC()
	rt := model.RefreshToken{
		ID:         uuid.New(),
		Token:      refresh,
		JwtID:      access.JTI,
		UserID:     user.ID,
		IsUsed:     false,
		IsRevoked:  false,
		AddedDate:  now,
		ExpiryDate: now.Add(i.refreshTTL),
	}
	if err := i.store.Create(ctx, rt); err != nil {
		return model.AuthResult{}, fmt.Errorf("persist refresh: %w", err)
	}

	i.logger.Debug("Token issuer: issued token pair",
		"user_id", user.ID,
		"jti", access.JTI)

	return model.AuthResult{
		Token:        access.Value,
		RefreshToken: refresh,
		Success:      true,
	}, nil
}
