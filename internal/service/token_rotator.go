package service

import (
	"context"
	"errors"
	"time"

	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
)

// TokenRotator exchanges an expired access token and its unused refresh token
// for a new pair. Each refresh token can be exchanged at most once.
type TokenRotator struct {
	codec    model.TokenCodec
	store    model.RefreshTokenStore
	identity model.IdentityStore
	issuer   *TokenIssuer
	logger   *logger.Logger
	now      func() time.Time
}

func NewTokenRotator(
	codec model.TokenCodec,
	store model.RefreshTokenStore,
	identity model.IdentityStore,
	issuer *TokenIssuer,
	logger *logger.Logger,
) *TokenRotator {
	return &TokenRotator{
		codec:    codec,
		store:    store,
		identity: identity,
		issuer:   issuer,
		logger:   logger,
		now:      time.Now,
	}
}

// Rotate checks the pair in a fixed order and stops at the first failure.
// Errors are model rotation sentinels; anything unexpected becomes ErrInternalFault.
func (r *TokenRotator) Rotate(ctx context.Context, accessToken, refreshToken string) (model.AuthResult, error) {
	decoded, err := r.codec.Decode(accessToken)
	if err != nil {
		r.logger.Debug("Token rotator: access token rejected",
			"error", err.Error())
		return model.AuthResult{}, model.ErrInvalidToken
	}

	if decoded.Algorithm != r.codec.Algorithm() {
		r.logger.Debug("Token rotator: unexpected signing algorithm",
			"alg", decoded.Algorithm)
		return model.AuthResult{}, model.ErrInvalidToken
	}

	if decoded.Claims.ExpiresAt.IsZero() {
		return model.AuthResult{}, model.ErrInvalidToken
	}

	now := r.now().UTC()
	if decoded.Claims.ExpiresAt.After(now) {
		return model.AuthResult{}, model.ErrTokenNotExpired
	}

	stored, err := r.store.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AuthResult{}, model.ErrTokenNotFound
		}
		return model.AuthResult{}, r.fault("failed to get refresh token", err)
	}

	if stored.IsUsed {
		return model.AuthResult{}, model.ErrTokenAlreadyUsed
	}

	if stored.IsRevoked {
		return model.AuthResult{}, model.ErrTokenRevoked
	}

	if stored.ExpiryDate.Before(now) {
		return model.AuthResult{}, model.ErrRefreshTokenExpired
	}

	if stored.JwtID != decoded.Claims.JTI {
		r.logger.Info("Token rotator: refresh token paired with another access token",
			"user_id", stored.UserID)
		return model.AuthResult{}, model.ErrTokenMismatch
	}

	if err := r.store.MarkUsed(ctx, refreshToken); err != nil {
		switch {
		case errors.Is(err, model.ErrTokenAlreadyUsed):
			return model.AuthResult{}, model.ErrTokenAlreadyUsed
		case errors.Is(err, model.ErrNotFound):
			return model.AuthResult{}, model.ErrTokenNotFound
		default:
			return model.AuthResult{}, r.fault("failed to mark refresh token used", err)
		}
	}

	user, err := r.identity.FindByID(ctx, stored.UserID)
	if err != nil {
		return model.AuthResult{}, r.fault("failed to find token owner", err)
	}

	result, err := r.issuer.Issue(ctx, user)
	if err != nil {
		return model.AuthResult{}, r.fault("failed to issue token pair", err)
	}

	r.logger.Info("Token rotator: refresh token exchanged",
		"user_id", user.ID)

	return result, nil
}

// fault logs the cause and hides it from the caller.
func (r *TokenRotator) fault(msg string, err error) error {
	r.logger.Error("Token rotator: "+msg,
		"error", err.Error())
	return model.ErrInternalFault
}
