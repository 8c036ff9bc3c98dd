package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
)

// Auth is the entry point for transports. Register, Login and Refresh
// always answer with an AuthResult.
type Auth struct {
	identity model.IdentityStore
	store    model.RefreshTokenStore
	codec    model.TokenCodec
	issuer   *TokenIssuer
	rotator  *TokenRotator
	limiter  model.LoginLimiter
	logger   *logger.Logger
}

func NewAuth(
	identity model.IdentityStore,
	store model.RefreshTokenStore,
	codec model.TokenCodec,
	issuer *TokenIssuer,
	rotator *TokenRotator,
	limiter model.LoginLimiter,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		identity: identity,
		store:    store,
		codec:    codec,
		issuer:   issuer,
		rotator:  rotator,
		limiter:  limiter,
		logger:   logger,
	}
}

func (a *Auth) Register(ctx context.Context, email, username, password string) model.AuthResult {
	a.logger.Debug("Auth service: registering user",
		"email", email)

	user, err := a.identity.Create(ctx, email, username, password)
	if err != nil {
		var policyErr *model.PasswordPolicyError
		switch {
		case errors.Is(err, model.ErrEmailInUse):
			a.logger.Info("Auth service: email already in use",
				"email", email)
			return model.Failure(model.MsgEmailInUse)
		case errors.As(err, &policyErr):
			a.logger.Info("Auth service: password rejected by policy",
				"email", email)
			return model.Failure(policyErr.Details...)
		default:
			a.logger.Error("Auth service: failed to create user",
				"email", email,
				"error", err.Error())
			return model.Failure(model.MsgInternal)
		}
	}

	result, err := a.issuer.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens after registration",
			"user_id", user.ID,
			"error", err.Error())
		return model.Failure(model.MsgInternal)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", user.ID)

	return result
}

func (a *Auth) Login(ctx context.Context, email, password string) model.AuthResult {
	a.logger.Debug("Auth service: login attempt",
		"email", email)

	if err := a.limiter.Allow(ctx, email); err != nil {
		if errors.Is(err, model.ErrRateLimited) {
			a.logger.Info("Auth service: login throttled",
				"email", email)
			return model.Failure(model.MsgRateLimited)
		}
		a.logger.Warn("Auth service: login limiter unavailable",
			"error", err.Error())
	}

	user, err := a.identity.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			a.recordFailure(ctx, email)
			return model.Failure(model.MsgInvalidCredentials)
		}
		a.logger.Error("Auth service: failed to find user",
			"email", email,
			"error", err.Error())
		return model.Failure(model.MsgInternal)
	}

	if !a.identity.CheckPassword(user, password) {
		a.logger.Info("Auth service: wrong password",
			"user_id", user.ID)
		a.recordFailure(ctx, email)
		return model.Failure(model.MsgInvalidCredentials)
	}

	if err := a.limiter.Reset(ctx, email); err != nil {
		a.logger.Warn("Auth service: failed to reset login attempts",
			"error", err.Error())
	}

	result, err := a.issuer.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"user_id", user.ID,
			"error", err.Error())
		return model.Failure(model.MsgInternal)
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return result
}

func (a *Auth) recordFailure(ctx context.Context, email string) {
	if err := a.limiter.Failure(ctx, email); err != nil {
		a.logger.Warn("Auth service: failed to record login failure",
			"error", err.Error())
	}
}

// Refresh exchanges an expired access token and its refresh token for a new pair.
func (a *Auth) Refresh(ctx context.Context, accessToken, refreshToken string) model.AuthResult {
	result, err := a.rotator.Rotate(ctx, accessToken, refreshToken)
	if err != nil {
		a.logger.Debug("Auth service: refresh rejected",
			"reason", err.Error())
		return model.Failure(model.RefreshMessage(err))
	}
	return result
}

// GetUserID validates an access token presented on a protected call.
func (a *Auth) GetUserID(_ context.Context, accessToken string) (uuid.UUID, error) {
	claims, err := a.codec.Verify(accessToken)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	return claims.UserID, nil
}

func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.identity.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrNotFound
		}
		a.logger.Error("Auth service: failed to get user",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Revoke revokes one refresh token of the caller.
// Tokens that do not exist or belong to someone else report ErrTokenNotFound.
func (a *Auth) Revoke(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	stored, err := a.store.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrTokenNotFound
		}
		a.logger.Error("Auth service: failed to get refresh token",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to get refresh token: %w", err)
	}

	if stored.UserID != userID {
		a.logger.Warn("Auth service: attempt to revoke a foreign refresh token",
			"user_id", userID)
		return model.ErrTokenNotFound
	}

	if err := a.store.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrTokenNotFound
		}
		a.logger.Error("Auth service: failed to revoke refresh token",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	a.logger.Info("Auth service: refresh token revoked",
		"user_id", userID)

	return nil
}

// RevokeAll revokes every refresh token of the caller.
func (a *Auth) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := a.store.RevokeAllByUser(ctx, userID); err != nil {
		a.logger.Error("Auth service: failed to revoke refresh tokens",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	a.logger.Info("Auth service: all refresh tokens revoked",
		"user_id", userID)

	return nil
}
