package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdentityStore creates accounts and checks credentials.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	// Create returns ErrEmailInUse or a *PasswordPolicyError on rejection.
	Create(ctx context.Context, email, username, password string) (User, error)
	CheckPassword(user User, password string) bool
}

// LoginLimiter throttles repeated failed logins per email.
type LoginLimiter interface {
	// Allow returns ErrRateLimited while the email is locked out.
	Allow(ctx context.Context, email string) error
	Failure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// LoginThrottle tunes a LoginLimiter.
type LoginThrottle struct {
	MaxAttempts int
	Cooldown    time.Duration
}
