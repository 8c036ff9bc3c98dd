package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists refresh token records keyed by token value.
type RefreshTokenStore interface {
	Create(ctx context.Context, token RefreshToken) error
	GetByToken(ctx context.Context, token string) (RefreshToken, error)
	// MarkUsed flips IsUsed only while the record is still active.
	// It returns ErrTokenAlreadyUsed when another caller got there first.
	MarkUsed(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken is the server-side record of an issued refresh token.
type RefreshToken struct {
	ID         uuid.UUID
	Token      string
	JwtID      string
	UserID     uuid.UUID
	IsUsed     bool
	IsRevoked  bool
	AddedDate  time.Time
	ExpiryDate time.Time
}

// Active reports whether the record can still be exchanged.
func (t RefreshToken) Active() bool {
	return !t.IsUsed && !t.IsRevoked
}

// HashRefreshToken returns the digest stores use in place of the raw token.
func HashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
