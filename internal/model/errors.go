package model

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by stores when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Identity errors.
var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrRateLimited        = errors.New("rate limited")
)

// Codec errors.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
)

// Rotation outcomes, in the order the rotator checks them.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenNotExpired     = errors.New("access token has not expired")
	ErrTokenNotFound       = errors.New("refresh token not found")
	ErrTokenAlreadyUsed    = errors.New("refresh token already used")
	ErrTokenRevoked        = errors.New("refresh token revoked")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrTokenMismatch       = errors.New("refresh token mismatch")
	ErrInternalFault       = errors.New("internal fault")
)

// PasswordPolicyError lists every rule a candidate password failed.
type PasswordPolicyError struct {
	Details []string
}

func (e *PasswordPolicyError) Error() string {
	return "password does not satisfy policy: " + strings.Join(e.Details, "; ")
}
