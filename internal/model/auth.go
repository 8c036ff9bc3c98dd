package model

import (
	"errors"
	"net/mail"
	"strings"
)

// AuthResult is the uniform outcome of register, login and refresh.
type AuthResult struct {
	Token        string   `json:"token,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	Success      bool     `json:"success"`
	Errors       []string `json:"errors,omitempty"`
}

// Failure builds an unsuccessful AuthResult.
func Failure(messages ...string) AuthResult {
	return AuthResult{Success: false, Errors: messages}
}

// Messages shown to clients.
const (
	MsgInvalidPayload      = "Invalid payload"
	MsgEmailInUse          = "Email already in use"
	MsgInvalidCredentials  = "Invalid login request"
	MsgInvalidTokens       = "Invalid tokens"
	MsgTokenNotExpired     = "Token has not yet expired"
	MsgTokenNotFound       = "Token does not exist"
	MsgTokenAlreadyUsed    = "Token has been used"
	MsgTokenRevoked        = "Token has been revoked"
	MsgRefreshTokenExpired = "Token has expired"
	MsgTokenMismatch       = "Token doesn't match"
	MsgRateLimited         = "Too many login attempts, try again later"
	MsgInternal            = "Internal server error"
)

// RefreshMessage maps a rotation error to its client message.
// Anything unnamed, including internal faults, reads as invalid tokens.
func RefreshMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenNotExpired):
		return MsgTokenNotExpired
	case errors.Is(err, ErrTokenNotFound):
		return MsgTokenNotFound
	case errors.Is(err, ErrTokenAlreadyUsed):
		return MsgTokenAlreadyUsed
	case errors.Is(err, ErrTokenRevoked):
		return MsgTokenRevoked
	case errors.Is(err, ErrRefreshTokenExpired):
		return MsgRefreshTokenExpired
	case errors.Is(err, ErrTokenMismatch):
		return MsgTokenMismatch
	default:
		return MsgInvalidTokens
	}
}

// RegisterRequest is the register payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the request shape.
func (r RegisterRequest) Validate() error {
	if !validEmail(r.Email) || strings.TrimSpace(r.Username) == "" || r.Password == "" {
		return ErrInvalidPayload
	}
	return nil
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request shape.
func (r LoginRequest) Validate() error {
	if !validEmail(r.Email) || r.Password == "" {
		return ErrInvalidPayload
	}
	return nil
}

// RefreshRequest is the token refresh payload.
type RefreshRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Validate checks the request shape.
func (r RefreshRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" || strings.TrimSpace(r.RefreshToken) == "" {
		return ErrInvalidPayload
	}
	return nil
}

// RevokeRequest is the refresh token revocation payload.
type RevokeRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate checks the request shape.
func (r RevokeRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return ErrInvalidPayload
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
