package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenCodec encodes and decodes signed access tokens.
type TokenCodec interface {
	// Encode signs a fresh access token that expires ttl from now.
	Encode(claims AccessClaims, ttl time.Duration) (EncodedToken, error)
	// Decode checks the signature but leaves expiration to the caller.
	Decode(token string) (DecodedToken, error)
	// Verify fully validates an access token, expiration included.
	Verify(token string) (AccessClaims, error)
	// Algorithm names the single algorithm tokens are signed with.
	Algorithm() string
}

// AccessClaims are the identity claims carried by an access token.
type AccessClaims struct {
	UserID    uuid.UUID
	Email     string
	JTI       string
	ExpiresAt time.Time
}

// EncodedToken is a freshly signed access token.
type EncodedToken struct {
	Value     string
	JTI       string
	ExpiresAt time.Time
}

// DecodedToken is a token whose signature checked out.
type DecodedToken struct {
	Claims    AccessClaims
	Algorithm string
}
