package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/tokenkeeper/internal/model"
)

var _ model.TokenCodec = (*JWT)(nil)

// Claims represents access token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// JWT implements TokenCodec backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	method    jwt.SigningMethod
}

// NewJWT creates a new JWT codec with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: []byte(secretKey), method: jwt.SigningMethodHS256}
}

// Algorithm returns the algorithm every token is signed with.
func (j *JWT) Algorithm() string {
	return j.method.Alg()
}

// Encode creates a signed access token with a fresh jti.
func (j *JWT) Encode(claims model.AccessClaims, ttl time.Duration) (model.EncodedToken, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(j.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: claims.UserID.String(),
		Email:  claims.Email,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return model.EncodedToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return model.EncodedToken{Value: tokenString, JTI: jti, ExpiresAt: expiresAt}, nil
}

// Decode verifies the signature and returns claims without checking expiration.
func (j *JWT) Decode(tokenString string) (model.DecodedToken, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return model.DecodedToken{}, classify(err)
	}

	accessClaims, err := toAccessClaims(claims)
	if err != nil {
		return model.DecodedToken{}, err
	}

	return model.DecodedToken{Claims: accessClaims, Algorithm: token.Method.Alg()}, nil
}

// Verify validates an access token for authenticated calls.
func (j *JWT) Verify(tokenString string) (model.AccessClaims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc,
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.AccessClaims{}, fmt.Errorf("access token expired: %w", model.ErrInvalidToken)
		}
		return model.AccessClaims{}, classify(err)
	}

	return toAccessClaims(claims)
}

// keyFunc hands the secret to any HMAC family method; the caller pins the exact one.
func (j *JWT) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
	}
	return j.secretKey, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", model.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", model.ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", model.ErrMalformedToken, err)
	}
}

func toAccessClaims(claims *Claims) (model.AccessClaims, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("%w: bad user id claim", model.ErrMalformedToken)
	}

	out := model.AccessClaims{
		UserID: userID,
		Email:  claims.Email,
		JTI:    claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
