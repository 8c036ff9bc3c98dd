package token

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/tokenkeeper/internal/model"
)

func TestJWT_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	claims := model.AccessClaims{UserID: uuid.New(), Email: "a@b.c"}

	encoded, err := j.Encode(claims, 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, encoded.JTI)

	decoded, err := j.Decode(encoded.Value)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, decoded.Claims.UserID)
	assert.Equal(t, claims.Email, decoded.Claims.Email)
	assert.Equal(t, encoded.JTI, decoded.Claims.JTI)
	assert.Equal(t, "HS256", decoded.Algorithm)
	assert.Equal(t, encoded.ExpiresAt.Truncate(time.Second).Unix(), decoded.Claims.ExpiresAt.Unix())
}

func TestJWT_SubjectIsEmail(t *testing.T) {
	j := NewJWT("secret")
	encoded, err := j.Encode(model.AccessClaims{UserID: uuid.New(), Email: "a@b.c"}, time.Minute)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(encoded.Value, claims)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", claims.Subject)
}

func TestJWT_FreshJTIPerToken(t *testing.T) {
	j := NewJWT("secret")
	claims := model.AccessClaims{UserID: uuid.New(), Email: "a@b.c"}

	first, err := j.Encode(claims, time.Minute)
	require.NoError(t, err)
	second, err := j.Encode(claims, time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, first.JTI, second.JTI)
	assert.NotEqual(t, first.Value, second.Value)
}

func TestJWT_Decode_WrongSecret(t *testing.T) {
	encoded, err := NewJWT("secret").Encode(model.AccessClaims{UserID: uuid.New(), Email: "a@b.c"}, time.Minute)
	require.NoError(t, err)

	_, err = NewJWT("other").Decode(encoded.Value)
	require.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestJWT_Decode_Malformed(t *testing.T) {
	_, err := NewJWT("secret").Decode("not-a-token")
	require.ErrorIs(t, err, model.ErrMalformedToken)
}

func TestJWT_Decode_IgnoresExpiration(t *testing.T) {
	j := NewJWT("secret")
	encoded, err := j.Encode(model.AccessClaims{UserID: uuid.New(), Email: "a@b.c"}, -time.Hour)
	require.NoError(t, err)

	decoded, err := j.Decode(encoded.Value)
	require.NoError(t, err)
	assert.True(t, decoded.Claims.ExpiresAt.Before(time.Now()))
}

func TestJWT_Decode_ReportsForeignHMACAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti", ExpiresAt: jwt.NewNumericDate(time.Now())},
		UserID:           uuid.NewString(),
		Email:            "a@b.c",
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	decoded, err := NewJWT("secret").Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, "HS384", decoded.Algorithm)
}

func TestJWT_Decode_RejectsUnsignedToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.NewString()})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWT("secret").Decode(signed)
	require.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestJWT_Decode_BadUserID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "nope"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWT("secret").Decode(signed)
	require.ErrorIs(t, err, model.ErrMalformedToken)
}

func TestJWT_Verify(t *testing.T) {
	j := NewJWT("secret")
	userID := uuid.New()

	valid, err := j.Encode(model.AccessClaims{UserID: userID, Email: "a@b.c"}, time.Minute)
	require.NoError(t, err)
	claims, err := j.Verify(valid.Value)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	expired, err := j.Encode(model.AccessClaims{UserID: userID, Email: "a@b.c"}, -time.Minute)
	require.NoError(t, err)
	_, err = j.Verify(expired.Value)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	hs384 := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		UserID:           userID.String(),
	})
	signed, err := hs384.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = j.Verify(signed)
	require.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestNewRefreshToken(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9]{35}[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		tok, err := NewRefreshToken()
		require.NoError(t, err)
		require.Regexp(t, pattern, tok)

		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestNewRefreshToken_PrefixVaries(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.False(t, strings.HasPrefix(b, a[:refreshRandomLength]))
}
