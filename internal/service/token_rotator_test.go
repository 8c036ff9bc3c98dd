package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/tokenkeeper/internal/mocks"
	"github.com/dtroode/tokenkeeper/internal/model"
	"github.com/dtroode/tokenkeeper/internal/testutil"
	"github.com/dtroode/tokenkeeper/internal/token"
)

func TestTokenRotator_Rotate_Success(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pair := env.register(t, "a@b.c")
	env.afterAccessExpiry()

	rotated, err := env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, rotated.Success)
	assert.NotEmpty(t, rotated.Token)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.NotEqual(t, pair.Token, rotated.Token)

	old, err := env.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, old.IsUsed)

	fresh, err := env.tokens.GetByToken(ctx, rotated.RefreshToken)
	require.NoError(t, err)
	assert.False(t, fresh.IsUsed)
	assert.Equal(t, old.UserID, fresh.UserID)

	_, err = env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenAlreadyUsed)

	again, err := env.rotator.Rotate(ctx, rotated.Token, rotated.RefreshToken)
	require.NoError(t, err)
	assert.True(t, again.Success)
}

func TestTokenRotator_Rotate_NotExpired(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pair := env.register(t, "a@b.c")

	_, err := env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenNotExpired)

	stored, err := env.tokens.GetByToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed)
}

func TestTokenRotator_Rotate_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("expiry equal to now counts as expired", func(t *testing.T) {
		env := newTestEnv(t)
		pair := env.register(t, "a@b.c")
		decoded, err := env.codec.Decode(pair.Token)
		require.NoError(t, err)

		env.rotator.now = func() time.Time { return decoded.Claims.ExpiresAt }

		res, err := env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("one tick before expiry is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		pair := env.register(t, "a@b.c")
		decoded, err := env.codec.Decode(pair.Token)
		require.NoError(t, err)

		env.rotator.now = func() time.Time { return decoded.Claims.ExpiresAt.Add(-time.Nanosecond) }

		_, err = env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenNotExpired)
	})

	t.Run("comparison ignores the clock's zone", func(t *testing.T) {
		env := newTestEnv(t)
		pair := env.register(t, "a@b.c")
		decoded, err := env.codec.Decode(pair.Token)
		require.NoError(t, err)

		zone := time.FixedZone("UTC+14", 14*60*60)
		env.rotator.now = func() time.Time { return decoded.Claims.ExpiresAt.In(zone).Add(-time.Second) }

		_, err = env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
		require.ErrorIs(t, err, model.ErrTokenNotExpired)
	})
}

func TestTokenRotator_Rotate_UnknownRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register(t, "a@b.c")
	env.afterAccessExpiry()

	fake, err := token.NewRefreshToken()
	require.NoError(t, err)

	_, err = env.rotator.Rotate(context.Background(), pair.Token, fake)
	require.ErrorIs(t, err, model.ErrTokenNotFound)
}

func TestTokenRotator_Rotate_SwappedPairs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	first := env.register(t, "a@b.c")
	second := env.auth.Login(ctx, "a@b.c", testPassword)
	require.True(t, second.Success)
	env.afterAccessExpiry()

	_, err := env.rotator.Rotate(ctx, first.Token, second.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenMismatch)

	stored, err := env.tokens.GetByToken(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.False(t, stored.IsUsed)

	res, err := env.rotator.Rotate(ctx, second.Token, second.RefreshToken)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestTokenRotator_Rotate_Revoked(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pair := env.register(t, "a@b.c")
	require.NoError(t, env.tokens.Revoke(ctx, pair.RefreshToken))
	env.afterAccessExpiry()

	_, err := env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
	require.ErrorIs(t, err, model.ErrTokenRevoked)
}

func TestTokenRotator_Rotate_RefreshTokenExpired(t *testing.T) {
	env := newTestEnv(t)
	pair := env.register(t, "a@b.c")
	env.rotator.now = func() time.Time { return time.Now().Add(testRefreshTTL + time.Hour) }

	_, err := env.rotator.Rotate(context.Background(), pair.Token, pair.RefreshToken)
	require.ErrorIs(t, err, model.ErrRefreshTokenExpired)
}

func TestTokenRotator_Rotate_InvalidAccessToken(t *testing.T) {
	signed := func(t *testing.T, method jwt.SigningMethod, secret string, claims token.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	expired := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		access func(t *testing.T) string
	}{
		{
			name:   "garbage",
			access: func(*testing.T) string { return "not.a.token" },
		},
		{
			name: "foreign secret",
			access: func(t *testing.T) string {
				return signed(t, jwt.SigningMethodHS256, "other", token.Claims{
					RegisteredClaims: jwt.RegisteredClaims{ID: "jti", ExpiresAt: expired},
					UserID:           uuid.NewString(),
				})
			},
		},
		{
			name: "different hmac algorithm",
			access: func(t *testing.T) string {
				return signed(t, jwt.SigningMethodHS512, testSecret, token.Claims{
					RegisteredClaims: jwt.RegisteredClaims{ID: "jti", ExpiresAt: expired},
					UserID:           uuid.NewString(),
				})
			},
		},
		{
			name: "no expiration",
			access: func(t *testing.T) string {
				return signed(t, jwt.SigningMethodHS256, testSecret, token.Claims{
					RegisteredClaims: jwt.RegisteredClaims{ID: "jti"},
					UserID:           uuid.NewString(),
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			pair := env.register(t, "a@b.c")
			env.afterAccessExpiry()

			_, err := env.rotator.Rotate(context.Background(), tt.access(t), pair.RefreshToken)
			require.ErrorIs(t, err, model.ErrInvalidToken)
		})
	}
}

func TestTokenRotator_Rotate_Concurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pair := env.register(t, "a@b.c")
	env.afterAccessExpiry()

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		used      int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.rotator.Rotate(ctx, pair.Token, pair.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrTokenAlreadyUsed):
				used++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, used)
}

// expiredPair signs an already expired access token and the record it pairs with.
func expiredPair(t *testing.T, codec *token.JWT) (string, model.RefreshToken) {
	t.Helper()
	encoded, err := codec.Encode(model.AccessClaims{UserID: uuid.New(), Email: "a@b.c"}, -time.Minute)
	require.NoError(t, err)
	return encoded.Value, model.RefreshToken{
		ID:         uuid.New(),
		Token:      "refresh",
		JwtID:      encoded.JTI,
		UserID:     uuid.New(),
		AddedDate:  time.Now(),
		ExpiryDate: time.Now().Add(time.Hour),
	}
}

func TestTokenRotator_Rotate_LostRace(t *testing.T) {
	codec := token.NewJWT(testSecret)
	access, record := expiredPair(t, codec)

	store := mocks.NewRefreshTokenStore(t)
	store.On("GetByToken", mock.Anything, "refresh").Return(record, nil)
	store.On("MarkUsed", mock.Anything, "refresh").Return(model.ErrTokenAlreadyUsed)
	ids := mocks.NewIdentityStore(t)

	lg := testutil.MakeNoopLogger()
	issuer := NewTokenIssuer(codec, store, testAccessTTL, testRefreshTTL, lg)
	rotator := NewTokenRotator(codec, store, ids, issuer, lg)

	_, err := rotator.Rotate(context.Background(), access, "refresh")
	require.ErrorIs(t, err, model.ErrTokenAlreadyUsed)
}

func TestTokenRotator_Rotate_InternalFaults(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name  string
		setup func(store *mocks.RefreshTokenStore, ids *mocks.IdentityStore, record model.RefreshToken)
	}{
		{
			name: "lookup fails",
			setup: func(store *mocks.RefreshTokenStore, _ *mocks.IdentityStore, _ model.RefreshToken) {
				store.On("GetByToken", mock.Anything, "refresh").Return(model.RefreshToken{}, cause)
			},
		},
		{
			name: "mark used fails",
			setup: func(store *mocks.RefreshTokenStore, _ *mocks.IdentityStore, record model.RefreshToken) {
				store.On("GetByToken", mock.Anything, "refresh").Return(record, nil)
				store.On("MarkUsed", mock.Anything, "refresh").Return(cause)
			},
		},
		{
			name: "owner lookup fails",
			setup: func(store *mocks.RefreshTokenStore, ids *mocks.IdentityStore, record model.RefreshToken) {
				store.On("GetByToken", mock.Anything, "refresh").Return(record, nil)
				store.On("MarkUsed", mock.Anything, "refresh").Return(nil)
				ids.On("FindByID", mock.Anything, record.UserID).Return(model.User{}, cause)
			},
		},
		{
			name: "issuance fails",
			setup: func(store *mocks.RefreshTokenStore, ids *mocks.IdentityStore, record model.RefreshToken) {
				store.On("GetByToken", mock.Anything, "refresh").Return(record, nil)
				store.On("MarkUsed", mock.Anything, "refresh").Return(nil)
				ids.On("FindByID", mock.Anything, record.UserID).Return(model.User{ID: record.UserID}, nil)
				store.On("Create", mock.Anything, mock.Anything).Return(cause)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := token.NewJWT(testSecret)
			access, record := expiredPair(t, codec)
			store := mocks.NewRefreshTokenStore(t)
			ids := mocks.NewIdentityStore(t)
			tt.setup(store, ids, record)

			lg := testutil.MakeNoopLogger()
			issuer := NewTokenIssuer(codec, store, testAccessTTL, testRefreshTTL, lg)
			rotator := NewTokenRotator(codec, store, ids, issuer, lg)

			_, err := rotator.Rotate(context.Background(), access, "refresh")
			require.ErrorIs(t, err, model.ErrInternalFault)
			assert.NotErrorIs(t, err, cause)
			assert.NotContains(t, err.Error(), cause.Error())
		})
	}
}
