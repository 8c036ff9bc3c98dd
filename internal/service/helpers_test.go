package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/tokenkeeper/internal/identity"
	"github.com/dtroode/tokenkeeper/internal/limiter"
	"github.com/dtroode/tokenkeeper/internal/model"
	"github.com/dtroode/tokenkeeper/internal/repository/memory"
	"github.com/dtroode/tokenkeeper/internal/testutil"
	"github.com/dtroode/tokenkeeper/internal/token"
)

const (
	testSecret     = "test-secret"
	testAccessTTL  = 5 * time.Minute
	testRefreshTTL = 24 * time.Hour
	testPassword   = "Passw0rd!"
)

type testEnv struct {
	codec    *token.JWT
	tokens   *memory.RefreshTokenStore
	identity *identity.Store
	issuer   *TokenIssuer
	rotator  *TokenRotator
	auth     *Auth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	lg := testutil.MakeNoopLogger()

	codec := token.NewJWT(testSecret)
	tokens := memory.NewRefreshTokenStore()
	ids := identity.NewStore(memory.NewUserStore(), bcrypt.MinCost)
	issuer := NewTokenIssuer(codec, tokens, testAccessTTL, testRefreshTTL, lg)
	rotator := NewTokenRotator(codec, tokens, ids, issuer, lg)

	return &testEnv{
		codec:    codec,
		tokens:   tokens,
		identity: ids,
		issuer:   issuer,
		rotator:  rotator,
		auth:     NewAuth(ids, tokens, codec, issuer, rotator, limiter.Noop{}, lg),
	}
}

// afterAccessExpiry moves the rotator clock past the access token lifetime.
func (e *testEnv) afterAccessExpiry() {
	e.rotator.now = func() time.Time { return time.Now().Add(testAccessTTL + time.Second) }
}

func (e *testEnv) register(t *testing.T, email string) model.AuthResult {
	t.Helper()
	res := e.auth.Register(context.Background(), email, "user", testPassword)
	require.True(t, res.Success, res.Errors)
	return res
}
