package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/tokenkeeper/internal/model"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	saved, err := store.Create(ctx, model.User{Email: "Alice@Example.com", Username: "alice"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	byEmail, err := store.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)
	assert.Equal(t, "Alice@Example.com", byEmail.Email)

	byID, err := store.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = store.Create(ctx, model.User{Email: "ALICE@example.com"})
	require.ErrorIs(t, err, model.ErrEmailInUse)

	_, err = store.GetByEmail(ctx, "bob@example.com")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = store.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRefreshTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshTokenStore()
	owner := uuid.New()
	rt := model.RefreshToken{
		Token:      "raw",
		JwtID:      "jti",
		UserID:     owner,
		AddedDate:  time.Now(),
		ExpiryDate: time.Now().Add(time.Hour),
	}

	require.NoError(t, store.Create(ctx, rt))

	got, err := store.GetByToken(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, "jti", got.JwtID)
	assert.NotEqual(t, uuid.Nil, got.ID)

	_, err = store.GetByToken(ctx, "other")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, store.MarkUsed(ctx, "raw"))
	require.ErrorIs(t, store.MarkUsed(ctx, "raw"), model.ErrTokenAlreadyUsed)
	require.ErrorIs(t, store.MarkUsed(ctx, "other"), model.ErrNotFound)

	got, err = store.GetByToken(ctx, "raw")
	require.NoError(t, err)
	assert.True(t, got.IsUsed)
}

func TestRefreshTokenStore_Revoke(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshTokenStore()
	owner, other := uuid.New(), uuid.New()

	require.NoError(t, store.Create(ctx, model.RefreshToken{Token: "a", UserID: owner}))
	require.NoError(t, store.Create(ctx, model.RefreshToken{Token: "b", UserID: owner}))
	require.NoError(t, store.Create(ctx, model.RefreshToken{Token: "c", UserID: other}))

	require.NoError(t, store.Revoke(ctx, "a"))
	require.ErrorIs(t, store.MarkUsed(ctx, "a"), model.ErrTokenAlreadyUsed)
	require.ErrorIs(t, store.Revoke(ctx, "missing"), model.ErrNotFound)

	require.NoError(t, store.RevokeAllByUser(ctx, owner))
	b, err := store.GetByToken(ctx, "b")
	require.NoError(t, err)
	assert.True(t, b.IsRevoked)

	c, err := store.GetByToken(ctx, "c")
	require.NoError(t, err)
	assert.False(t, c.IsRevoked)
}

func TestRefreshTokenStore_MarkUsedConcurrently(t *testing.T) {
	ctx := context.Background()
	store := NewRefreshTokenStore()
	require.NoError(t, store.Create(ctx, model.RefreshToken{Token: "raw", UserID: uuid.New()}))

	const workers = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.MarkUsed(ctx, "raw")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, model.ErrTokenAlreadyUsed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}
