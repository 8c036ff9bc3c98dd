// Package redis stores refresh tokens in Redis hashes.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/tokenkeeper/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenStore)(nil)

// Records outlive their expiry date so a late refresh reports expiry rather than absence.
const expiredRetention = 24 * time.Hour

const (
	markStatusMissing int64 = 0
	markStatusTaken   int64 = 1
	markStatusMarked  int64 = 2
)

// KEYS[1] = token key
var markUsedLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local flags = redis.call("HMGET", KEYS[1], "is_used", "is_revoked")
if flags[1] == "1" or flags[2] == "1" then
  return 1
end
redis.call("HSET", KEYS[1], "is_used", "1")
return 2
`)

// KEYS[1] = token key
var revokeLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "is_revoked", "1")
return 1
`)

// KEYS[1] = user index key
// ARGV[1] = token key prefix
var revokeAllLua = redis.NewScript(`
local members = redis.call("SMEMBERS", KEYS[1])
for _, digest in ipairs(members) do
  local key = ARGV[1] .. digest
  if redis.call("EXISTS", key) == 1 then
    redis.call("HSET", key, "is_revoked", "1")
  else
    redis.call("SREM", KEYS[1], digest)
  end
end
return #members
`)

type record struct {
	ID         string `redis:"id"`
	JwtID      string `redis:"jwt_id"`
	UserID     string `redis:"user_id"`
	IsUsed     bool   `redis:"is_used"`
	IsRevoked  bool   `redis:"is_revoked"`
	AddedDate  int64  `redis:"added_date"`
	ExpiryDate int64  `redis:"expiry_date"`
}

// RefreshTokenStore keeps one hash per token, keyed by the token digest,
// and a set per user listing that user's token digests.
type RefreshTokenStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRefreshTokenStore creates a store using prefix as the key namespace.
func NewRefreshTokenStore(client redis.UniversalClient, prefix string) *RefreshTokenStore {
	if prefix == "" {
		prefix = "tk"
	}
	return &RefreshTokenStore{redis: client, prefix: prefix}
}

func (s *RefreshTokenStore) tokenPrefix() string {
	return s.prefix + ":rt:"
}

func (s *RefreshTokenStore) key(token string) string {
	return s.tokenPrefix() + model.HashRefreshToken(token)
}

func (s *RefreshTokenStore) userKey(userID uuid.UUID) string {
	return s.prefix + ":rtu:" + userID.String()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (s *RefreshTokenStore) Create(ctx context.Context, token model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	key := s.key(token.Token)
	userKey := s.userKey(token.UserID)
	expireAt := token.ExpiryDate.Add(expiredRetention)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"id", token.ID.String(),
			"jwt_id", token.JwtID,
			"user_id", token.UserID.String(),
			"is_used", flag(token.IsUsed),
			"is_revoked", flag(token.IsRevoked),
			"added_date", strconv.FormatInt(token.AddedDate.UnixNano(), 10),
			"expiry_date", strconv.FormatInt(token.ExpiryDate.UnixNano(), 10),
		)
		pipe.ExpireAt(ctx, key, expireAt)
		pipe.SAdd(ctx, userKey, model.HashRefreshToken(token.Token))
		pipe.ExpireAt(ctx, userKey, expireAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) GetByToken(ctx context.Context, token string) (model.RefreshToken, error) {
	cmd := s.redis.HGetAll(ctx, s.key(token))
	fields, err := cmd.Result()
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if len(fields) == 0 {
		return model.RefreshToken{}, model.ErrNotFound
	}

	var rec record
	if err := cmd.Scan(&rec); err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to decode refresh token: %w", err)
	}

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to decode refresh token id: %w", err)
	}
	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to decode refresh token owner: %w", err)
	}

	return model.RefreshToken{
		ID:         id,
		Token:      token,
		JwtID:      rec.JwtID,
		UserID:     userID,
		IsUsed:     rec.IsUsed,
		IsRevoked:  rec.IsRevoked,
		AddedDate:  time.Unix(0, rec.AddedDate).UTC(),
		ExpiryDate: time.Unix(0, rec.ExpiryDate).UTC(),
	}, nil
}

func (s *RefreshTokenStore) MarkUsed(ctx context.Context, token string) error {
	status, err := markUsedLua.Run(ctx, s.redis, []string{s.key(token)}).Int64()
	if err != nil {
		return fmt.Errorf("failed to mark refresh token used: %w", err)
	}
	switch status {
	case markStatusMissing:
		return model.ErrNotFound
	case markStatusTaken:
		return model.ErrTokenAlreadyUsed
	case markStatusMarked:
		return nil
	default:
		return fmt.Errorf("unexpected mark status %d", status)
	}
}

func (s *RefreshTokenStore) Revoke(ctx context.Context, token string) error {
	found, err := revokeLua.Run(ctx, s.redis, []string{s.key(token)}).Int64()
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if found == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *RefreshTokenStore) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	err := revokeAllLua.Run(ctx, s.redis, []string{s.userKey(userID)}, s.tokenPrefix()).Err()
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return nil
}
