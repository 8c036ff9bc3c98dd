// Package limiter throttles repeated failed logins.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/tokenkeeper/internal/model"
)

var _ model.LoginLimiter = (*Login)(nil)

// Login counts failures per email in a fixed window that starts at the first failure.
type Login struct {
	redis    redis.UniversalClient
	prefix   string
	throttle model.LoginThrottle
}

// NewLogin creates a redis-backed login limiter.
func NewLogin(client redis.UniversalClient, prefix string, throttle model.LoginThrottle) *Login {
	if prefix == "" {
		prefix = "tk"
	}
	return &Login{redis: client, prefix: prefix, throttle: throttle}
}

func (l *Login) key(email string) string {
	return l.prefix + ":login:" + strings.ToLower(strings.TrimSpace(email))
}

func (l *Login) Allow(ctx context.Context, email string) error {
	if l.throttle.MaxAttempts <= 0 {
		return nil
	}
	count, err := l.redis.Get(ctx, l.key(email)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to read login attempts: %w", err)
	}
	if count >= int64(l.throttle.MaxAttempts) {
		return model.ErrRateLimited
	}
	return nil
}

func (l *Login) Failure(ctx context.Context, email string) error {
	if l.throttle.MaxAttempts <= 0 {
		return nil
	}
	key := l.key(email)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.throttle.Cooldown).Err(); err != nil {
			return fmt.Errorf("failed to set login cooldown: %w", err)
		}
	}
	return nil
}

func (l *Login) Reset(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// Noop never throttles. It stands in when redis is disabled.
type Noop struct{}

func (Noop) Allow(context.Context, string) error   { return nil }
func (Noop) Failure(context.Context, string) error { return nil }
func (Noop) Reset(context.Context, string) error   { return nil }
