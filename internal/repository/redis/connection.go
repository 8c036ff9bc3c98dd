package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Connection wraps the go-redis client.
type Connection struct {
	Client redis.UniversalClient
}

// NewConnection connects to Redis and verifies the server answers.
func NewConnection(ctx context.Context, addr, password string, db int) (*Connection, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Connection{Client: client}, nil
}

// Close closes the client.
func (c *Connection) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// Ping verifies Redis connectivity.
func (c *Connection) Ping(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return errors.New("redis client not configured")
	}
	return c.Client.Ping(ctx).Err()
}
