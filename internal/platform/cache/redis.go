// Package cache opens the Redis client backing the token denylist.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client and pings it.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// NewEmbedded starts an in-process miniredis for local runs. The returned
// cleanup closes both the client and the server.
func NewEmbedded(ctx context.Context) (*redis.Client, func(), error) {
	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("platform/cache: start embedded redis: %w", err)
	}

	client, err := New(ctx, mr.Addr())
	if err != nil {
		mr.Close()
		return nil, nil, err
	}

	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}
