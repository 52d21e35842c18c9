package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg), mr
}

func TestLoginThrottleBlocksAfterBudget(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
			t.Fatalf("attempt %d: unexpected %v", i, err)
		}
		_ = l.IncrementLogin(ctx, "a@x.com", "")
	}

	if err := l.CheckLogin(ctx, "a@x.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if ttl := mr.TTL("al:a@x.com"); ttl != time.Minute {
		t.Fatalf("expected fixed-window ttl 1m, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if err := l.CheckLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("expected window reset, got %v", err)
	}
}

func TestLoginThrottleByIP(t *testing.T) {
	l, _ := newTestLimiter(t, Config{EnableIPThrottle: true, MaxLoginAttempts: 2, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "a@x.com", "10.0.0.1")
	_ = l.IncrementLogin(ctx, "b@x.com", "10.0.0.1")

	if err := l.CheckLogin(ctx, "c@x.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ip throttle, got %v", err)
	}
	if err := l.CheckLogin(ctx, "c@x.com", "10.0.0.2"); err != nil {
		t.Fatalf("other ip should pass, got %v", err)
	}
}

func TestResetLoginClearsCounters(t *testing.T) {
	l, _ := newTestLimiter(t, Config{MaxLoginAttempts: 5, LoginCooldownDuration: time.Minute})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "a@x.com", "")
	_ = l.IncrementLogin(ctx, "a@x.com", "")
	if n, _ := l.LoginAttempts(ctx, "a@x.com"); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}

	if err := l.ResetLogin(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n, _ := l.LoginAttempts(ctx, "a@x.com"); n != 0 {
		t.Fatalf("expected 0 attempts, got %d", n)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, Config{MaxLoginAttempts: 5, LoginCooldownDuration: time.Minute})
	mr.Close()

	if err := l.CheckLogin(context.Background(), "a@x.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
