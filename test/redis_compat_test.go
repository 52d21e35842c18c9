//go:build integration

package test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/tokenguard"
)

// TestRedisCompat_LogoutRevokesExactlyOneToken validates denylist writes and
// reads across backends.
func TestRedisCompat_LogoutRevokesExactlyOneToken(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine, _ := newIntegrationEngine(t, rdb, nil)
			ctx := context.Background()

			if _, err := engine.Signup(ctx, tokenguard.SignupRequest{Email: "a@x.com", Password: testPassword}); err != nil {
				t.Fatalf("signup: %v", err)
			}
			first, err := engine.Login(ctx, "a@x.com", testPassword)
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			second, err := engine.Login(ctx, "a@x.com", testPassword)
			if err != nil {
				t.Fatalf("login: %v", err)
			}

			if err := engine.Logout(ctx, first.AccessToken); err != nil {
				t.Fatalf("logout: %v", err)
			}
			if _, err := engine.Validate(ctx, first.AccessToken); !errors.Is(err, tokenguard.ErrInvalidCredentials) {
				t.Fatalf("expected revoked token rejected, got %v", err)
			}
			if _, err := engine.Validate(ctx, second.AccessToken); err != nil {
				t.Fatalf("second token should stay valid: %v", err)
			}
		})
	}
}

// TestRedisCompat_DenylistEntryExpires validates the TTL on the written key.
func TestRedisCompat_DenylistEntryExpires(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine, store := newIntegrationEngine(t, rdb, nil)
			ctx := context.Background()

			p := store.Put(tokenguard.Principal{Email: "a@x.com", IsActive: true})
			token, err := engine.IssueAccess(p.ID, time.Minute)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			res, err := engine.Validate(ctx, token)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if err := engine.Logout(ctx, token); err != nil {
				t.Fatalf("logout: %v", err)
			}

			key := "it-blacklist-" + t.Name() + ":" + res.TokenID
			ttl, err := rdb.TTL(ctx, key).Result()
			if err != nil {
				t.Fatalf("ttl: %v", err)
			}
			if ttl <= 0 || ttl > time.Minute {
				t.Fatalf("ttl = %s, want (0, 1m]", ttl)
			}
		})
	}
}

// TestRedisCompat_RevokeIdempotent validates double logout across backends.
func TestRedisCompat_RevokeIdempotent(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine, store := newIntegrationEngine(t, rdb, nil)
			ctx := context.Background()

			p := store.Put(tokenguard.Principal{Email: "a@x.com", IsActive: true})
			token, err := engine.IssueAccess(p.ID, 0)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			for i := 0; i < 2; i++ {
				if err := engine.Logout(ctx, token); err != nil {
					t.Fatalf("logout %d: %v", i, err)
				}
			}
			revoked, err := engine.IsRevoked(ctx, token)
			if err != nil || !revoked {
				t.Fatalf("IsRevoked = %v, %v", revoked, err)
			}
		})
	}
}

// TestRedisCompat_LoginThrottle validates the fixed-window counters across backends.
func TestRedisCompat_LoginThrottle(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine, _ := newIntegrationEngine(t, rdb, func(cfg *tokenguard.Config) {
				cfg.Security.MaxLoginAttempts = 3
				cfg.Security.EnableIPThrottle = false
			})
			ctx := context.Background()
			email := fmt.Sprintf("throttle-%d@x.com", time.Now().UnixNano())

			for i := 0; i < 3; i++ {
				if _, err := engine.Login(ctx, email, "wrong"); !errors.Is(err, tokenguard.ErrInvalidCredentials) {
					t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
				}
			}
			if _, err := engine.Login(ctx, email, "wrong"); !errors.Is(err, tokenguard.ErrLoginRateLimited) {
				t.Fatalf("expected ErrLoginRateLimited, got %v", err)
			}
		})
	}
}

// TestRedisCompat_ConcurrentValidateAndLogout exercises the denylist under
// parallel load.
func TestRedisCompat_ConcurrentValidateAndLogout(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			engine, store := newIntegrationEngine(t, rdb, nil)
			ctx := context.Background()

			const n = 64
			tokens := make([]string, n)
			for i := range tokens {
				p := store.Put(tokenguard.Principal{Email: fmt.Sprintf("u%d@x.com", i), IsActive: true})
				token, err := engine.IssueAccess(p.ID, 0)
				if err != nil {
					t.Fatalf("issue: %v", err)
				}
				tokens[i] = token
			}

			var wg sync.WaitGroup
			for i, token := range tokens {
				wg.Add(1)
				go func(i int, token string) {
					defer wg.Done()
					if i%2 == 0 {
						_ = engine.Logout(ctx, token)
						return
					}
					if _, err := engine.Validate(ctx, token); err != nil {
						t.Errorf("validate %d: %v", i, err)
					}
				}(i, token)
			}
			wg.Wait()

			for i, token := range tokens {
				_, err := engine.Validate(ctx, token)
				if i%2 == 0 && !errors.Is(err, tokenguard.ErrInvalidCredentials) {
					t.Fatalf("token %d should be revoked, got %v", i, err)
				}
				if i%2 == 1 && err != nil {
					t.Fatalf("token %d should be valid, got %v", i, err)
				}
			}
		})
	}
}
