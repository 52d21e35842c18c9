package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/tokenguard/jwt"
)

// ErrUnavailable indicates the backing store failed or timed out.
var ErrUnavailable = errors.New("revocation store unavailable")

const (
	// DefaultPrefix namespaces denylist keys.
	DefaultPrefix = "blacklist"
	marker        = "true"
)

// KV is the minimal key-expiry store the denylist needs.
type KV interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// SetIfAbsent writes key only when it does not exist and reports whether
	// this call created it.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
}

// Decoder verifies a token and returns its claims.
type Decoder interface {
	Decode(token string) (*jwt.Claims, error)
}

// Config tunes a [Store].
type Config struct {
	Prefix  string
	Timeout time.Duration
	// Leeway must match the codec's expiry leeway: a token decodes until
	// exp+Leeway, so its entry has to live that long too.
	Leeway  time.Duration
	Now     func() time.Time
}

// Store records revoked tokens until their natural expiry.
//
// Store holds no mutable state of its own; concurrent Revoke and IsRevoked
// calls for the same token rely on single-key write atomicity of the KV.
type Store struct {
	kv      KV
	decoder Decoder
	prefix  string
	timeout time.Duration
	leeway  time.Duration
	now     func() time.Time
}

// New returns a Store writing through kv and decoding with decoder.
func New(kv KV, decoder Decoder, cfg Config) *Store {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		kv:      kv,
		decoder: decoder,
		prefix:  cfg.Prefix,
		timeout: cfg.Timeout,
		leeway:  cfg.Leeway,
		now:     cfg.Now,
	}
}

// Key returns the denylist key for a token: its jti when present, else the
// raw token string.
func (s *Store) Key(jti, rawToken string) string {
	if jti != "" {
		return s.prefix + ":" + jti
	}
	return s.prefix + ":" + rawToken
}

// Revoke denylists token for the remainder of its validity window.
//
// Tokens that fail to decode, or whose expiry has already passed, are
// ignored: the codec rejects them upstream, so storing them gains nothing.
// Revoking twice rewrites the same key and is harmless.
func (s *Store) Revoke(ctx context.Context, token string) error {
	claims, err := s.decoder.Decode(token)
	if err != nil {
		return nil
	}
	return s.RevokeClaims(ctx, claims, token)
}

// RevokeClaims denylists an already-decoded token.
func (s *Store) RevokeClaims(ctx context.Context, claims *jwt.Claims, rawToken string) error {
	remaining, ok := s.remaining(claims)
	if !ok {
		return nil
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.kv.SetWithTTL(ctx, s.Key(claims.ID, rawToken), marker, remaining); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ClaimClaims denylists a decoded token only if no entry exists yet. It
// reports false when another caller revoked the token first, so exactly one
// of several concurrent claims on the same token wins.
func (s *Store) ClaimClaims(ctx context.Context, claims *jwt.Claims, rawToken string) (bool, error) {
	remaining, ok := s.remaining(claims)
	if !ok {
		return false, nil
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	created, err := s.kv.SetIfAbsent(ctx, s.Key(claims.ID, rawToken), marker, remaining)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return created, nil
}

// AcceptedUntil is the last instant the codec still accepts claims.
func (s *Store) AcceptedUntil(claims *jwt.Claims) time.Time {
	return claims.ExpiresAtTime().Add(s.leeway)
}

func (s *Store) remaining(claims *jwt.Claims) (time.Duration, bool) {
	if claims == nil || claims.ExpiresAt == nil {
		return 0, false
	}
	remaining := s.AcceptedUntil(claims).Sub(s.now())
	return remaining, remaining > 0
}

// IsRevoked reports whether token is denylisted. Tokens that cannot be
// decoded are looked up by their raw string.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	jti := ""
	if claims, err := s.decoder.Decode(token); err == nil {
		jti = claims.ID
	}
	return s.IsRevokedKey(ctx, jti, token)
}

// IsRevokedKey checks the denylist entry for jti, or rawToken when jti is empty.
func (s *Store) IsRevokedKey(ctx context.Context, jti, rawToken string) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	_, found, err := s.kv.Get(ctx, s.Key(jti, rawToken))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return found, nil
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
