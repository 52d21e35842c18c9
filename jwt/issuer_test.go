package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, clock *fakeClock) (*Issuer, *Codec) {
	t.Helper()
	c := newTestCodec(t, clock)
	i, err := NewIssuer(c, 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return i, c
}

func TestIssueAccessRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 500)}
	issuer, codec := newTestIssuer(t, clock)

	ttl := 5 * time.Minute
	token, err := issuer.IssueAccess("subject-1", ttl)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Subject != "subject-1" {
		t.Fatalf("expected subject-1, got %q", claims.Subject)
	}
	if claims.Type != KindAccess {
		t.Fatalf("expected access kind, got %q", claims.Type)
	}
	now := clock.Now()
	exp := claims.ExpiresAtTime()
	if exp.Before(now.Truncate(time.Second)) || exp.After(now.Add(ttl)) {
		t.Fatalf("exp %v outside [%v, %v]", exp, now, now.Add(ttl))
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestIssueRefreshKindAndDefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer, codec := newTestIssuer(t, clock)

	token, err := issuer.IssueRefresh("subject-1", 0)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Type != KindRefresh {
		t.Fatalf("expected refresh kind, got %q", claims.Type)
	}
	if got := claims.ExpiresAtTime().Sub(clock.Now()); got != 7*24*time.Hour {
		t.Fatalf("expected default refresh ttl, got %v", got)
	}
}

func TestIssueProducesDistinctJTI(t *testing.T) {
	issuer, codec := newTestIssuer(t, nil)

	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		token, err := issuer.IssueAccess("same-subject", time.Minute)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		claims, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if _, dup := seen[claims.ID]; dup {
			t.Fatalf("duplicate jti %q", claims.ID)
		}
		seen[claims.ID] = struct{}{}
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	issuer, _ := newTestIssuer(t, nil)
	if _, err := issuer.IssueAccess("", time.Minute); !errors.Is(err, ErrEmptySubject) {
		t.Fatalf("expected ErrEmptySubject, got %v", err)
	}
}

func TestShortLivedTokenExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	issuer, codec := newTestIssuer(t, clock)

	token, err := issuer.IssueAccess("subject-1", time.Second)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clock.Advance(2 * time.Second)

	if _, err := codec.Decode(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}
