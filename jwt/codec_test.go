package jwt

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCodec(t *testing.T, clock *fakeClock) *Codec {
	t.Helper()
	cfg := Config{SigningMethod: MethodHS256, Secret: testSecret}
	if clock != nil {
		cfg.Now = clock.Now
	}
	c, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	if _, err := NewCodec(Config{SigningMethod: MethodHS256, Secret: []byte("short")}); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
}

func TestNewCodecRejectsUnknownMethod(t *testing.T) {
	if _, err := NewCodec(Config{SigningMethod: "rs256", Secret: testSecret}); err == nil {
		t.Fatal("expected unsupported method to be rejected")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestCodec(t, clock)

	token, err := c.Encode(Claims{
		Type: KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u1",
			ID:        "jti-1",
			ExpiresAt: gjwt.NewNumericDate(clock.Now().Add(time.Minute)),
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected three segments, got %d", len(parts))
	}

	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Subject != "u1" || claims.ID != "jti-1" || claims.Type != KindAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestDecodeClassifiesFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := newTestCodec(t, clock)

	valid, err := c.Encode(Claims{
		Type: KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: gjwt.NewNumericDate(clock.Now().Add(time.Second)),
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	other, err := NewCodec(Config{SigningMethod: MethodHS256, Secret: []byte("ffffffffffffffffffffffffffffffff"), Now: clock.Now})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	forged, err := other.Encode(Claims{
		Type:             KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{Subject: "u1", ExpiresAt: gjwt.NewNumericDate(clock.Now().Add(time.Hour))},
	})
	if err != nil {
		t.Fatalf("encode forged: %v", err)
	}

	if _, err := c.Decode(forged); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if _, err := c.Decode("not-a-token"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := c.Decode(""); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for empty token, got %v", err)
	}

	clock.Advance(2 * time.Second)
	_, err = c.Decode(valid)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("expected expired error to match ErrInvalid")
	}
}

func TestDecodeRejectsWrongAlgorithm(t *testing.T) {
	c := newTestCodec(t, nil)

	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS512, Claims{
		Type:             KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{Subject: "u1", ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute))},
	})
	token, err := tok.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := c.Decode(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected algorithm mismatch to fail signature check, got %v", err)
	}
}

func TestDecodeRejectsNoneAlgorithm(t *testing.T) {
	c := newTestCodec(t, nil)

	tok := gjwt.NewWithClaims(gjwt.SigningMethodNone, Claims{
		Type:             KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{Subject: "u1", ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute))},
	})
	token, err := tok.SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := c.Decode(token); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected none algorithm to be rejected, got %v", err)
	}
}

func TestDecodeRequiresExpiry(t *testing.T) {
	c := newTestCodec(t, nil)

	token, err := c.Encode(Claims{Type: KindAccess, RegisteredClaims: gjwt.RegisteredClaims{Subject: "u1"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := c.Decode(token); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected missing exp to be malformed, got %v", err)
	}
}

func TestDecodeIssuerAudienceAndLeeway(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c, err := NewCodec(Config{
		SigningMethod: MethodHS384,
		Secret:        testSecret,
		Issuer:        "tokenguard",
		Audience:      "api",
		Leeway:        30 * time.Second,
		Now:           clock.Now,
	})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	token, err := c.Encode(Claims{
		Type:             KindAccess,
		RegisteredClaims: gjwt.RegisteredClaims{Subject: "u1", ExpiresAt: gjwt.NewNumericDate(clock.Now().Add(time.Second))},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	clock.Advance(10 * time.Second)
	if _, err := c.Decode(token); err != nil {
		t.Fatalf("expected token within leeway to decode: %v", err)
	}

	strict, err := NewCodec(Config{SigningMethod: MethodHS384, Secret: testSecret, Audience: "other", Now: clock.Now})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	if _, err := strict.Decode(token); err == nil {
		t.Fatal("expected audience mismatch to fail")
	}
}
