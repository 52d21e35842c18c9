package password

import (
	"strings"
	"testing"
)

func fastArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestArgon2HashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if !hasher.Verify("P@ssw0rd-Ascii", hash) {
		t.Fatal("expected password verification to succeed")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestArgon2VerifyMalformedDigest(t *testing.T) {
	hasher, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	for _, digest := range []string{
		"",
		"plain-text",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
	} {
		if hasher.Verify("whatever-password", digest) {
			t.Fatalf("expected malformed digest %q to fail verification", digest)
		}
	}
}

func TestArgon2RejectsWeakConfig(t *testing.T) {
	cfg := fastArgon2Config()
	cfg.Memory = 1024
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected low memory config to be rejected")
	}

	cfg = fastArgon2Config()
	cfg.SaltLength = 8
	if _, err := NewArgon2(cfg); err == nil {
		t.Fatal("expected short salt config to be rejected")
	}
}

func TestArgon2RejectsShortPassword(t *testing.T) {
	hasher, err := NewArgon2(fastArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}
	if _, err := hasher.Hash("short"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}
