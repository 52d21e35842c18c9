package tokenguard

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.SigningSecret = []byte(strings.Repeat("k", 32))
	return cfg
}

func TestDefaultConfigNeedsSecret(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing secret to fail validation")
	}

	cfg = validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.JWT.AccessTTL != 15*time.Minute || cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected TTLs %v / %v", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	}
	if cfg.Revocation.Prefix != "blacklist" || cfg.Revocation.StoreTimeout != 2*time.Second {
		t.Fatalf("unexpected revocation config %+v", cfg.Revocation)
	}
	if !cfg.Security.RequireRefreshKind || !cfg.Security.RejectInactive {
		t.Fatal("security defaults must be strict")
	}
	if cfg.Account.DefaultRole != "user" {
		t.Fatalf("unexpected default role %q", cfg.Account.DefaultRole)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"short secret":       func(c *Config) { c.JWT.SigningSecret = []byte("short") },
		"unknown method":     func(c *Config) { c.JWT.SigningMethod = "rs256" },
		"zero access ttl":    func(c *Config) { c.JWT.AccessTTL = 0 },
		"refresh < access":   func(c *Config) { c.JWT.RefreshTTL = time.Minute },
		"negative leeway":    func(c *Config) { c.JWT.Leeway = -time.Second },
		"huge leeway":        func(c *Config) { c.JWT.Leeway = time.Hour },
		"empty prefix":       func(c *Config) { c.Revocation.Prefix = " " },
		"zero store timeout": func(c *Config) { c.Store.Timeout = 0 },
		"zero revoke ttl":    func(c *Config) { c.Revocation.StoreTimeout = 0 },
		"bad algorithm":   func(c *Config) { c.Password.Algorithm = "md5" },
		"bcrypt cost":     func(c *Config) { c.Password.BcryptCost = 99 },
		"weak argon2": func(c *Config) {
			c.Password.Algorithm = "argon2id"
			c.Password.Memory = 1024
		},
		"no default role": func(c *Config) { c.Account.DefaultRole = "" },
		"throttle budget": func(c *Config) { c.Security.MaxLoginAttempts = 0 },
		"histograms only": func(c *Config) { c.Metrics.EnableLatencyHistograms = true },
	}

	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestConfigValidateAcceptsVariants(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.SigningMethod = "HS512"
	cfg.Password.Algorithm = "argon2id"
	cfg.Security.EnableLoginThrottle = false
	cfg.Security.MaxLoginAttempts = 0
	cfg.Account.Enabled = false
	cfg.Account.DefaultRole = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestCloneConfigCopiesSecret(t *testing.T) {
	cfg := validConfig()
	clone := cloneConfig(cfg)
	cfg.JWT.SigningSecret[0] = 'x'

	if clone.JWT.SigningSecret[0] != 'k' {
		t.Fatal("clone must not share the secret backing array")
	}
}
