package tokenguard

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/tokenguard/jwt"
	"github.com/MrEthical07/tokenguard/password"
	"golang.org/x/crypto/bcrypt"
)

// Config is the engine configuration. It is copied at [Builder.Build] and
// never mutated afterwards.
type Config struct {
	JWT        JWTConfig
	Revocation RevocationConfig
	Store      StoreConfig
	Password   PasswordConfig
	Account    AccountConfig
	Security   SecurityConfig
	Metrics    MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds the process-wide signing configuration.
type JWTConfig struct {
	SigningMethod string // "hs256" (default), "hs384", "hs512"
	SigningSecret []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig tunes the token denylist.
type RevocationConfig struct {
	Prefix       string
	StoreTimeout time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig bounds calls into the [PrincipalStore].
type StoreConfig struct {
	Timeout time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects and tunes the credential hasher. Verification
// accepts both bcrypt and argon2id digests regardless of Algorithm.
type PasswordConfig struct {
	Algorithm  string // "bcrypt" (default) or "argon2id"
	BcryptCost int

	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig controls signup.
type AccountConfig struct {
	Enabled     bool
	DefaultRole string
	AutoLogin   bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig holds the policy switches.
type SecurityConfig struct {
	// RequireRefreshKind rejects access tokens presented to Refresh.
	RequireRefreshKind bool
	// RotateRefreshTokens revokes the presented refresh token on every refresh.
	RotateRefreshTokens bool
	// RejectInactive treats inactive principals as unknown at login and validation.
	RejectInactive bool

	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the recommended configuration. SigningSecret is left
// empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SigningMethod: string(jwt.MethodHS256),
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Revocation: RevocationConfig{
			Prefix:       "blacklist",
			StoreTimeout: 2 * time.Second,
		},
		Store: StoreConfig{
			Timeout: 2 * time.Second,
		},
		Password: PasswordConfig{
			Algorithm:   "bcrypt",
			BcryptCost:  password.DefaultBcryptCost,
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Account: AccountConfig{
			Enabled:     true,
			DefaultRole: "user",
		},
		Security: SecurityConfig{
			RequireRefreshKind:    true,
			RotateRefreshTokens:   true,
			RejectInactive:        true,
			EnableLoginThrottle:   true,
			EnableIPThrottle:      true,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.SigningSecret = cloneBytes(cfg.JWT.SigningSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first configuration invariant that does not hold.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	// JWT
	switch jwt.SigningMethod(strings.ToLower(c.JWT.SigningMethod)) {
	case jwt.MethodHS256, jwt.MethodHS384, jwt.MethodHS512:
	default:
		return errors.New("JWT SigningMethod must be hs256, hs384 or hs512")
	}
	if len(c.JWT.SigningSecret) < jwt.MinSecretSize {
		return errors.New("JWT SigningSecret must be at least 32 bytes")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Revocation
	if strings.TrimSpace(c.Revocation.Prefix) == "" {
		return errors.New("Revocation Prefix must not be empty")
	}
	if c.Revocation.StoreTimeout <= 0 {
		return errors.New("Revocation StoreTimeout must be > 0")
	}

	// Store
	if c.Store.Timeout <= 0 {
		return errors.New("Store Timeout must be > 0")
	}

	// Password
	switch c.Password.Algorithm {
	case "bcrypt":
		if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
			return errors.New("Password BcryptCost out of range")
		}
	case "argon2id":
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 {
			return errors.New("Password Time must be >= 1")
		}
		if c.Password.Parallelism < 1 {
			return errors.New("Password Parallelism must be >= 1")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("Password SaltLength must be >= 16")
		}
		if c.Password.KeyLength < 16 {
			return errors.New("Password KeyLength must be >= 16")
		}
	default:
		return errors.New("Password Algorithm must be 'bcrypt' or 'argon2id'")
	}

	// Account
	if c.Account.Enabled && strings.TrimSpace(c.Account.DefaultRole) == "" {
		return errors.New("Account DefaultRole is required when account creation is enabled")
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("LoginCooldownDuration must be > 0")
		}
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
