package app

import (
	"errors"
	"time"

	"github.com/MrEthical07/tokenguard"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the server binary.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout   time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// PGDSN selects the PostgreSQL principal store. Empty runs in memory.
	PGDSN string `envconfig:"PG_DSN"`
	// RedisAddr selects the denylist backend. Empty starts an embedded miniredis.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTSigningMethod string        `envconfig:"JWT_SIGNING_METHOD" default:"hs256"`
	JWTIssuer        string        `envconfig:"JWT_ISSUER"`
	AccessTTL        time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTTL       time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`
	DefaultRole string `envconfig:"DEFAULT_ROLE" default:"user"`
	AutoLogin   bool   `envconfig:"SIGNUP_AUTO_LOGIN" default:"false"`

	// Capabilities declares every capability name routes may require.
	Capabilities []string `envconfig:"CAPABILITIES" default:"read,write"`
	// DefaultRoleCapabilities seeds the default role when the store lacks it.
	DefaultRoleCapabilities []string `envconfig:"DEFAULT_ROLE_CAPABILITIES" default:"read"`

	LoginThrottle    bool `envconfig:"LOGIN_THROTTLE" default:"true"`
	MaxLoginAttempts int  `envconfig:"MAX_LOGIN_ATTEMPTS" default:"5"`
	RateLimitPerMin  int  `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
	// OTelMetricsExporter pushes engine metrics through OpenTelemetry: none or stdout.
	OTelMetricsExporter string        `envconfig:"OTEL_METRICS_EXPORTER" default:"none"`
	OTelMetricsInterval time.Duration `envconfig:"OTEL_METRICS_INTERVAL" default:"60s"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// EngineConfig maps the environment onto a library configuration.
func (c *Config) EngineConfig() tokenguard.Config {
	cfg := tokenguard.DefaultConfig()
	cfg.JWT.SigningSecret = []byte(c.JWTSecret)
	cfg.JWT.SigningMethod = c.JWTSigningMethod
	cfg.JWT.Issuer = c.JWTIssuer
	cfg.JWT.AccessTTL = c.AccessTTL
	cfg.JWT.RefreshTTL = c.RefreshTTL
	cfg.Password.BcryptCost = c.BcryptCost
	cfg.Account.DefaultRole = c.DefaultRole
	cfg.Account.AutoLogin = c.AutoLogin
	cfg.Security.EnableLoginThrottle = c.LoginThrottle
	cfg.Security.MaxLoginAttempts = c.MaxLoginAttempts
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.MetricsEnabled
	return cfg
}
