package tokenguard

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/tokenguard/internal/rate"
	"github.com/MrEthical07/tokenguard/jwt"
	"github.com/MrEthical07/tokenguard/password"
	"github.com/MrEthical07/tokenguard/permission"
	"github.com/MrEthical07/tokenguard/revocation"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder is single-use.
//
//	engine, err := tokenguard.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithPrincipalStore(store).
//		Build()
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  PrincipalStore
	clock  Clock
	logger *slog.Logger

	capabilities []string

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the denylist and the login throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrincipalStore sets the principal and role persistence.
func (b *Builder) WithPrincipalStore(store PrincipalStore) *Builder {
	b.store = store
	return b
}

// WithClock overrides the time source used for issuing, decoding and revoking.
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithLogger sets the structured logger. Without one the engine is silent.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCapabilities declares the capability names routes may require.
// [Engine.RequireDeclared] rejects names outside this list.
func (b *Builder) WithCapabilities(names ...string) *Builder {
	b.capabilities = append(b.capabilities, names...)
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validation latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns an immutable Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.store == nil {
		return nil, errors.New("principal store required")
	}

	clock := b.clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// -------- CAPABILITY REGISTRY --------
	registry := permission.NewRegistry()
	for _, name := range b.capabilities {
		if err := registry.Register(name); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	// -------- TOKENS --------
	codec, err := jwt.NewCodec(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cloneBytes(cfg.JWT.SigningSecret),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		Now:           clock.Now,
	})
	if err != nil {
		return nil, err
	}
	issuer, err := jwt.NewIssuer(codec, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		return nil, err
	}

	// -------- PASSWORDS --------
	hasher, err := newHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		clock:    clock,
		logger:   logger,
		redis:    b.redis,
		store:    b.store,
		codec:    codec,
		issuer:   issuer,
		hasher:   hasher,
		registry: registry,
		metrics:  NewMetrics(cfg.Metrics),
	}

	engine.revocation = revocation.New(revocation.NewRedisKV(b.redis), codec, revocation.Config{
		Prefix:  cfg.Revocation.Prefix,
		Timeout: cfg.Revocation.StoreTimeout,
		Leeway:  cfg.JWT.Leeway,
		Now:     clock.Now,
	})

	if cfg.Security.EnableLoginThrottle {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration: cfg.Security.LoginCooldownDuration,
		})
	}

	engine.flows = engine.buildFlowDeps()

	b.built = true

	return engine, nil
}

func newHasher(cfg PasswordConfig) (*password.Multi, error) {
	argonCfg := password.DefaultArgon2Config()
	if cfg.Algorithm == "argon2id" {
		argonCfg = password.Argon2Config{
			Memory:      cfg.Memory,
			Time:        cfg.Time,
			Parallelism: cfg.Parallelism,
			SaltLength:  cfg.SaltLength,
			KeyLength:   cfg.KeyLength,
		}
	}
	argon, err := password.NewArgon2(argonCfg)
	if err != nil {
		return nil, err
	}

	bcryptCost := cfg.BcryptCost
	if cfg.Algorithm != "bcrypt" {
		bcryptCost = 0
	}
	bc, err := password.NewBcrypt(bcryptCost)
	if err != nil {
		return nil, err
	}

	multi := &password.Multi{Bcrypt: bc, Argon2: argon, Primary: bc}
	if cfg.Algorithm == "argon2id" {
		multi.Primary = argon
	}
	return multi, nil
}
