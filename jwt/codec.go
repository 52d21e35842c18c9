package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod names an HMAC algorithm accepted by [Codec].
type SigningMethod string

const (
	// MethodHS256 signs with HMAC-SHA256.
	MethodHS256 SigningMethod = "hs256"
	// MethodHS384 signs with HMAC-SHA384.
	MethodHS384 SigningMethod = "hs384"
	// MethodHS512 signs with HMAC-SHA512.
	MethodHS512 SigningMethod = "hs512"
)

// MinSecretSize is the smallest signing secret accepted, in bytes (256 bits).
const MinSecretSize = 32

var (
	// ErrInvalid matches every decode failure.
	ErrInvalid = errors.New("invalid token")
	// ErrInvalidSignature is returned when the signature or algorithm does not verify.
	ErrInvalidSignature = fmt.Errorf("%w: signature verification failed", ErrInvalid)
	// ErrExpired is returned when the exp claim is in the past.
	ErrExpired = fmt.Errorf("%w: token expired", ErrInvalid)
	// ErrMalformed is returned when the token or its claims cannot be parsed.
	ErrMalformed = fmt.Errorf("%w: malformed token", ErrInvalid)
)

// Config holds the process-wide signing configuration. It is copied into the
// [Codec] at construction and never mutated afterwards.
type Config struct {
	SigningMethod SigningMethod
	Secret        []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	// Now overrides the clock used for exp/iat checks. Defaults to time.Now.
	Now func() time.Time
}

// Codec signs and verifies [Claims].
//
// Codec is immutable after [NewCodec] and safe for concurrent use.
type Codec struct {
	config Config
	method jwt.SigningMethod
}

// NewCodec validates cfg and returns a Codec bound to it.
func NewCodec(cfg Config) (*Codec, error) {
	method, err := resolveMethod(cfg.SigningMethod)
	if err != nil {
		return nil, err
	}
	if len(cfg.Secret) < MinSecretSize {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretSize)
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.Audience = strings.TrimSpace(cfg.Audience)

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	return &Codec{config: cfg, method: method}, nil
}

// Algorithm returns the JWS alg header value produced by the codec.
func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Now returns the codec clock reading.
func (c *Codec) Now() time.Time {
	return c.config.Now()
}

// Encode signs claims and returns the compact token string. Issuer and
// audience are filled from the configuration when the claims leave them empty.
func (c *Codec) Encode(claims Claims) (string, error) {
	if claims.Issuer == "" && c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}
	if len(claims.Audience) == 0 && c.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{c.config.Audience}
	}

	token := jwt.NewWithClaims(c.method, claims)
	return token.SignedString(c.config.Secret)
}

// Decode verifies tokenStr and returns its claims. Failures are reported as
// [ErrInvalidSignature], [ErrExpired] or [ErrMalformed].
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.config.Now),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}
	if c.config.Audience != "" {
		options = append(options, jwt.WithAudience(c.config.Audience))
	}

	parser := jwt.NewParser(options...)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrMalformed
	}
	// Tokens minted before the type claim existed decode with an empty kind.
	if claims.Type != "" && claims.Type != KindAccess && claims.Type != KindRefresh {
		return nil, ErrMalformed
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}

func resolveMethod(m SigningMethod) (jwt.SigningMethod, error) {
	switch SigningMethod(strings.ToLower(string(m))) {
	case MethodHS256, "":
		return jwt.SigningMethodHS256, nil
	case MethodHS384:
		return jwt.SigningMethodHS384, nil
	case MethodHS512:
		return jwt.SigningMethodHS512, nil
	default:
		return nil, errors.New("unsupported signing method")
	}
}
