package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/tokenguard"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the result stored by [Guard].
func AuthResultFromContext(ctx context.Context) (*tokenguard.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*tokenguard.AuthResult)
	return res, ok
}

// PrincipalFromContext returns the principal validated by [Guard].
func PrincipalFromContext(ctx context.Context) (tokenguard.Principal, bool) {
	res, ok := AuthResultFromContext(ctx)
	if !ok || res == nil {
		return tokenguard.Principal{}, false
	}
	return res.Principal, true
}

// WithAuthResult stores res the way [Guard] does. Handlers under test can use
// it to skip token validation.
func WithAuthResult(ctx context.Context, res *tokenguard.AuthResult) context.Context {
	return context.WithValue(ctx, authResultContextKey{}, res)
}

// ErrorWriter renders a rejection. [WriteError] is the default.
type ErrorWriter func(w http.ResponseWriter, err error)

// GuardOption customizes [Guard].
type GuardOption func(*guardOptions)

type guardOptions struct {
	writeError ErrorWriter
}

// WithErrorWriter replaces the plain-text rejection writer, e.g. with one
// that renders problem documents.
func WithErrorWriter(fn ErrorWriter) GuardOption {
	return func(o *guardOptions) {
		if fn != nil {
			o.writeError = fn
		}
	}
}

// Guard rejects requests without a valid bearer token.
func Guard(engine *tokenguard.Engine, opts ...GuardOption) func(http.Handler) http.Handler {
	o := guardOptions{writeError: WriteError}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				o.writeError(w, tokenguard.ErrEngineNotReady)
				return
			}

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				o.writeError(w, tokenguard.ErrInvalidCredentials)
				return
			}

			res, err := engine.Validate(r.Context(), token)
			if err != nil {
				o.writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthResult(r.Context(), res)))
		})
	}
}

// BearerToken extracts the credential from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
