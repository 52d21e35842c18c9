package middleware

import (
	"net/http"

	"github.com/MrEthical07/tokenguard"
)

// Capabilities returns middleware enforcing that the guarded principal holds
// every named capability. It must be mounted under [Guard]. Naming a
// capability that was never declared on the engine fails here, at route
// construction, with [tokenguard.ErrConfigurationFault].
func Capabilities(engine *tokenguard.Engine, required ...string) (func(http.Handler) http.Handler, error) {
	if err := engine.RequireDeclared(required...); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				WriteError(w, tokenguard.ErrInvalidCredentials)
				return
			}

			if err := engine.Authorize(r.Context(), principal, required...); err != nil {
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// RequireCapabilities is like [Capabilities] but panics on a configuration
// fault. Use it when routes are declared at startup.
func RequireCapabilities(engine *tokenguard.Engine, required ...string) func(http.Handler) http.Handler {
	mw, err := Capabilities(engine, required...)
	if err != nil {
		panic(err)
	}
	return mw
}
