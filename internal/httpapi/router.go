package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Engine  *tokenguard.Engine
	Logger  *slog.Logger
	Metrics *Metrics

	// RequestTimeout bounds each request. Zero uses 30s.
	RequestTimeout time.Duration
	// AuthRateLimit caps auth requests per client IP per minute. Zero disables it.
	AuthRateLimit int
	// Production enables the HTTPS redirect.
	Production bool
}

// NewRouter constructs the chi router.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := NewHandler(params.Engine, logger)

	r := chi.NewRouter()
	for _, mw := range middlewareStack(params, logger) {
		r.Use(mw)
	}

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		if params.AuthRateLimit > 0 {
			r.Use(httprate.Limit(params.AuthRateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					Problem(w, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
				}),
			))
		}

		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Guard(params.Engine, middleware.WithErrorWriter(RespondError)))
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})

	return r
}

func middlewareStack(params RouterParams, logger *slog.Logger) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
		SSLRedirect:           params.Production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !params.Production,
	})

	timeout := 30 * time.Second
	if params.RequestTimeout > 0 {
		timeout = params.RequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		chimw.RealIP,
		chimw.RequestID,
		chimw.Recoverer,
		chimw.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					logger.Warn("secure headers blocked request", slog.Any("error", err))
					return
				}
				next.ServeHTTP(w, r)
			})
		},
	}
	if params.Metrics != nil {
		middlewares = append(middlewares, params.Metrics.Middleware)
	}
	return middlewares
}
