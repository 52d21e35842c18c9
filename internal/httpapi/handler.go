package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/middleware"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 16

// Handler serves the auth routes.
type Handler struct {
	engine    *tokenguard.Engine
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler builds a Handler. A nil logger discards output.
func NewHandler(engine *tokenguard.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		engine:    engine,
		logger:    logger,
		validator: validator.New(),
	}
}

type signupForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshForm struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type principalResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	IsActive    bool           `json:"is_active"`
	IsSuperuser bool           `json:"is_superuser"`
	RoleID      *string        `json:"role_id"`
	Tokens      *tokenResponse `json:"tokens,omitempty"`
}

func newTokenResponse(p *tokenguard.TokenPair) *tokenResponse {
	if p == nil {
		return nil
	}
	return &tokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, TokenType: p.TokenType}
}

func newPrincipalResponse(p tokenguard.Principal) principalResponse {
	return principalResponse{
		ID:          p.ID,
		Email:       p.Email,
		IsActive:    p.IsActive,
		IsSuperuser: p.IsSuperuser,
		RoleID:      p.RoleID,
	}
}

// Signup registers a principal.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var form signupForm
	if !h.decodeCredentials(w, r, &form.Email, &form.Password, &form) {
		return
	}
	if !h.validate(w, form) {
		return
	}

	res, err := h.engine.Signup(r.Context(), tokenguard.SignupRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		h.respondError(r.Context(), w, "signup", err)
		return
	}

	out := newPrincipalResponse(res.Principal)
	out.Tokens = newTokenResponse(res.Tokens)
	JSON(w, http.StatusCreated, out)
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if !h.decodeCredentials(w, r, &form.Email, &form.Password, &form) {
		return
	}
	if !h.validate(w, form) {
		return
	}

	pair, err := h.engine.Login(withClientIP(r), form.Email, form.Password)
	if err != nil {
		h.respondError(r.Context(), w, "login", err)
		return
	}
	JSON(w, http.StatusOK, newTokenResponse(pair))
}

// Refresh exchanges a refresh token for a new pair. The token is read from
// the Authorization header, or from a JSON body when the header is absent.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		var form refreshForm
		if r.Body != nil {
			_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&form)
		}
		token = strings.TrimSpace(form.RefreshToken)
	}
	if token == "" {
		RespondError(w, tokenguard.ErrInvalidCredentials)
		return
	}

	pair, err := h.engine.Refresh(r.Context(), token)
	if err != nil {
		h.respondError(r.Context(), w, "refresh", err)
		return
	}
	JSON(w, http.StatusOK, newTokenResponse(pair))
}

// Logout revokes the presented token. It runs behind the guard, so only a
// live token reaches it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		RespondError(w, tokenguard.ErrInvalidCredentials)
		return
	}

	if err := h.engine.Logout(r.Context(), token); err != nil {
		h.respondError(r.Context(), w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the guarded principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		RespondError(w, tokenguard.ErrInvalidCredentials)
		return
	}
	JSON(w, http.StatusOK, newPrincipalResponse(principal))
}

// Health reports Redis reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeCredentials fills email and password from a form body (field
// "username" or "email") or from a JSON body into target.
func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request, email, password *string, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			Problem(w, http.StatusBadRequest, "Bad Request", "Malformed form body")
			return false
		}
		*email = r.PostFormValue("username")
		if *email == "" {
			*email = r.PostFormValue("email")
		}
		*password = r.PostFormValue("password")
	default:
		if err := json.NewDecoder(r.Body).Decode(target); err != nil {
			Problem(w, http.StatusBadRequest, "Bad Request", "Malformed JSON body")
			return false
		}
	}
	*email = strings.TrimSpace(*email)
	return true
}

func (h *Handler) validate(w http.ResponseWriter, form any) bool {
	err := h.validator.Struct(form)
	if err == nil {
		return true
	}

	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			fields[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
		}
	}
	writeProblem(w, ProblemDetail{
		Title:  "Validation Failed",
		Status: http.StatusUnprocessableEntity,
		Errors: fields,
	})
	return false
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, tokenguard.ErrConfigurationFault):
		h.logger.ErrorContext(ctx, "request failed on configuration fault", slog.String("op", op), slog.Any("error", err))
	case errors.Is(err, tokenguard.ErrUnavailable):
		h.logger.WarnContext(ctx, "backend unavailable", slog.String("op", op), slog.Any("error", err))
	case middleware.StatusFor(err) == http.StatusInternalServerError:
		h.logger.ErrorContext(ctx, "request failed", slog.String("op", op), slog.Any("error", err))
	}
	RespondError(w, err)
}

func withClientIP(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return tokenguard.WithClientIP(r.Context(), host)
}
