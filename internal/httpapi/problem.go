package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/middleware"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string            `json:"type,omitempty"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, ProblemDetail{Title: title, Status: status, Detail: detail})
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// RespondError maps engine errors to problem responses. Details of internal
// failures never reach the client.
func RespondError(w http.ResponseWriter, err error) {
	status := middleware.StatusFor(err)
	switch {
	case errors.Is(err, tokenguard.ErrInvalidCredentials):
		Problem(w, status, "Unauthorized", "Could not validate credentials")
	case errors.Is(err, tokenguard.ErrNoRole):
		Problem(w, status, "Forbidden", "No role assigned")
	case errors.Is(err, tokenguard.ErrInsufficientPermissions):
		Problem(w, status, "Forbidden", "Not enough permissions")
	case errors.Is(err, tokenguard.ErrConflictingIdentity):
		Problem(w, status, "Bad Request", "Email already registered")
	case errors.Is(err, tokenguard.ErrSignupInvalid):
		Problem(w, status, "Validation Failed", "Invalid email or password")
	case errors.Is(err, tokenguard.ErrLoginRateLimited):
		Problem(w, status, "Too Many Requests", "Too many login attempts")
	case errors.Is(err, tokenguard.ErrUnavailable):
		Problem(w, status, "Service Unavailable", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
