package middleware

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/tokenguard"
)

// StatusFor maps an engine error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, tokenguard.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, tokenguard.ErrNoRole),
		errors.Is(err, tokenguard.ErrInsufficientPermissions):
		return http.StatusForbidden
	case errors.Is(err, tokenguard.ErrConflictingIdentity):
		return http.StatusBadRequest
	case errors.Is(err, tokenguard.ErrSignupInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tokenguard.ErrLoginRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, tokenguard.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a plain-text error response. Internal details never
// reach the client.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	http.Error(w, statusMessage(status), status)
}

func statusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "could not validate credentials"
	case http.StatusForbidden:
		return "insufficient permissions"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	default:
		return http.StatusText(status)
	}
}
