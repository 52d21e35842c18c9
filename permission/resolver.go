package permission

import "errors"

var (
	// ErrNoRole is returned when a non-superuser principal has no role.
	ErrNoRole = errors.New("no role assigned")
	// ErrInsufficientPermissions is returned when the role lacks a required capability.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// Grant is what the caller knows about a principal's authority after role
// resolution.
type Grant struct {
	Superuser    bool
	HasRole      bool
	Capabilities Set
}

// Authorize decides whether g satisfies required.
//
// Superusers are always accepted, even without a role. Otherwise a role is
// mandatory and every required capability must be present.
func Authorize(g Grant, required Set) error {
	if g.Superuser {
		return nil
	}
	if !g.HasRole {
		return ErrNoRole
	}
	for name := range required {
		if !g.Capabilities.Has(name) {
			return ErrInsufficientPermissions
		}
	}
	return nil
}
