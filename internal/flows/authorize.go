package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/tokenguard/permission"
)

// AuthorizeDeps captures permission-check dependencies.
type AuthorizeDeps struct {
	FindRole     func(ctx context.Context, roleID string) (RoleRecord, error)
	RoleNotFound error
	Unavailable  error

	DeniedMetric int
	Inc          func(int)
}

// RunAuthorize resolves the principal's role and checks required against it.
// A role reference that no longer resolves is treated as no role at all.
func RunAuthorize(ctx context.Context, principal PrincipalRecord, required permission.Set, deps AuthorizeDeps) error {
	grant := permission.Grant{Superuser: principal.Superuser}

	if !principal.Superuser && principal.RoleID != "" {
		role, err := deps.FindRole(ctx, principal.RoleID)
		switch {
		case err == nil:
			grant.HasRole = true
			grant.Capabilities = permission.NewSet(role.Capabilities...)
		case errors.Is(err, deps.RoleNotFound):
		default:
			return wrapUnavailable(deps.Unavailable, err)
		}
	}

	if err := permission.Authorize(grant, required); err != nil {
		deps.Inc(deps.DeniedMetric)
		return err
	}
	return nil
}
