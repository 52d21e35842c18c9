package flows

// PrincipalRecord is the flow-local view of a principal.
type PrincipalRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Active       bool
	Superuser    bool
	// RoleID is empty when no role is assigned.
	RoleID string
}

// RoleRecord is the flow-local view of a role.
type RoleRecord struct {
	ID           string
	Name         string
	Capabilities []string
}

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
