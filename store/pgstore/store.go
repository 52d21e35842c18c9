package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/permission"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store reads and creates principals in PostgreSQL.
type Store struct {
	db DB
}

// New wraps a pool (or any [DB]).
func New(db DB) *Store {
	return &Store{db: db}
}

const principalColumns = `id, email, hashed_password, is_active, is_superuser, role_id`

const (
	selectBySubject = `SELECT ` + principalColumns + ` FROM users WHERE id = $1`
	selectByEmail   = `SELECT ` + principalColumns + ` FROM users WHERE email = $1`
	selectRole      = `SELECT id, name, permissions FROM roles WHERE id = $1`
	selectRoleName  = `SELECT id, name, permissions FROM roles WHERE name = $1`
	insertPrincipal = `INSERT INTO users (id, email, hashed_password, is_active, is_superuser, role_id)
VALUES ($1, $2, $3, $4, FALSE, $5)`
	insertRole = `INSERT INTO roles (id, name, permissions) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET permissions = EXCLUDED.permissions
RETURNING id`
)

// FindBySubject looks a principal up by ID.
func (s *Store) FindBySubject(ctx context.Context, subject string) (*tokenguard.Principal, error) {
	return s.findPrincipal(ctx, selectBySubject, subject)
}

// FindByEmail looks a principal up by email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*tokenguard.Principal, error) {
	return s.findPrincipal(ctx, selectByEmail, email)
}

func (s *Store) findPrincipal(ctx context.Context, query, arg string) (*tokenguard.Principal, error) {
	var (
		p      tokenguard.Principal
		roleID *string
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.IsActive, &p.IsSuperuser, &roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tokenguard.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("pgstore: find principal: %w", err)
	}
	p.RoleID = roleID
	return &p, nil
}

// FindRole looks a role up by ID.
func (s *Store) FindRole(ctx context.Context, roleID string) (*tokenguard.Role, error) {
	return s.findRole(ctx, selectRole, roleID)
}

// FindRoleByName looks a role up by name.
func (s *Store) FindRoleByName(ctx context.Context, name string) (*tokenguard.Role, error) {
	return s.findRole(ctx, selectRoleName, name)
}

func (s *Store) findRole(ctx context.Context, query, arg string) (*tokenguard.Role, error) {
	var (
		r           tokenguard.Role
		permissions string
	)
	if err := s.db.QueryRow(ctx, query, arg).Scan(&r.ID, &r.Name, &permissions); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tokenguard.ErrRoleNotFound
		}
		return nil, fmt.Errorf("pgstore: find role: %w", err)
	}
	r.Capabilities = permission.Parse(permissions)
	return &r, nil
}

// CreatePrincipal inserts a new principal. A duplicate email returns
// [tokenguard.ErrConflictingIdentity].
func (s *Store) CreatePrincipal(ctx context.Context, in tokenguard.CreatePrincipalInput) (*tokenguard.Principal, error) {
	p := tokenguard.Principal{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		IsActive:     in.IsActive,
	}
	if in.RoleID != "" {
		roleID := in.RoleID
		p.RoleID = &roleID
	}

	if _, err := s.db.Exec(ctx, insertPrincipal, p.ID, p.Email, p.PasswordHash, p.IsActive, p.RoleID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, tokenguard.ErrConflictingIdentity
		}
		return nil, fmt.Errorf("pgstore: create principal: %w", err)
	}
	return &p, nil
}

// UpsertRole creates the named role or replaces its capabilities, returning
// the role ID.
func (s *Store) UpsertRole(ctx context.Context, name string, capabilities ...string) (string, error) {
	var id string
	caps := permission.NewSet(capabilities...).String()
	if err := s.db.QueryRow(ctx, insertRole, uuid.NewString(), name, caps).Scan(&id); err != nil {
		return "", fmt.Errorf("pgstore: upsert role: %w", err)
	}
	return id, nil
}

var _ tokenguard.PrincipalStore = (*Store)(nil)
