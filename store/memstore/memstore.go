// Package memstore is an in-memory [tokenguard.PrincipalStore] for tests and
// single-process deployments.
package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/permission"
	"github.com/google/uuid"
)

// Store keeps principals and roles in maps guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	principals map[string]*tokenguard.Principal
	byEmail    map[string]string
	roles      map[string]*tokenguard.Role
	roleByName map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		principals: make(map[string]*tokenguard.Principal),
		byEmail:    make(map[string]string),
		roles:      make(map[string]*tokenguard.Role),
		roleByName: make(map[string]string),
	}
}

// AddRole stores a role and returns its generated ID. Adding a name that
// already exists replaces its capabilities and keeps the ID.
func (s *Store) AddRole(name string, capabilities ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.roleByName[name]; ok {
		s.roles[id].Capabilities = permission.NewSet(capabilities...)
		return id
	}

	id := uuid.NewString()
	s.roles[id] = &tokenguard.Role{ID: id, Name: name, Capabilities: permission.NewSet(capabilities...)}
	s.roleByName[name] = id
	return id
}

// DeleteRole removes a role. Principals referencing it keep the dangling ID.
func (s *Store) DeleteRole(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.roles[id]; ok {
		delete(s.roleByName, r.Name)
		delete(s.roles, id)
	}
}

// Put inserts or replaces a principal as-is. An empty ID is generated.
func (s *Store) Put(p tokenguard.Principal) tokenguard.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Email = normalize(p.Email)
	if old, ok := s.principals[p.ID]; ok {
		delete(s.byEmail, old.Email)
	}
	s.principals[p.ID] = &p
	s.byEmail[p.Email] = p.ID
	return p
}

// SetActive flips a principal's active flag.
func (s *Store) SetActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.principals[id]; ok {
		p.IsActive = active
	}
}

// FindBySubject returns a copy of the principal whose ID is subject, or
// [tokenguard.ErrPrincipalNotFound].
func (s *Store) FindBySubject(ctx context.Context, subject string) (*tokenguard.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.principals[subject]
	if !ok {
		return nil, tokenguard.ErrPrincipalNotFound
	}
	return clonePrincipal(p), nil
}

// FindByEmail looks a principal up by case-insensitive email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*tokenguard.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalize(email)]
	if !ok {
		return nil, tokenguard.ErrPrincipalNotFound
	}
	return clonePrincipal(s.principals[id]), nil
}

// FindRole returns a copy of the role with roleID, or [tokenguard.ErrRoleNotFound].
func (s *Store) FindRole(ctx context.Context, roleID string) (*tokenguard.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[roleID]
	if !ok {
		return nil, tokenguard.ErrRoleNotFound
	}
	return cloneRole(r), nil
}

// FindRoleByName returns the role registered under name.
func (s *Store) FindRoleByName(ctx context.Context, name string) (*tokenguard.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.roleByName[name]
	if !ok {
		return nil, tokenguard.ErrRoleNotFound
	}
	return cloneRole(s.roles[id]), nil
}

// CreatePrincipal stores a new principal under a fresh UUID. An email already
// in use yields [tokenguard.ErrConflictingIdentity].
func (s *Store) CreatePrincipal(ctx context.Context, in tokenguard.CreatePrincipalInput) (*tokenguard.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalize(in.Email)
	if _, exists := s.byEmail[email]; exists {
		return nil, tokenguard.ErrConflictingIdentity
	}

	p := &tokenguard.Principal{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: in.PasswordHash,
		IsActive:     in.IsActive,
	}
	if in.RoleID != "" {
		roleID := in.RoleID
		p.RoleID = &roleID
	}
	s.principals[p.ID] = p
	s.byEmail[email] = p.ID
	return clonePrincipal(p), nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func clonePrincipal(p *tokenguard.Principal) *tokenguard.Principal {
	out := *p
	if p.RoleID != nil {
		roleID := *p.RoleID
		out.RoleID = &roleID
	}
	return &out
}

func cloneRole(r *tokenguard.Role) *tokenguard.Role {
	return &tokenguard.Role{
		ID:           r.ID,
		Name:         r.Name,
		Capabilities: permission.NewSet(r.Capabilities.Names()...),
	}
}

var _ tokenguard.PrincipalStore = (*Store)(nil)
