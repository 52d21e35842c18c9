package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/tokenguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()
	roleID := s.AddRole("user", "read")

	p, err := s.CreatePrincipal(ctx, tokenguard.CreatePrincipalInput{
		Email:        " A@X.com",
		PasswordHash: "digest",
		RoleID:       roleID,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "a@x.com", p.Email)
	require.NotNil(t, p.RoleID)
	assert.Equal(t, roleID, *p.RoleID)

	bySubject, err := s.FindBySubject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, bySubject)

	byEmail, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byEmail.ID)

	role, err := s.FindRoleByName(ctx, "user")
	require.NoError(t, err)
	assert.True(t, role.Capabilities.Has("read"))
}

func TestDuplicateEmailConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreatePrincipal(ctx, tokenguard.CreatePrincipalInput{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = s.CreatePrincipal(ctx, tokenguard.CreatePrincipalInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, tokenguard.ErrConflictingIdentity)
}

func TestNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.FindBySubject(ctx, "missing")
	assert.ErrorIs(t, err, tokenguard.ErrPrincipalNotFound)
	_, err = s.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, tokenguard.ErrPrincipalNotFound)
	_, err = s.FindRole(ctx, "missing")
	assert.ErrorIs(t, err, tokenguard.ErrRoleNotFound)
	_, err = s.FindRoleByName(ctx, "missing")
	assert.ErrorIs(t, err, tokenguard.ErrRoleNotFound)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	roleID := s.AddRole("user", "read")

	role, err := s.FindRole(ctx, roleID)
	require.NoError(t, err)
	role.Capabilities["write"] = struct{}{}

	again, err := s.FindRole(ctx, roleID)
	require.NoError(t, err)
	assert.False(t, again.Capabilities.Has("write"))
}

func TestCanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindBySubject(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentSignupSingleWinner(t *testing.T) {
	s := New()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreatePrincipal(ctx, tokenguard.CreatePrincipalInput{Email: "race@x.com"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
