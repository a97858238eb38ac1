// Package memory is an in-process PolicyHandler for tests, development and
// small deployments whose users fit in a config file.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/chr1sbest/permguard"
)

var _ permguard.PolicyHandler = (*Store)(nil)

type user struct {
	roles       []string
	permissions []string
}

// Store maps subjects to roles and direct permissions, and roles to the
// permissions they grant.
type Store struct {
	mu    sync.RWMutex
	users map[string]user
	roles map[string][]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]user),
		roles: make(map[string][]string),
	}
}

// SetUser replaces the roles and direct permissions of subject.
func (s *Store) SetUser(subject string, roles, permissions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[subject] = user{roles: slices.Clone(roles), permissions: slices.Clone(permissions)}
}

// RemoveUser forgets subject.
func (s *Store) RemoveUser(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, subject)
}

// SetRole replaces the permissions granted by role.
func (s *Store) SetRole(role string, permissions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[role] = slices.Clone(permissions)
}

// GetUserPolicy returns the policy of the subject on ctx. Its permissions are
// the user's direct permissions followed by those granted through roles,
// without duplicates. Anonymous and unknown subjects get an empty policy.
func (s *Store) GetUserPolicy(ctx context.Context) (permguard.UserPolicy, error) {
	subject, ok := permguard.SubjectFromContext(ctx)
	if !ok {
		return permguard.UserPolicy{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[subject]
	if !ok {
		return permguard.UserPolicy{}, nil
	}

	perms := slices.Clone(u.permissions)
	for _, role := range u.roles {
		for _, p := range s.roles[role] {
			if !slices.Contains(perms, p) {
				perms = append(perms, p)
			}
		}
	}
	return permguard.NewUserPolicy(u.roles, perms), nil
}
