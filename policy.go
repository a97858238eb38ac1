package permguard

import (
	"context"
	"slices"
)

// UserPolicy is the set of roles and permissions held by the current user for
// the duration of a request. It is immutable once built.
type UserPolicy struct {
	roles       []string
	permissions []string
}

// NewUserPolicy copies roles and permissions into a new UserPolicy.
func NewUserPolicy(roles, permissions []string) UserPolicy {
	return UserPolicy{
		roles:       slices.Clone(roles),
		permissions: slices.Clone(permissions),
	}
}

// Roles returns a copy of the user's roles.
func (p UserPolicy) Roles() []string {
	return slices.Clone(p.roles)
}

// Permissions returns a copy of the user's permissions.
func (p UserPolicy) Permissions() []string {
	return slices.Clone(p.permissions)
}

// HasPermission reports whether permission is in the policy. Roles are not
// consulted.
func (p UserPolicy) HasPermission(permission string) bool {
	return slices.Contains(p.permissions, permission)
}

// HasRole reports whether role is in the policy.
func (p UserPolicy) HasRole(role string) bool {
	return slices.Contains(p.roles, role)
}

// PolicyHandler is implemented by the application. It returns the roles and
// permissions of the user bound to ctx.
type PolicyHandler interface {
	GetUserPolicy(ctx context.Context) (UserPolicy, error)
}

// PolicyHandlerFunc adapts a function to PolicyHandler.
type PolicyHandlerFunc func(ctx context.Context) (UserPolicy, error)

// GetUserPolicy calls f(ctx).
func (f PolicyHandlerFunc) GetUserPolicy(ctx context.Context) (UserPolicy, error) {
	return f(ctx)
}

// PermissionQuerier is an optional interface for handlers that can answer a
// single permission query more cheaply than loading the full policy, for
// example with an indexed lookup. The Guard prefers it when present.
type PermissionQuerier interface {
	HasPermission(ctx context.Context, permission string) (bool, error)
}
