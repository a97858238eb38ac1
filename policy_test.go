package permguard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chr1sbest/permguard"
)

func TestUserPolicy_IsImmutable(t *testing.T) {
	roles := []string{"editor"}
	perms := []string{"posts.write"}
	p := permguard.NewUserPolicy(roles, perms)

	roles[0] = "admin"
	perms[0] = "posts.delete"
	assert.Equal(t, []string{"editor"}, p.Roles())
	assert.Equal(t, []string{"posts.write"}, p.Permissions())

	got := p.Permissions()
	got[0] = "tampered"
	assert.True(t, p.HasPermission("posts.write"))
	assert.True(t, p.HasRole("editor"))
	assert.False(t, p.HasRole("admin"))
}

func TestUserPolicy_ZeroValue(t *testing.T) {
	var p permguard.UserPolicy
	assert.Empty(t, p.Roles())
	assert.Empty(t, p.Permissions())
	assert.False(t, p.HasPermission(""))
}

func TestSubjectContext(t *testing.T) {
	_, ok := permguard.SubjectFromContext(context.Background())
	assert.False(t, ok)

	_, ok = permguard.SubjectFromContext(permguard.ContextWithSubject(context.Background(), ""))
	assert.False(t, ok)

	sub, ok := permguard.SubjectFromContext(permguard.ContextWithSubject(context.Background(), "u-1"))
	assert.True(t, ok)
	assert.Equal(t, "u-1", sub)
}

func TestPolicyHandlerFunc(t *testing.T) {
	h := permguard.PolicyHandlerFunc(func(context.Context) (permguard.UserPolicy, error) {
		return permguard.NewUserPolicy(nil, []string{"a"}), nil
	})
	p, err := h.GetUserPolicy(context.Background())
	assert.NoError(t, err)
	assert.True(t, p.HasPermission("a"))
}
