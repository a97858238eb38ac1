package policyfile_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chr1sbest/permguard"
	"github.com/chr1sbest/permguard/autopolicy"
	"github.com/chr1sbest/permguard/policyfile"
	"github.com/chr1sbest/permguard/stores/memory"
)

func loadTestdata(t *testing.T) *policyfile.File {
	t.Helper()
	f, err := policyfile.Load(filepath.Join("..", "testdata", "policies.yaml"))
	require.NoError(t, err)
	return f
}

func TestLoad(t *testing.T) {
	f := loadTestdata(t)

	require.Len(t, f.Policies, 3)
	require.Len(t, f.Routes, 3)
	assert.Equal(t, "GET", f.Routes[0].Method, "methods are upper-cased")
	assert.Equal(t, []string{"orders.cancel", "orders.read"}, f.Roles["support"])
	assert.Equal(t, []string{"profile.edit"}, f.Users["carol"].Permissions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := policyfile.Load(filepath.Join("..", "testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"policy without name", "policies:\n  - roles: [admin]\n"},
		{"duplicate policy", "policies:\n  - name: a\n  - name: a\n"},
		{"bad method", "routes:\n  - method: FETCH\n    pattern: /x\n"},
		{"relative pattern", "routes:\n  - method: GET\n    pattern: x\n"},
		{"duplicate route", "routes:\n  - method: GET\n    pattern: /x\n  - method: get\n    pattern: /x\n"},
		{"empty permission", "policies:\n  - name: a\n    permissions: [\"\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policyfile.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, policyfile.ErrInvalid)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := policyfile.Parse([]byte("policies: [\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, policyfile.ErrInvalid)
}

func TestPolicySpec_Policy(t *testing.T) {
	spec := policyfile.PolicySpec{
		Name:          "orders.refund",
		Authenticated: true,
		Roles:         []string{"support"},
		Permissions:   []string{"orders.refund", "payments.write"},
	}

	assert.Equal(t, autopolicy.NewPolicy("orders.refund",
		autopolicy.AuthenticatedRequirement{},
		autopolicy.RolesRequirement{Roles: []string{"support"}},
		autopolicy.PermissionRequirement{Name: "orders.refund"},
		autopolicy.PermissionRequirement{Name: "payments.write"},
	), spec.Policy())
}

func TestFile_RouteTable(t *testing.T) {
	table := loadTestdata(t).RouteTable()

	assert.Equal(t, autopolicy.RouteRule{RequireAuth: true, Policies: []string{"orders.cancel"}, Roles: nil},
		table[autopolicy.RouteKey{Method: "POST", Pattern: "/orders/{id}/cancel"}])
	assert.Equal(t, []string{"admin"},
		table[autopolicy.RouteKey{Method: "DELETE", Pattern: "/admin/users/{id}"}].Roles)
	assert.Len(t, table, 3)
}

func TestFile_RegisterAndSeed(t *testing.T) {
	f := loadTestdata(t)

	store := memory.NewStore()
	f.Seed(store)

	b := autopolicy.NewBuilder(store).MapAuthorizationPolicies().AutomaticallyCheckPermissions()
	f.Register(b.Registry())
	authz, err := b.Build(autopolicy.WithDenialHandler(autopolicy.NopDenialHandler{}))
	require.NoError(t, err)

	carol := permguard.ContextWithSubject(context.Background(), "carol")
	dave := permguard.ContextWithSubject(context.Background(), "dave")
	alice := permguard.ContextWithSubject(context.Background(), "alice")

	tests := []struct {
		name   string
		ctx    context.Context
		policy string
		want   bool
	}{
		{"static roles policy", carol, "staff", true},
		{"static roles policy denied", dave, "staff", false},
		{"dynamic from role", carol, "orders.cancel", true},
		{"dynamic direct", carol, "profile.edit", true},
		{"dynamic missing", dave, "orders.cancel", false},
		{"static permissions policy", alice, "orders.refund", true},
		{"static permissions policy partial", carol, "orders.refund", false},
		{"authenticated only", dave, "signed-in", true},
		{"anonymous", context.Background(), "signed-in", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := authz.Authorize(tt.ctx, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Allowed)
		})
	}
}

func TestSchema(t *testing.T) {
	out, err := policyfile.Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "permguard policy file", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "policies")
	assert.Contains(t, props, "routes")
	assert.Contains(t, props, "users")
}

func TestResolveSecret(t *testing.T) {
	t.Setenv("PERMGUARD_TEST_SECRET", "s3cret")

	got, err := policyfile.ResolveSecret("env:PERMGUARD_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	got, err = policyfile.ResolveSecret(" literal ")
	require.NoError(t, err)
	assert.Equal(t, "literal", got)

	_, err = policyfile.ResolveSecret("env:PERMGUARD_TEST_UNSET")
	assert.ErrorIs(t, err, policyfile.ErrEmptySecret)

	_, err = policyfile.ResolveSecret("")
	assert.ErrorIs(t, err, policyfile.ErrEmptySecret)
}
