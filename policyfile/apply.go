package policyfile

import (
	"slices"

	"github.com/chr1sbest/permguard/autopolicy"
	"github.com/chr1sbest/permguard/stores/memory"
)

// Policy converts p into an autopolicy.Policy. Requirements are
// ordered authenticated, roles, then one per permission.
func (p PolicySpec) Policy() autopolicy.Policy {
	var reqs []autopolicy.Requirement
	if p.Authenticated {
		reqs = append(reqs, autopolicy.AuthenticatedRequirement{})
	}
	if len(p.Roles) > 0 {
		reqs = append(reqs, autopolicy.RolesRequirement{Roles: slices.Clone(p.Roles)})
	}
	for _, perm := range p.Permissions {
		reqs = append(reqs, autopolicy.PermissionRequirement{Name: perm})
	}
	return autopolicy.NewPolicy(p.Name, reqs...)
}

// Register adds every static policy to reg.
func (f *File) Register(reg *autopolicy.Registry) {
	for _, p := range f.Policies {
		reg.Add(p.Policy())
	}
}

// RouteTable returns the route rules keyed by method and pattern.
func (f *File) RouteTable() autopolicy.RouteTable {
	table := make(autopolicy.RouteTable, len(f.Routes))
	for _, r := range f.Routes {
		table[autopolicy.RouteKey{Method: r.Method, Pattern: r.Pattern}] = autopolicy.RouteRule{
			RequireAuth: r.Authenticated,
			Policies:    slices.Clone(r.Policies),
			Roles:       slices.Clone(r.Roles),
		}
	}
	return table
}

// Seed loads roles and users into store.
func (f *File) Seed(store *memory.Store) {
	for role, perms := range f.Roles {
		store.SetRole(role, perms)
	}
	for subject, u := range f.Users {
		store.SetUser(subject, u.Roles, u.Permissions)
	}
}
