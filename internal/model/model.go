package model

import (
	"slices"

	"github.com/chr1sbest/permguard/autopolicy"
)

// RouteKey uniquely identifies an operation by HTTP method and path template.
type RouteKey struct {
	Method string
	Path   string
}

// AuthPolicy represents the authorization requirements for a single operation.
//
// Policies are resolved by name at request time; with dynamic mapping they are
// plain permission strings. Roles is any-of.
type AuthPolicy struct {
	RequireAuth bool
	Policies    []string
	Roles       []string
}

// Config is the in-memory representation of all auth policies derived from a
// specification.
type Config struct {
	Policies map[RouteKey]AuthPolicy
}

// RouteTable converts the config into the table served by
// autopolicy.Authorizer.Routes. OpenAPI path templates already use chi's
// {param} syntax, so paths carry over unchanged.
func (c *Config) RouteTable() autopolicy.RouteTable {
	table := make(autopolicy.RouteTable, len(c.Policies))
	for key, p := range c.Policies {
		table[autopolicy.RouteKey{Method: key.Method, Pattern: key.Path}] = autopolicy.RouteRule{
			RequireAuth: p.RequireAuth,
			Policies:    slices.Clone(p.Policies),
			Roles:       slices.Clone(p.Roles),
		}
	}
	return table
}

// SortedKeys returns the keys ordered by path, then method.
func (c *Config) SortedKeys() []RouteKey {
	keys := make([]RouteKey, 0, len(c.Policies))
	for k := range c.Policies {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b RouteKey) int {
		if a.Path != b.Path {
			if a.Path < b.Path {
				return -1
			}
			return 1
		}
		switch {
		case a.Method < b.Method:
			return -1
		case a.Method > b.Method:
			return 1
		}
		return 0
	})
	return keys
}
