// Package jwtclaims authenticates requests with HS256 bearer tokens and
// serves the roles and permissions embedded in the token as the user's
// policy.
package jwtclaims

import (
	"context"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chr1sbest/permguard"
)

// Claims are the token claims understood by this package.
type Claims struct {
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// ContextWithClaims returns a copy of ctx carrying c and its subject.
func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, c)
	return permguard.ContextWithSubject(ctx, c.Subject)
}

// ClaimsFromContext returns the claims stored by the middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

var _ permguard.PolicyHandler = Handler{}

// Handler is a PolicyHandler returning the roles and permissions carried by
// the request's token. Requests without a token get an empty policy.
type Handler struct{}

func (Handler) GetUserPolicy(ctx context.Context) (permguard.UserPolicy, error) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return permguard.UserPolicy{}, nil
	}
	return permguard.NewUserPolicy(c.Roles, c.Permissions), nil
}
