package permguard

import "context"

// PermissionChecker is the read side of a Guard. autopolicy depends on it
// rather than on *Guard.
type PermissionChecker interface {
	HasPermission(ctx context.Context, permission string) (bool, error)
}

var _ PermissionChecker = (*Guard)(nil)

// Guard evaluates permissions against the policy returned by a PolicyHandler.
//
// A Guard holds no state besides its handler and is safe for concurrent use
// as long as the handler is.
type Guard struct {
	handler PolicyHandler
}

// New returns a Guard backed by handler.
func New(handler PolicyHandler) *Guard {
	return &Guard{handler: handler}
}

// HasPermission reports whether the current user holds permission. Every call
// asks the handler again. The only error returned is the handler's own, as is.
func (g *Guard) HasPermission(ctx context.Context, permission string) (bool, error) {
	if q, ok := g.handler.(PermissionQuerier); ok {
		return q.HasPermission(ctx, permission)
	}
	policy, err := g.handler.GetUserPolicy(ctx)
	if err != nil {
		return false, err
	}
	return policy.HasPermission(permission), nil
}

// MustHavePermission returns nil when the current user holds permission and
// newErr(permission) otherwise. A nil newErr, or one that returns nil, falls
// back to Forbidden so a denial is never reported as success.
func (g *Guard) MustHavePermission(ctx context.Context, permission string, newErr ErrorFactory) error {
	ok, err := g.HasPermission(ctx, permission)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if newErr != nil {
		if err := newErr(permission); err != nil {
			return err
		}
	}
	return Forbidden(permission)
}
