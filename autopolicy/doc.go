// Package autopolicy plugs a permguard.Guard into HTTP request authorization.
//
// Policies are looked up by name. A [Registry] holds the statically
// registered ones; [DynamicProvider] wraps it and, for any name the registry
// does not know, synthesizes a policy with a single [PermissionRequirement]
// carrying that name. Every string is therefore a usable policy:
//
//	authz, err := autopolicy.NewBuilder(handler).
//		MapAuthorizationPolicies().
//		AutomaticallyCheckPermissions().
//		Build()
//
//	r := chi.NewRouter()
//	r.With(authz.Require("orders.cancel")).Post("/orders/{id}/cancel", cancelOrder)
//
// [PermissionHandler] satisfies permission requirements by asking the Guard.
// Requirement handlers never see a cancellation signal: once an evaluation
// has started it runs to completion even if the request is cancelled. The
// context is still passed through to the PolicyHandler, so I/O it performs
// honours cancellation.
package autopolicy
