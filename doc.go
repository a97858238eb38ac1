// Package permguard answers one question for request handling code: does the
// current user hold a given permission?
//
// The application supplies a [PolicyHandler] that knows how to load the
// current user's roles and permissions. A [Guard] asks it for a fresh
// [UserPolicy] on every check and tests membership:
//
//	guard := permguard.New(handler)
//
//	ok, err := guard.HasPermission(ctx, "posts.write")
//
//	// Returns the factory's error when the permission is missing.
//	err = guard.MustHavePermission(ctx, "posts.delete", permguard.Forbidden)
//
// Nothing is cached between calls. Two checks in the same request fetch the
// policy twice.
//
// Package autopolicy wires a Guard into HTTP routing so any permission string
// can be required by name without registering it first.
package permguard
