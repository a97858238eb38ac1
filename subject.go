package permguard

import "context"

// ctxKey is unexported to prevent collisions with keys from other packages.
type ctxKey struct{}

// ContextWithSubject returns a copy of ctx carrying the current user's
// identifier. Authentication middleware calls it; PolicyHandler
// implementations read it back with SubjectFromContext.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, ctxKey{}, subject)
}

// SubjectFromContext returns the subject stored by ContextWithSubject. The
// boolean is false for anonymous requests.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(ctxKey{}).(string)
	if !ok || subject == "" {
		return "", false
	}
	return subject, true
}
