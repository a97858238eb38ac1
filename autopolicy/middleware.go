package autopolicy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chr1sbest/permguard"
)

// RouteKey identifies an operation by HTTP method and chi route pattern,
// e.g. {Method: "DELETE", Pattern: "/posts/{id}"}.
type RouteKey struct {
	Method  string
	Pattern string
}

// RouteRule lists what a route requires. Policies are resolved by name, so
// with dynamic mapping enabled they can be plain permission strings. Roles is
// any-of.
type RouteRule struct {
	RequireAuth bool
	Policies    []string
	Roles       []string
}

// RouteTable maps routes to their rules.
type RouteTable map[RouteKey]RouteRule

// Require returns middleware that lets a request through only when every
// named policy passes. Denied requests get 401 when anonymous and 403
// otherwise.
func (a *Authorizer) Require(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.authorizeNames(w, r, names) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Routes returns middleware that applies table to each request. The route is
// identified by the chi pattern it matches, falling back to the raw URL path.
// Requests for routes not in the table pass through untouched.
func (a *Authorizer) Routes(table RouteTable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := lookupRoute(table, r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			var reqs []Requirement
			if rule.RequireAuth {
				reqs = append(reqs, AuthenticatedRequirement{})
			}
			if len(rule.Roles) > 0 {
				reqs = append(reqs, RolesRequirement{Roles: rule.Roles})
			}
			if len(reqs) > 0 {
				res, err := a.Evaluate(r.Context(), NewPolicy(r.Method+" "+routePattern(r), reqs...))
				if err != nil {
					a.onError(w, r, err)
					return
				}
				if !res.Allowed {
					a.deny(w, r, res)
					return
				}
			}

			if !a.authorizeNames(w, r, rule.Policies) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authorizer) authorizeNames(w http.ResponseWriter, r *http.Request, names []string) bool {
	for _, name := range names {
		res, err := a.Authorize(r.Context(), name)
		if err != nil {
			a.onError(w, r, err)
			return false
		}
		if !res.Allowed {
			a.deny(w, r, res)
			return false
		}
	}
	return true
}

func (a *Authorizer) deny(w http.ResponseWriter, r *http.Request, res Result) {
	subject, authenticated := permguard.SubjectFromContext(r.Context())
	a.denials.OnDenial(r.Context(), Denial{
		ID:          uuid.NewString(),
		Policy:      res.Policy,
		Subject:     subject,
		Anonymous:   !authenticated,
		Method:      r.Method,
		Path:        r.URL.Path,
		Unsatisfied: requirementNames(res.Unsatisfied),
		Failed:      res.Failed,
	})

	if !authenticated {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func lookupRoute(table RouteTable, r *http.Request) (RouteRule, bool) {
	if rule, ok := table[RouteKey{Method: r.Method, Pattern: routePattern(r)}]; ok {
		return rule, true
	}
	rule, ok := table[RouteKey{Method: r.Method, Pattern: r.URL.Path}]
	return rule, ok
}

// routePattern returns the full chi pattern r matches. Middleware installed
// with Use runs before chi has routed the request, so the root router is asked
// to match it again on a scratch context.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return r.URL.Path
	}
	scratch := chi.NewRouteContext()
	if !rctx.Routes.Match(scratch, r.Method, r.URL.Path) {
		return r.URL.Path
	}
	return scratch.RoutePattern()
}
