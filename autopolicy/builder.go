package autopolicy

import (
	"errors"

	"github.com/chr1sbest/permguard"
)

// ErrNoHandler is returned by Build when the builder has no policy handler.
var ErrNoHandler = errors.New("autopolicy: policy handler is required")

// Builder assembles an Authorizer around the application's PolicyHandler.
// Dynamic policy mapping and automatic permission checking are opt-in and
// independent of each other.
type Builder struct {
	handler          permguard.PolicyHandler
	guard            *permguard.Guard
	registry         *Registry
	handlers         []Handler
	mapPolicies      bool
	checkPermissions bool
}

// NewBuilder binds handler into a new Guard and an empty policy Registry.
func NewBuilder(handler permguard.PolicyHandler) *Builder {
	b := &Builder{
		handler:  handler,
		registry: NewRegistry(),
	}
	if handler != nil {
		b.guard = permguard.New(handler)
	}
	return b
}

// Guard returns the Guard bound to the builder's policy handler, for
// imperative checks in application code.
func (b *Builder) Guard() *permguard.Guard {
	return b.guard
}

// Registry returns the static policy registry.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// AddPolicy registers a static policy. Static policies take precedence over
// dynamically synthesized ones.
func (b *Builder) AddPolicy(p Policy) *Builder {
	b.registry.Add(p)
	return b
}

// AddHandler appends a custom requirement handler.
func (b *Builder) AddHandler(h Handler) *Builder {
	b.handlers = append(b.handlers, h)
	return b
}

// MapAuthorizationPolicies makes every policy name not found in the registry
// resolve to a single-permission policy of the same name.
func (b *Builder) MapAuthorizationPolicies() *Builder {
	b.mapPolicies = true
	return b
}

// AutomaticallyCheckPermissions installs a PermissionHandler so permission
// requirements are checked against the Guard.
func (b *Builder) AutomaticallyCheckPermissions() *Builder {
	b.checkPermissions = true
	return b
}

// Build returns the configured Authorizer. opts are applied after the
// builder's own handlers are installed.
func (b *Builder) Build(opts ...Option) (*Authorizer, error) {
	if b.handler == nil {
		return nil, ErrNoHandler
	}

	var provider Provider = b.registry
	if b.mapPolicies {
		provider = NewDynamicProvider(b.registry)
	}

	handlers := []Handler{
		AuthenticatedHandler{},
		&RoleHandler{Policies: b.handler},
	}
	handlers = append(handlers, b.handlers...)
	if b.checkPermissions {
		handlers = append(handlers, NewPermissionHandler(b.guard))
	}

	return New(provider, append([]Option{WithHandlers(handlers...)}, opts...)...), nil
}
