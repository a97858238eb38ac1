package autopolicy

import (
	"context"
	"errors"
	"sync"
)

// ErrPolicyNotFound is returned by providers that do not know a policy name.
var ErrPolicyNotFound = errors.New("policy not found")

// Provider resolves policy names.
type Provider interface {
	GetPolicy(ctx context.Context, name string) (Policy, error)
}

// Registry is a table of statically registered policies.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{policies: make(map[string]Policy)}
}

// Add registers p under p.Name, replacing any previous entry.
func (r *Registry) Add(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name] = p
}

// Lookup returns the policy registered under name.
func (r *Registry) Lookup(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

// Len returns the number of registered policies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.policies)
}

// GetPolicy implements Provider. Unknown names yield ErrPolicyNotFound.
func (r *Registry) GetPolicy(_ context.Context, name string) (Policy, error) {
	if p, ok := r.Lookup(name); ok {
		return p, nil
	}
	return Policy{}, ErrPolicyNotFound
}

// DynamicProvider consults a static provider first and synthesizes a
// PermissionPolicy on a miss. It never reports ErrPolicyNotFound.
type DynamicProvider struct {
	Static Provider
}

// NewDynamicProvider wraps static. A nil static provider behaves like an
// empty Registry.
func NewDynamicProvider(static Provider) *DynamicProvider {
	if static == nil {
		static = NewRegistry()
	}
	return &DynamicProvider{Static: static}
}

// GetPolicy implements Provider.
func (p *DynamicProvider) GetPolicy(ctx context.Context, name string) (Policy, error) {
	policy, err := p.Static.GetPolicy(ctx, name)
	switch {
	case err == nil:
		return policy, nil
	case errors.Is(err, ErrPolicyNotFound):
		return PermissionPolicy(name), nil
	default:
		return Policy{}, err
	}
}
