package autopolicy_test

import (
	"context"
	"errors"
	"sync"

	"github.com/chr1sbest/permguard"
	"github.com/chr1sbest/permguard/autopolicy"
)

// stubHandler is a call-counting PolicyHandler shared by the tests in this
// package.
type stubHandler struct {
	mu     sync.Mutex
	policy permguard.UserPolicy
	err    error
	calls  int
}

func newStub(roles, permissions []string) *stubHandler {
	return &stubHandler{policy: permguard.NewUserPolicy(roles, permissions)}
}

func (s *stubHandler) GetUserPolicy(context.Context) (permguard.UserPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.policy, s.err
}

func (s *stubHandler) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingDenials collects denials for assertions.
type recordingDenials struct {
	denials []autopolicy.Denial
}

func (r *recordingDenials) OnDenial(_ context.Context, d autopolicy.Denial) {
	r.denials = append(r.denials, d)
}

var errLookup = errors.New("policy lookup failed")

func buildFull(handler permguard.PolicyHandler, opts ...autopolicy.Option) *autopolicy.Authorizer {
	authz, err := autopolicy.NewBuilder(handler).
		MapAuthorizationPolicies().
		AutomaticallyCheckPermissions().
		Build(opts...)
	if err != nil {
		panic(err)
	}
	return authz
}
