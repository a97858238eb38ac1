package autopolicy

import (
	"context"

	"github.com/chr1sbest/permguard"
)

// Handler inspects the pending requirements of an Evaluation and marks the
// ones it can satisfy. A returned error aborts the evaluation.
type Handler interface {
	Handle(ctx context.Context, ev *Evaluation) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev *Evaluation) error

// Handle calls f(ctx, ev).
func (f HandlerFunc) Handle(ctx context.Context, ev *Evaluation) error {
	return f(ctx, ev)
}

// PermissionHandler satisfies PermissionRequirements the current user holds,
// as reported by the checker. Missing permissions are left pending; it never
// calls Fail.
type PermissionHandler struct {
	Checker permguard.PermissionChecker
}

// NewPermissionHandler returns a PermissionHandler backed by checker.
func NewPermissionHandler(checker permguard.PermissionChecker) *PermissionHandler {
	return &PermissionHandler{Checker: checker}
}

func (h *PermissionHandler) Handle(ctx context.Context, ev *Evaluation) error {
	for _, req := range ev.Pending() {
		pr, ok := req.(PermissionRequirement)
		if !ok {
			continue
		}
		granted, err := h.Checker.HasPermission(ctx, pr.Name)
		if err != nil {
			return err
		}
		if granted {
			ev.Succeed(pr)
		}
	}
	return nil
}

// RoleHandler satisfies RolesRequirements using the roles returned by the
// policy handler. The policy is fetched at most once per evaluation, and only
// when a roles requirement is pending.
type RoleHandler struct {
	Policies permguard.PolicyHandler
}

func (h *RoleHandler) Handle(ctx context.Context, ev *Evaluation) error {
	var (
		policy permguard.UserPolicy
		loaded bool
	)
	for _, req := range ev.Pending() {
		rr, ok := req.(RolesRequirement)
		if !ok {
			continue
		}
		if !loaded {
			p, err := h.Policies.GetUserPolicy(ctx)
			if err != nil {
				return err
			}
			policy, loaded = p, true
		}
		for _, role := range rr.Roles {
			if policy.HasRole(role) {
				ev.Succeed(rr)
				break
			}
		}
	}
	return nil
}

// AuthenticatedHandler satisfies AuthenticatedRequirement when the request
// context carries a subject.
type AuthenticatedHandler struct{}

func (AuthenticatedHandler) Handle(ctx context.Context, ev *Evaluation) error {
	if _, ok := permguard.SubjectFromContext(ctx); !ok {
		return nil
	}
	for _, req := range ev.Pending() {
		if _, ok := req.(AuthenticatedRequirement); ok {
			ev.Succeed(req)
		}
	}
	return nil
}
