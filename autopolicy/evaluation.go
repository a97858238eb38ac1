package autopolicy

import (
	"reflect"
	"slices"
)

// Evaluation tracks which requirements of a policy have been satisfied while
// handlers run. It is used by a single goroutine.
type Evaluation struct {
	policy    Policy
	succeeded []bool
	failed    bool
}

func newEvaluation(p Policy) *Evaluation {
	return &Evaluation{
		policy:    p,
		succeeded: make([]bool, len(p.Requirements)),
	}
}

// Policy returns the policy under evaluation.
func (e *Evaluation) Policy() Policy {
	return e.policy
}

// Requirements returns every requirement of the policy.
func (e *Evaluation) Requirements() []Requirement {
	return slices.Clone(e.policy.Requirements)
}

// Pending returns the requirements not yet satisfied.
func (e *Evaluation) Pending() []Requirement {
	var out []Requirement
	for i, req := range e.policy.Requirements {
		if !e.succeeded[i] {
			out = append(out, req)
		}
	}
	return out
}

// Succeed marks req satisfied. Marking is additive: it does not affect other
// requirements, and marking twice is harmless.
func (e *Evaluation) Succeed(req Requirement) {
	for i, r := range e.policy.Requirements {
		if !e.succeeded[i] && sameRequirement(r, req) {
			e.succeeded[i] = true
		}
	}
}

// Fail marks the evaluation failed regardless of requirement state.
func (e *Evaluation) Fail() {
	e.failed = true
}

// HasFailed reports whether Fail was called.
func (e *Evaluation) HasFailed() bool {
	return e.failed
}

// HasSucceeded reports whether every requirement is satisfied and Fail was
// never called.
func (e *Evaluation) HasSucceeded() bool {
	if e.failed {
		return false
	}
	return !slices.Contains(e.succeeded, false)
}

// sameRequirement compares requirements by concrete type and value. String
// forms are for display and may collide, e.g. roles containing "|".
func sameRequirement(a, b Requirement) bool {
	return reflect.DeepEqual(a, b)
}
