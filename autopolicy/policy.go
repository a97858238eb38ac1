package autopolicy

// Policy is a named set of requirements. It passes when every requirement
// has been satisfied.
type Policy struct {
	Name         string
	Requirements []Requirement
}

// NewPolicy returns a policy named name with the given requirements.
func NewPolicy(name string, reqs ...Requirement) Policy {
	return Policy{Name: name, Requirements: reqs}
}

// PermissionPolicy is the policy synthesized for an unregistered name: one
// PermissionRequirement carrying the name itself.
func PermissionPolicy(name string) Policy {
	return NewPolicy(name, PermissionRequirement{Name: name})
}
