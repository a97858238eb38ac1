package autopolicy

import "strings"

// Requirement is a single unit of authorization evaluation.
type Requirement interface {
	String() string
}

// PermissionRequirement requires the current user to hold Name.
type PermissionRequirement struct {
	Name string
}

func (r PermissionRequirement) String() string {
	return "permission:" + r.Name
}

// RolesRequirement requires the current user to hold at least one of Roles.
type RolesRequirement struct {
	Roles []string
}

func (r RolesRequirement) String() string {
	return "roles:" + strings.Join(r.Roles, "|")
}

// AuthenticatedRequirement requires a subject on the request context.
type AuthenticatedRequirement struct{}

func (AuthenticatedRequirement) String() string {
	return "authenticated"
}
