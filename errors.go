package permguard

import (
	"errors"
	"fmt"
)

// ErrForbidden matches any *ForbiddenError with errors.Is.
var ErrForbidden = errors.New("forbidden")

// ForbiddenError reports a missing permission.
type ForbiddenError struct {
	Permission string
}

func (e *ForbiddenError) Error() string {
	if e.Permission == "" {
		return ErrForbidden.Error()
	}
	return fmt.Sprintf("forbidden: missing permission %q", e.Permission)
}

// Is makes errors.Is(err, ErrForbidden) true.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// ErrorFactory builds the error MustHavePermission returns for a denied
// permission.
type ErrorFactory func(permission string) error

// Forbidden is the default ErrorFactory.
func Forbidden(permission string) error {
	return &ForbiddenError{Permission: permission}
}
