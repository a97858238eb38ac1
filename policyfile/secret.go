package policyfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptySecret is returned when a secret reference resolves to nothing.
var ErrEmptySecret = errors.New("empty secret")

// ResolveSecret turns "env:NAME" into the value of $NAME. Any other
// reference is returned as a literal.
func ResolveSecret(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptySecret
	}
	if name, ok := strings.CutPrefix(ref, "env:"); ok {
		v := os.Getenv(name)
		if v == "" {
			return "", fmt.Errorf("env %s: %w", name, ErrEmptySecret)
		}
		return v, nil
	}
	return ref, nil
}
