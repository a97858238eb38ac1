// Package policyfile loads static policies, route rules and seed users from a
// YAML file.
//
//	policies:
//	  - name: staff
//	    roles: [admin, support]
//	routes:
//	  - method: POST
//	    pattern: /orders/{id}/cancel
//	    authenticated: true
//	    policies: [orders.cancel]
//	roles:
//	  support: [orders.cancel, orders.read]
//	users:
//	  carol:
//	    roles: [support]
package policyfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Parse and Load.
var ErrInvalid = errors.New("invalid policy file")

// validate is shared; building a validator is expensive.
var validate = validator.New()

// File is the in-memory form of a policy file.
type File struct {
	Policies []PolicySpec        `yaml:"policies" json:"policies,omitempty" validate:"dive"`
	Routes   []RouteSpec         `yaml:"routes" json:"routes,omitempty" validate:"dive"`
	Roles    map[string][]string `yaml:"roles" json:"roles,omitempty" validate:"dive,keys,required,endkeys"`
	Users    map[string]UserSpec `yaml:"users" json:"users,omitempty" validate:"dive,keys,required,endkeys"`
}

// PolicySpec declares a static, named policy.
type PolicySpec struct {
	Name          string   `yaml:"name" json:"name" validate:"required"`
	Permissions   []string `yaml:"permissions" json:"permissions,omitempty" validate:"dive,required"`
	Roles         []string `yaml:"roles" json:"roles,omitempty" validate:"dive,required"`
	Authenticated bool     `yaml:"authenticated" json:"authenticated,omitempty"`
}

// RouteSpec binds a chi route pattern to the policies and roles it requires.
type RouteSpec struct {
	Method        string   `yaml:"method" json:"method" validate:"required,oneof=GET HEAD POST PUT PATCH DELETE OPTIONS"`
	Pattern       string   `yaml:"pattern" json:"pattern" validate:"required,startswith=/"`
	Policies      []string `yaml:"policies" json:"policies,omitempty" validate:"dive,required"`
	Roles         []string `yaml:"roles" json:"roles,omitempty" validate:"dive,required"`
	Authenticated bool     `yaml:"authenticated" json:"authenticated,omitempty"`
}

// UserSpec seeds one user of an in-memory store.
type UserSpec struct {
	Roles       []string `yaml:"roles" json:"roles,omitempty" validate:"dive,required"`
	Permissions []string `yaml:"permissions" json:"permissions,omitempty" validate:"dive,required"`
}

// Load reads and parses the policy file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a policy file. Route methods are upper-cased
// before validation.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal policy file: %w", err)
	}
	for i := range f.Routes {
		f.Routes[i].Method = strings.ToUpper(strings.TrimSpace(f.Routes[i].Method))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints and rejects duplicate policy names and
// duplicate routes.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	names := make(map[string]struct{}, len(f.Policies))
	for _, p := range f.Policies {
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("%w: duplicate policy %q", ErrInvalid, p.Name)
		}
		names[p.Name] = struct{}{}
	}

	routes := make(map[string]struct{}, len(f.Routes))
	for _, r := range f.Routes {
		key := r.Method + " " + r.Pattern
		if _, dup := routes[key]; dup {
			return fmt.Errorf("%w: duplicate route %s", ErrInvalid, key)
		}
		routes[key] = struct{}{}
	}
	return nil
}
