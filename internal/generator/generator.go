package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"github.com/chr1sbest/permguard/internal/model"
)

var fileTemplate = template.Must(template.New("routes").Funcs(template.FuncMap{
	"quote":   strconv.Quote,
	"strings": stringsLiteral,
}).Parse(`// Code generated by permguard-gen. DO NOT EDIT.

package {{.Package}}

import "github.com/chr1sbest/permguard/autopolicy"

// RoutePolicies maps each operation to the authorization it requires.
var RoutePolicies = autopolicy.RouteTable{
{{- range .Routes}}
	{Method: {{quote .Method}}, Pattern: {{quote .Path}}}: {RequireAuth: {{.RequireAuth}}
		{{- if .Policies}}, Policies: {{strings .Policies}}{{end}}
		{{- if .Roles}}, Roles: {{strings .Roles}}{{end}}},
{{- end}}
}
`))

type route struct {
	model.RouteKey
	model.AuthPolicy
}

// Generate renders cfg as a gofmt'd Go file in package pkg declaring
// RoutePolicies. Routes are ordered by path, then method, so output is stable.
func Generate(pkg string, cfg *model.Config) ([]byte, error) {
	if pkg == "" {
		return nil, fmt.Errorf("package name is required")
	}

	keys := cfg.SortedKeys()
	routes := make([]route, 0, len(keys))
	for _, k := range keys {
		routes = append(routes, route{RouteKey: k, AuthPolicy: cfg.Policies[k]})
	}

	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, struct {
		Package string
		Routes  []route
	}{Package: pkg, Routes: routes})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

func stringsLiteral(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}
