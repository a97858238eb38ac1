package generator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chr1sbest/permguard/internal/model"
)

func TestGenerate_MatchesGolden(t *testing.T) {
	cfg := &model.Config{Policies: map[model.RouteKey]model.AuthPolicy{
		{Method: "GET", Path: "/public"}:   {RequireAuth: false},
		{Method: "GET", Path: "/user"}:     {RequireAuth: true},
		{Method: "DELETE", Path: "/admin"}: {RequireAuth: true, Roles: []string{"admin"}},
		{Method: "POST", Path: "/scoped"}:  {RequireAuth: true, Policies: []string{"vegetable:write"}},
	}}

	got, err := Generate("httproutes", cfg)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	goldenPath := filepath.Join("..", "..", "testdata", "authpolicy.golden.go")
	want, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("read golden file: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("generated code does not match golden file.\nGot:\n%s\nWant:\n%s", string(got), string(want))
	}
}

func TestGenerate_IsDeterministic(t *testing.T) {
	cfg := &model.Config{Policies: map[model.RouteKey]model.AuthPolicy{
		{Method: "POST", Path: "/b"}: {RequireAuth: true, Policies: []string{"b.write"}},
		{Method: "GET", Path: "/b"}:  {RequireAuth: true, Policies: []string{"b.read"}},
		{Method: "GET", Path: "/a"}:  {},
	}}

	first, err := Generate("routes", cfg)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Generate("routes", cfg)
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("output differs between runs:\n%s\n---\n%s", first, again)
		}
	}

	out := string(first)
	a := strings.Index(out, `"/a"`)
	getB := strings.Index(out, `{Method: "GET", Pattern: "/b"}`)
	postB := strings.Index(out, `{Method: "POST", Pattern: "/b"}`)
	if a < 0 || getB < 0 || postB < 0 || !(a < getB && getB < postB) {
		t.Errorf("expected routes ordered by path then method:\n%s", out)
	}
}

func TestGenerate_RequiresPackage(t *testing.T) {
	if _, err := Generate("", &model.Config{}); err == nil {
		t.Fatal("expected error for empty package name")
	}
}
