package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/chr1sbest/permguard/internal/generator"
	"github.com/chr1sbest/permguard/internal/parser"
	"github.com/chr1sbest/permguard/policyfile"
)

func main() {
	in := flag.String("in", "", "Path to OpenAPI YAML file")
	out := flag.String("out", "", "Path to output Go file")
	pkg := flag.String("pkg", "httproutes", "Package name for generated code")
	schema := flag.String("schema", "", "Optional path to write the policy file JSON Schema")
	flag.Parse()

	if *schema != "" {
		data, err := policyfile.Schema()
		if err != nil {
			fail("generate schema: %v", err)
		}
		if err := os.WriteFile(*schema, data, 0o644); err != nil {
			fail("write schema: %v", err)
		}
		if *in == "" && *out == "" {
			return
		}
	}

	if *in == "" || *out == "" {
		fail("-in and -out are required")
	}

	cfg, err := parser.ParseConfig(*in)
	if err != nil {
		fail("parse spec: %v", err)
	}

	code, err := generator.Generate(*pkg, cfg)
	if err != nil {
		fail("generate code: %v", err)
	}

	if err := os.WriteFile(*out, code, 0o644); err != nil {
		fail("write output: %v", err)
	}
	color.Green("wrote %d routes to %s", len(cfg.Policies), *out)
}

func fail(format string, args ...any) {
	color.New(color.FgRed).Fprintln(os.Stderr, fmt.Sprintf(format, args...))
	os.Exit(1)
}
