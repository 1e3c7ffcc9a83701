// Package starlark checks Starlark produced by the sweep compiler.
package starlark

import (
	"fmt"
	"sort"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// fileOptions are the dialect options generated code is checked against.
var fileOptions = &syntax.FileOptions{}

// Check parses src and reports syntax errors.
func Check(filename, src string) error {
	if _, err := fileOptions.Parse(filename, src, 0); err != nil {
		return fmt.Errorf("starlark syntax: %w", err)
	}
	return nil
}

// Inputs returns the global names src reads but does not define, excluding
// Starlark builtins. These are the template variables and helper functions
// a host must predeclare before executing the code.
func Inputs(filename, src string) ([]string, error) {
	f, err := fileOptions.Parse(filename, src, 0)
	if err != nil {
		return nil, fmt.Errorf("starlark syntax: %w", err)
	}

	seen := map[string]struct{}{}
	isPredeclared := func(name string) bool {
		if starlark.Universe.Has(name) {
			return false
		}
		seen[name] = struct{}{}
		return true
	}
	if err := resolve.File(f, isPredeclared, starlark.Universe.Has); err != nil {
		return nil, fmt.Errorf("starlark resolve: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
