package sweep

import (
	"fmt"
	"strings"
)

// Target names a host language that templates compile to.
type Target string

const (
	TargetPHP      Target = "php"
	TargetStarlark Target = "starlark"
)

// Targets lists the supported targets, default first.
var Targets = []Target{TargetPHP, TargetStarlark}

// ParseTarget returns the target with the given name. The empty name selects
// the default PHP target.
func ParseTarget(name string) (Target, error) {
	switch Target(strings.ToLower(strings.TrimSpace(name))) {
	case "", TargetPHP:
		return TargetPHP, nil
	case TargetStarlark:
		return TargetStarlark, nil
	}
	return "", fmt.Errorf("unknown target %q (want one of %v)", name, Targets)
}

// Filters returns the filter registry of the target.
func (t Target) Filters() (*FilterRegistry, error) {
	b, err := t.backend()
	if err != nil {
		return nil, err
	}
	return b.filters(), nil
}

func (t Target) backend() (backend, error) {
	t, err := ParseTarget(string(t))
	if err != nil {
		return nil, err
	}
	if t == TargetStarlark {
		return starlarkBackend{}, nil
	}
	return phpBackend{}, nil
}

// backend renders host-language expressions for one target.
type backend interface {
	filters() *FilterRegistry

	// variable reads a template variable; item reads the variable bound
	// by an active loop.
	variable(name string) string
	item(name string) string
	intIndex(value, key string) string
	strIndex(value, key string) string
	attr(value, name string) string
	call(fn, arg string) string
	empty() string

	// counter names the position variable of a loop at the given
	// nesting depth (1 = outermost).
	counter(depth int) string
	loopIndex(counter string) string
	loopIndex0(counter string) string

	newWriter(prelude bool) writer
}

// writer renders the fragment of each node. A writer is created per compile
// call and may keep layout state such as indentation.
type writer interface {
	begin() string
	text(s string) string
	print(expr string) string
	comment(text string) string
	openLoop(counter, item, iterable string) string
	closeLoop() string
	openCond(cond string) string
	// elseBranch reports false when the innermost open block cannot take
	// an else branch.
	elseBranch() (string, bool)
	closeCond() string
	end() string
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
