package sweep

import (
	"strings"
)

const (
	IndexSeparator     = '.'
	AttributeSeparator = ':'
	FilterSeparator    = '|'
)

// loopAccessor selects one of the position counters of the innermost loop.
type loopAccessor int

const (
	loopIndex  loopAccessor = iota // 1-based
	loopIndex0                     // 0-based
)

// specialVariables are paths that resolve to the current loop's counter
// instead of a lookup on a variable named "loop".
var specialVariables = map[string]loopAccessor{
	"loop.index":  loopIndex,
	"loop.index0": loopIndex0,
}

// compileExpr compiles `path [| filter]*` into a host expression. Filters
// wrap the value left to right, so a|f|g becomes g(f(a)).
func (c *compilation) compileExpr(expr string, pos Pos) (string, error) {
	parts := strings.Split(expr, string(FilterSeparator))
	value := c.compilePath(strings.TrimSpace(parts[0]))
	for _, f := range parts[1:] {
		name := strings.TrimSpace(f)
		fn, ok := c.backend.filters().Lookup(name)
		if !ok {
			return "", &UnsupportedFilterError{Filter: name, Pos: pos}
		}
		value = c.backend.call(fn, value)
	}
	return value, nil
}

func (c *compilation) compilePath(path string) string {
	if acc, ok := specialVariables[path]; ok {
		counter := c.currentCounter()
		if acc == loopIndex0 {
			return c.backend.loopIndex0(counter)
		}
		return c.backend.loopIndex(counter)
	}
	if path == "" {
		return c.backend.empty()
	}

	base, steps := splitPath(path)
	var value string
	if c.isLoopItem(base) {
		value = c.backend.item(base)
	} else {
		value = c.backend.variable(base)
	}
	for _, s := range steps {
		switch {
		case s.sep == AttributeSeparator:
			value = c.backend.attr(value, s.key)
		case isDigits(s.key):
			value = c.backend.intIndex(value, trimLeadingZeros(s.key))
		default:
			value = c.backend.strIndex(value, s.key)
		}
	}
	return value
}

type pathStep struct {
	sep byte
	key string
}

// splitPath splits a path into its base identifier and accessor steps.
// Empty steps, as in "a..b" or "a.", are dropped.
func splitPath(path string) (string, []pathStep) {
	i := strings.IndexAny(path, string([]byte{IndexSeparator, AttributeSeparator}))
	if i < 0 {
		return path, nil
	}
	base := path[:i]
	var steps []pathStep
	for i < len(path) {
		sep := path[i]
		j := i + 1
		for j < len(path) && path[j] != IndexSeparator && path[j] != AttributeSeparator {
			j++
		}
		if key := path[i+1 : j]; key != "" {
			steps = append(steps, pathStep{sep: sep, key: key})
		}
		i = j
	}
	return base, steps
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// trimLeadingZeros keeps integer keys from reading as octal literals.
func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}
