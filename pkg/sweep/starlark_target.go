package sweep

import (
	"strconv"
	"strings"

	"go.starlark.net/syntax"
)

// RenderFunc is the name of the function a Starlark compile result defines.
const RenderFunc = "render"

// VarsMapping is the predeclared mapping that holds template variables whose
// names cannot be written as Starlark identifiers.
const VarsMapping = "sweep_vars"

// Locals of the render function share this prefix so that they never
// collide with template variables.
const (
	starlarkLocalPrefix = "_sweep_"
	starlarkOut         = starlarkLocalPrefix + "out"
	starlarkCounter     = starlarkLocalPrefix + "loop_index"
	starlarkItemPrefix  = starlarkLocalPrefix + "var_"
)

var starlarkKeywords = map[string]bool{
	"and": true, "break": true, "continue": true, "def": true, "elif": true,
	"else": true, "for": true, "if": true, "in": true, "lambda": true,
	"load": true, "not": true, "or": true, "pass": true, "return": true,
	"while": true,
	// reserved
	"as": true, "assert": true, "async": true, "await": true, "class": true,
	"del": true, "except": true, "finally": true, "from": true, "global": true,
	"import": true, "is": true, "nonlocal": true, "raise": true, "try": true,
	"with": true, "yield": true,
}

type starlarkBackend struct{}

func (starlarkBackend) filters() *FilterRegistry { return starlarkFilters }

func (starlarkBackend) variable(name string) string {
	if !isIdentifier(name) || starlarkKeywords[name] || strings.HasPrefix(name, starlarkLocalPrefix) {
		return VarsMapping + "[" + syntax.Quote(name, false) + "]"
	}
	return name
}

func (starlarkBackend) item(name string) string { return starlarkItemPrefix + name }

func (starlarkBackend) intIndex(value, key string) string {
	return value + "[" + key + "]"
}

func (starlarkBackend) strIndex(value, key string) string {
	return value + "[" + syntax.Quote(key, false) + "]"
}

func (starlarkBackend) attr(value, name string) string {
	if isIdentifier(name) {
		return value + "." + name
	}
	return "getattr(" + value + ", " + syntax.Quote(name, false) + ")"
}

func (starlarkBackend) call(fn, arg string) string { return fn + "(" + arg + ")" }

func (starlarkBackend) empty() string { return `""` }

func (starlarkBackend) counter(depth int) string {
	if depth <= 1 {
		return starlarkCounter
	}
	return starlarkCounter + "_" + strconv.Itoa(depth)
}

func (starlarkBackend) loopIndex(counter string) string  { return "(" + counter + " + 1)" }
func (starlarkBackend) loopIndex0(counter string) string { return counter }

func (starlarkBackend) newWriter(prelude bool) writer {
	return &starlarkWriter{prelude: prelude, depth: 1}
}

// starlarkWriter lays fragments out as statements of the render function.
// Each open block records whether its body has a statement yet so that empty
// bodies can be closed with pass.
type starlarkWriter struct {
	prelude bool
	depth   int
	blocks  []*starlarkBlock
}

type starlarkBlock struct {
	loop    bool
	hasElse bool
	empty   bool
}

func (w *starlarkWriter) indent() string {
	return strings.Repeat("    ", w.depth)
}

func (w *starlarkWriter) top() *starlarkBlock {
	if n := len(w.blocks); n > 0 {
		return w.blocks[n-1]
	}
	return nil
}

func (w *starlarkWriter) line(s string) string {
	if b := w.top(); b != nil {
		b.empty = false
	}
	return w.indent() + s + "\n"
}

func (w *starlarkWriter) begin() string {
	var b strings.Builder
	if w.prelude {
		b.WriteString(starlarkPrelude)
	}
	b.WriteString("def " + RenderFunc + "():\n")
	b.WriteString("    " + starlarkOut + " = []\n")
	return b.String()
}

func (w *starlarkWriter) end() string {
	var b strings.Builder
	for len(w.blocks) > 0 {
		b.WriteString(w.close())
	}
	b.WriteString(`    return "".join(` + starlarkOut + ")\n")
	return b.String()
}

func (w *starlarkWriter) text(s string) string {
	if s == "" {
		return ""
	}
	return w.line(starlarkOut + ".append(" + syntax.Quote(s, false) + ")")
}

func (w *starlarkWriter) print(expr string) string {
	return w.line(starlarkOut + ".append(str(" + expr + "))")
}

// comment does not count as a statement of the enclosing block.
func (w *starlarkWriter) comment(text string) string {
	var b strings.Builder
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			b.WriteString(w.indent() + "#\n")
			continue
		}
		b.WriteString(w.indent() + "# " + l + "\n")
	}
	return b.String()
}

func (w *starlarkWriter) open(header string, loop bool) string {
	s := w.line(header)
	w.blocks = append(w.blocks, &starlarkBlock{loop: loop, empty: true})
	w.depth++
	return s
}

func (w *starlarkWriter) close() string {
	b := w.top()
	if b == nil {
		return ""
	}
	var s string
	if b.empty {
		s = w.indent() + "pass\n"
	}
	w.blocks = w.blocks[:len(w.blocks)-1]
	w.depth--
	return s
}

func (w *starlarkWriter) openLoop(counter, item, iterable string) string {
	return w.open("for "+counter+", "+item+" in enumerate("+iterable+"):", true)
}

func (w *starlarkWriter) closeLoop() string { return w.close() }

func (w *starlarkWriter) openCond(cond string) string {
	return w.open("if "+cond+":", false)
}

// elseBranch rejects an else inside a loop, which Starlark lacks, and a
// second else in one conditional.
func (w *starlarkWriter) elseBranch() (string, bool) {
	b := w.top()
	if b == nil {
		return "", true
	}
	if b.loop || b.hasElse {
		return "", false
	}
	var s string
	if b.empty {
		s = w.indent() + "pass\n"
	}
	s += strings.Repeat("    ", w.depth-1) + "else:\n"
	b.hasElse = true
	b.empty = true
	return s, true
}

func (w *starlarkWriter) closeCond() string { return w.close() }

// starlarkPrelude defines the helpers that can be written in Starlark itself.
// sweep_striptags, sweep_urlencode, sweep_linkify and sweep_random must be
// predeclared by the host.
const starlarkPrelude = `def sweep_upper(value):
    return str(value).upper()

def sweep_lower(value):
    return str(value).lower()

def sweep_capitalize(value):
    s = str(value)
    return s[:1].upper() + s[1:]

def sweep_title(value):
    return str(value).title()

def sweep_escape(value):
    s = str(value)
    s = s.replace("&", "&amp;").replace("<", "&lt;").replace(">", "&gt;")
    return s.replace("\"", "&quot;").replace("'", "&#039;")

def sweep_length(value):
    return len(value)

`
