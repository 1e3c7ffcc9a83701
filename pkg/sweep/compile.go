// Package sweep compiles sweep templates into host-language source.
//
// A template is literal text with three kinds of tags:
//
//	{{ path|filter }}         print an expression
//	{% for x in path %}       loop, closed by {% endfor %}
//	{% if path %}             conditional, with {% else %} and {% endif %}
//	{# text #}                comment, kept as a host comment
//
// Paths use '.' for index access (items.0, user.name) and ':' for attribute
// access (item:title). Inside a loop, loop.index and loop.index0 are the 1-
// and 0-based positions of the innermost loop.
//
// Compilation is a pure function of the template text; the result is never
// executed here.
package sweep

import (
	"strings"
)

// Options configures a Compiler.
type Options struct {
	// Target selects the host language; the zero value is PHP.
	Target Target
	// Prelude prepends definitions of the filter helpers that have no host
	// builtin.
	Prelude bool
}

// Compiler compiles templates for one target. It holds no mutable state and
// is safe for concurrent use.
type Compiler struct {
	target  Target
	backend backend
	prelude bool
}

// NewCompiler returns a compiler for the given options.
func NewCompiler(opts Options) (*Compiler, error) {
	t, err := ParseTarget(string(opts.Target))
	if err != nil {
		return nil, err
	}
	b, err := t.backend()
	if err != nil {
		return nil, err
	}
	return &Compiler{target: t, backend: b, prelude: opts.Prelude}, nil
}

var defaultCompiler = &Compiler{target: TargetPHP, backend: phpBackend{}}

// Compile compiles src to PHP.
func Compile(src string) (string, error) {
	return defaultCompiler.Compile(src)
}

// Target returns the target the compiler emits.
func (c *Compiler) Target() Target { return c.target }

// Compile compiles src. On error no output is returned.
func (c *Compiler) Compile(src string) (string, error) {
	return c.CompileNodes(Parse(src))
}

// CompileNodes compiles an already parsed node list.
func (c *Compiler) CompileNodes(nodes []Node) (string, error) {
	st := &compilation{backend: c.backend, w: c.backend.newWriter(c.prelude)}
	var b strings.Builder
	b.WriteString(st.w.begin())
	for _, n := range nodes {
		frag, err := st.compileNode(n)
		if err != nil {
			return "", err
		}
		b.WriteString(frag)
	}
	b.WriteString(st.w.end())
	return b.String(), nil
}

// compilation is the state of a single compile call.
type compilation struct {
	backend backend
	w       writer
	loops   []loopContext
}

func (c *compilation) compileNode(n Node) (string, error) {
	switch t := n.(type) {
	case *TextNode:
		return c.w.text(t.Text), nil
	case *VariableNode:
		expr, err := c.compileExpr(t.Expr, t.Pos)
		if err != nil {
			return "", err
		}
		return c.w.print(expr), nil
	case *BlockNode:
		return c.compileBlock(t)
	case *CommentNode:
		return c.w.comment(t.Text), nil
	}
	return "", nil
}
