package sweep

import (
	"fmt"
	"strings"
)

// Pos is the location of a node in the template source.
type Pos struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Col    int // 1-based, in bytes
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is one compiled unit of a template.
type Node interface {
	node()
	Position() Pos
}

// TextNode represents literal text between tags. Its content is never trimmed.
type TextNode struct {
	Text string
	Pos  Pos
}

func (*TextNode) node()           {}
func (n *TextNode) Position() Pos { return n.Pos }

// VariableNode represents an interpolation: {{ expr }}
type VariableNode struct {
	Expr string
	Pos  Pos
}

func (*VariableNode) node()           {}
func (n *VariableNode) Position() Pos { return n.Pos }

// BlockNode represents a control statement: {% stmt %}
type BlockNode struct {
	Stmt string
	Pos  Pos
}

func (*BlockNode) node()           {}
func (n *BlockNode) Position() Pos { return n.Pos }

// CommentNode represents a comment: {# text #}
type CommentNode struct {
	Text string
	Pos  Pos
}

func (*CommentNode) node()           {}
func (n *CommentNode) Position() Pos { return n.Pos }

// Parse splits src into nodes, one per segment and in source order.
// It never fails; statements and expressions are checked when compiled.
func Parse(src string) []Node {
	segs := Tokenize(src)
	nodes := make([]Node, 0, len(segs))
	pc := positionCounter{src: src, line: 1, col: 1}
	for _, s := range segs {
		nodes = append(nodes, buildNode(s, pc.at(s.Offset)))
	}
	return nodes
}

func buildNode(s Segment, pos Pos) Node {
	switch s.Kind {
	case SegmentBlock:
		return &BlockNode{Stmt: tagContent(s.Raw, BlockTagStart, BlockTagEnd), Pos: pos}
	case SegmentVariable:
		return &VariableNode{Expr: tagContent(s.Raw, VariableTagStart, VariableTagEnd), Pos: pos}
	case SegmentComment:
		return &CommentNode{Text: tagContent(s.Raw, CommentTagStart, CommentTagEnd), Pos: pos}
	default:
		return &TextNode{Text: s.Raw, Pos: pos}
	}
}

func tagContent(raw, start, end string) string {
	return strings.TrimSpace(raw[len(start) : len(raw)-len(end)])
}

// positionCounter converts increasing byte offsets into line/column pairs
// without rescanning the source from the beginning each time.
type positionCounter struct {
	src  string
	off  int
	line int
	col  int
}

func (pc *positionCounter) at(offset int) Pos {
	for ; pc.off < offset; pc.off++ {
		if pc.src[pc.off] == '\n' {
			pc.line++
			pc.col = 1
		} else {
			pc.col++
		}
	}
	return Pos{Offset: offset, Line: pc.line, Col: pc.col}
}
