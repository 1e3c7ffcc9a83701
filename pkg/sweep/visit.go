package sweep

import (
	"bytes"
	"fmt"
)

// Pretty returns a line-oriented string representation of a node list.
func Pretty(nodes []Node) string {
	var buf bytes.Buffer
	for _, n := range nodes {
		ppNode(&buf, n)
	}
	return buf.String()
}

func ppNode(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, "%-7s ", n.Position())
	switch t := n.(type) {
	case *TextNode:
		fmt.Fprintf(buf, "Text(%q)\n", t.Text)
	case *VariableNode:
		fmt.Fprintf(buf, "Variable(%q)\n", t.Expr)
	case *BlockNode:
		fmt.Fprintf(buf, "Block(%q)\n", t.Stmt)
	case *CommentNode:
		fmt.Fprintf(buf, "Comment(%q)\n", t.Text)
	}
}
