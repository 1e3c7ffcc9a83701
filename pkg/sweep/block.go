package sweep

import (
	"strings"
)

const (
	stmtEndFor = "endfor"
	stmtEndIf  = "endif"
	stmtElse   = "else"
	stmtFor    = "for"
	stmtIn     = "in"
	stmtIf     = "if"
)

// loopContext is an active for loop. Its counter is the host variable that
// holds the loop position.
type loopContext struct {
	item    string
	counter string
}

func (c *compilation) compileBlock(n *BlockNode) (string, error) {
	switch n.Stmt {
	case stmtEndFor:
		c.popLoop()
		return c.w.closeLoop(), nil
	case stmtEndIf:
		return c.w.closeCond(), nil
	case stmtElse:
		if frag, ok := c.w.elseBranch(); ok {
			return frag, nil
		}
		return "", &UnsupportedBlockSyntaxError{Tag: n.Stmt, Pos: n.Pos}
	}

	parts := strings.Fields(n.Stmt)
	switch {
	case len(parts) == 4 && parts[0] == stmtFor && parts[2] == stmtIn && isIdentifier(parts[1]):
		// The iterable is compiled before the loop is pushed, so loop.index
		// in it refers to the enclosing loop.
		iterable, err := c.compileExpr(parts[3], n.Pos)
		if err != nil {
			return "", err
		}
		counter := c.pushLoop(parts[1])
		return c.w.openLoop(counter, c.backend.item(parts[1]), iterable), nil
	case len(parts) == 2 && parts[0] == stmtIf:
		cond, err := c.compileExpr(parts[1], n.Pos)
		if err != nil {
			return "", err
		}
		return c.w.openCond(cond), nil
	}
	return "", &UnsupportedBlockSyntaxError{Tag: n.Stmt, Pos: n.Pos}
}

func (c *compilation) pushLoop(item string) string {
	counter := c.backend.counter(len(c.loops) + 1)
	c.loops = append(c.loops, loopContext{item: item, counter: counter})
	return counter
}

// popLoop is a no-op when no loop is open.
func (c *compilation) popLoop() {
	if n := len(c.loops); n > 0 {
		c.loops = c.loops[:n-1]
	}
}

// isLoopItem reports whether name is bound by an active loop.
func (c *compilation) isLoopItem(name string) bool {
	for i := len(c.loops) - 1; i >= 0; i-- {
		if c.loops[i].item == name {
			return true
		}
	}
	return false
}

// currentCounter returns the counter of the innermost loop. Outside of any
// loop it falls back to the outermost counter name.
func (c *compilation) currentCounter() string {
	if n := len(c.loops); n > 0 {
		return c.loops[n-1].counter
	}
	return c.backend.counter(1)
}
