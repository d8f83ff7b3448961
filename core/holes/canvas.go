package holes

import (
	"fmt"
	"strings"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Placeholder is how an open cell is rendered by Canvas.String.
const Placeholder = "X"

// Cell is one slot of the compiled array. A placeholder stands for a hole.
type Cell struct {
	Token       string
	Src         int
	Placeholder bool
}

// Canvas is the decode-side compiled array. It starts with one placeholder
// and the head on it.
type Canvas struct {
	cells []Cell
	head  int
}

// NewCanvas returns a canvas holding a single placeholder.
func NewCanvas() *Canvas {
	return &Canvas{cells: []Cell{{Placeholder: true}}}
}

// Head returns the current cell index.
func (c *Canvas) Head() int {
	return c.head
}

// Len returns the number of cells including placeholders.
func (c *Canvas) Len() int {
	return len(c.cells)
}

// Cells returns a copy of the compiled array.
func (c *Canvas) Cells() []Cell {
	return append([]Cell(nil), c.cells...)
}

func (c *Canvas) insert(cell Cell) {
	c.cells = append(c.cells, Cell{})
	copy(c.cells[c.head+1:], c.cells[c.head:])
	c.cells[c.head] = cell
	c.head++
}

// Write inserts a terminal in front of the head and advances past it.
func (c *Canvas) Write(token string, src int) {
	c.insert(Cell{Token: token, Src: src})
}

// Gap inserts a new placeholder in front of the head and advances past it.
func (c *Canvas) Gap() {
	c.insert(Cell{Placeholder: true})
}

// Jump moves the head by step (+1 or -1) until it rests on a placeholder.
// op and token describe the operation for error reporting. Leaving the array
// fails with a JumpError and leaves the head unchanged.
func (c *Canvas) Jump(step, op int, token string) error {
	pos := c.head + step
	for pos >= 0 && pos < len(c.cells) && !c.cells[pos].Placeholder {
		pos += step
	}
	if pos < 0 || pos >= len(c.cells) {
		return &codecerrors.JumpError{Op: op, Token: token, Head: c.head, Boundary: len(c.cells)}
	}
	c.head = pos
	return nil
}

// Terminals returns the filled cells in target order.
func (c *Canvas) Terminals() []Cell {
	out := make([]Cell, 0, len(c.cells))
	for _, cell := range c.cells {
		if !cell.Placeholder {
			out = append(out, cell)
		}
	}
	return out
}

// String renders the array as "tok(src) X ... (head: n)".
func (c *Canvas) String() string {
	parts := make([]string, len(c.cells))
	for i, cell := range c.cells {
		if cell.Placeholder {
			parts[i] = Placeholder
		} else {
			parts[i] = fmt.Sprintf("%s(%d)", cell.Token, cell.Src)
		}
	}
	return fmt.Sprintf("%s (head: %d)", strings.Join(parts, " "), c.head)
}
