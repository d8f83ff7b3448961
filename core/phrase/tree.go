// Package phrase segments a binary alignment matrix into phrase blocks.
//
// Segmentation is a greedy top-down search: the tree starts as one rectangle
// covering the whole matrix and is repeatedly split at the source row with
// the lowest crossing cost. A split divides every leaf spanning the row into
// column runs that keep either the rows above or the rows below it. Nodes
// live in an arena and refer to their children by index.
package phrase

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/osmcodec/core/align"
)

// DefaultTolerance is the highest normalized cost at which a split is taken.
const DefaultTolerance = 0.1

// zeroCost ends the row search early.
const zeroCost = 1e-7

// Options configures Segment.
type Options struct {
	// Tolerance is the exclusive upper bound on the cost of a split.
	Tolerance float64
	// Restricted allows at most one column split point per leaf.
	Restricted bool
	// NoSplit lists rows that are never used as split points.
	NoSplit []int
}

// DefaultOptions returns unrestricted segmentation at DefaultTolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

// Rect is the block [Row1,Row2) x [Col1,Col2).
type Rect struct {
	Row1, Col1, Row2, Col2 int
}

// Area returns the number of cells in r.
func (r Rect) Area() int {
	return (r.Row2 - r.Row1) * (r.Col2 - r.Col1)
}

// Contains reports whether o lies inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Row1 >= r.Row1 && o.Row2 <= r.Row2 && o.Col1 >= r.Col1 && o.Col2 <= r.Col2
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d]", r.Row1, r.Row2, r.Col1, r.Col2)
}

// Node is one rectangle of the tree. Children index into the tree's arena.
type Node struct {
	Rect
	Children []int
}

// Leaf reports whether n has no children.
func (n Node) Leaf() bool {
	return len(n.Children) == 0
}

// Stop is the reason segmentation ended.
type Stop int

const (
	// StopExhausted means every row was split or excluded.
	StopExhausted Stop = iota
	// StopTolerance means the best remaining split cost reached the
	// tolerance; the remaining leaves are unsplittable rectangles.
	StopTolerance
)

func (s Stop) String() string {
	if s == StopTolerance {
		return "tolerance"
	}
	return "exhausted"
}

// Split records one accepted split.
type Split struct {
	Row  int
	Cost float64
}

// Tree is a segmentation result. Node 0 is the root.
type Tree struct {
	nodes  []Node
	splits []Split
	stop   Stop
}

// Segment builds the segmentation tree of m.
func Segment(m *align.Matrix, opts Options) *Tree {
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	t := &Tree{nodes: []Node{{Rect: Rect{Row2: m.Rows, Col2: m.Cols}}}}
	if m.Rows == 0 || m.Cols == 0 {
		return t
	}

	visited := make(map[int]bool)
	for _, r := range opts.NoSplit {
		visited[r] = true
	}
	for len(visited) < m.Rows {
		best, bestCost := -1, 1000000.0
		for row := 1; row < m.Rows; row++ {
			if visited[row] {
				continue
			}
			cost := t.cost(0, row, m, opts.Restricted)
			if cost < bestCost {
				best, bestCost = row, cost
				if cost <= zeroCost {
					break
				}
			}
		}
		if best < 0 {
			break
		}
		if bestCost >= opts.Tolerance {
			t.stop = StopTolerance
			break
		}
		t.split(0, best, m, opts.Restricted)
		t.splits = append(t.splits, Split{Row: best, Cost: bestCost})
		visited[best] = true
	}
	return t
}

// cost sums the normalized crossing cost of splitting every leaf under idx
// that spans row.
func (t *Tree) cost(idx, row int, m *align.Matrix, restricted bool) float64 {
	n := t.nodes[idx]
	if row <= n.Row1 || row >= n.Row2 {
		return 0
	}
	if !n.Leaf() {
		sum := 0.0
		for _, c := range n.Children {
			sum += t.cost(c, row, m, restricted)
		}
		return sum
	}
	upper := m.ColumnSums(n.Row1, row, n.Col1, n.Col2)
	lower := m.ColumnSums(row, n.Row2, n.Col1, n.Col2)
	var abs int
	if restricted {
		abs = minOf(singleSplitCosts(upper, lower))
		if lo := minOf(singleSplitCosts(lower, upper)); lo < abs {
			abs = lo
		}
	} else {
		for i := range upper {
			abs += min(upper[i], lower[i])
		}
	}
	return float64(abs) / float64(n.Area())
}

// singleSplitCosts returns, for every cut k in [0, len], the mass lost when
// columns before k keep the first half and the rest keep the second.
func singleSplitCosts(first, second []int) []int {
	n := len(first)
	out := make([]int, n+1)
	suffix := 0
	for k := n; k >= 0; k-- {
		if k < n {
			suffix += first[k]
		}
		out[k] = suffix
	}
	prefix := 0
	for k := 0; k <= n; k++ {
		out[k] += prefix
		if k < n {
			prefix += second[k]
		}
	}
	return out
}

// argMin returns the first index of the smallest value.
func argMin(xs []int) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}
	return best
}

func minOf(xs []int) int {
	return xs[argMin(xs)]
}

func (t *Tree) add(r Rect) int {
	t.nodes = append(t.nodes, Node{Rect: r})
	return len(t.nodes) - 1
}

// split divides every leaf under idx that spans row.
func (t *Tree) split(idx, row int, m *align.Matrix, restricted bool) {
	n := t.nodes[idx]
	if row <= n.Row1 || row >= n.Row2 {
		return
	}
	if !n.Leaf() {
		for _, c := range n.Children {
			t.split(c, row, m, restricted)
		}
		return
	}
	upper := m.ColumnSums(n.Row1, row, n.Col1, n.Col2)
	lower := m.ColumnSums(row, n.Row2, n.Col1, n.Col2)
	top := Rect{Row1: n.Row1, Row2: row}
	bottom := Rect{Row1: row, Row2: n.Row2}

	var children []int
	if restricted {
		uplo := singleSplitCosts(upper, lower)
		loup := singleSplitCosts(lower, upper)
		pos := argMin(append(append([]int(nil), uplo...), loup...))
		first, second := top, bottom
		if pos >= len(uplo) {
			pos -= len(uplo)
			first, second = bottom, top
		}
		if pos > 0 {
			first.Col1, first.Col2 = n.Col1, n.Col1+pos
			children = append(children, t.add(first))
		}
		if n.Col1+pos < n.Col2 {
			second.Col1, second.Col2 = n.Col1+pos, n.Col2
			children = append(children, t.add(second))
		}
	} else {
		// runs of columns with the same majority half become one child
		for off := 0; off < len(upper); {
			useUpper := upper[off] >= lower[off]
			end := off + 1
			for end < len(upper) && (upper[end] >= lower[end]) == useUpper {
				end++
			}
			child := bottom
			if useUpper {
				child = top
			}
			child.Col1, child.Col2 = n.Col1+off, n.Col1+end
			children = append(children, t.add(child))
			off = end
		}
	}
	t.nodes[idx].Children = children
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns node i of the arena.
func (t *Tree) Node(i int) Node {
	return t.nodes[i]
}

// Root returns the root rectangle.
func (t *Tree) Root() Rect {
	return t.nodes[0].Rect
}

// Stop returns why segmentation ended.
func (t *Tree) Stop() Stop {
	return t.stop
}

// Splits returns the accepted splits in order.
func (t *Tree) Splits() []Split {
	return append([]Split(nil), t.splits...)
}

// Cost returns the cost of splitting the current tree at row.
func (t *Tree) Cost(row int, m *align.Matrix, restricted bool) float64 {
	return t.cost(0, row, m, restricted)
}

// Leaves returns the leaf rectangles in depth-first order.
func (t *Tree) Leaves() []Rect {
	var out []Rect
	var walk func(int)
	walk = func(i int) {
		n := t.nodes[i]
		if n.Leaf() {
			out = append(out, n.Rect)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(0)
	return out
}

// Project returns the block alignment: a matrix of the root's shape with
// every leaf rectangle set.
func (t *Tree) Project() *align.Matrix {
	root := t.Root()
	m := align.NewMatrix(root.Row2, root.Col2)
	for _, l := range t.Leaves() {
		m.Fill(l.Row1, l.Col1, l.Row2, l.Col2)
	}
	return m
}

// String dumps the tree one node per line, indented by depth.
func (t *Tree) String() string {
	var b strings.Builder
	var walk func(int, int)
	walk = func(i, depth int) {
		n := t.nodes[i]
		fmt.Fprintf(&b, "%s %s\n", strings.Repeat(" |", depth), n.Rect)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(0, 0)
	return b.String()
}
