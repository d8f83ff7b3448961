package align

import (
	"strings"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Matrix is a dense binary alignment matrix. Rows are source positions,
// columns are target positions.
type Matrix struct {
	Rows  int
	Cols  int
	cells []bool
}

// NewMatrix returns an all-zero rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, cells: make([]bool, rows*cols)}
}

// MatrixFromLinks sets one cell per link.
func MatrixFromLinks(links Links, rows, cols int) (*Matrix, error) {
	if err := links.Validate(rows, cols); err != nil {
		return nil, err
	}
	m := NewMatrix(rows, cols)
	for _, l := range links {
		m.Set(l.Src, l.Trg, true)
	}
	return m, nil
}

// At reports whether cell (row, col) is set.
func (m *Matrix) At(row, col int) bool {
	return m.cells[row*m.Cols+col]
}

// Set sets or clears cell (row, col).
func (m *Matrix) Set(row, col int, v bool) {
	m.cells[row*m.Cols+col] = v
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{Rows: m.Rows, Cols: m.Cols, cells: append([]bool(nil), m.cells...)}
}

// Transpose returns the cols x rows transpose.
func (m *Matrix) Transpose() *Matrix {
	t := NewMatrix(m.Cols, m.Rows)
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			t.Set(c, r, m.At(r, c))
		}
	}
	return t
}

// Clear zeroes all cells.
func (m *Matrix) Clear() {
	for i := range m.cells {
		m.cells[i] = false
	}
}

// Fill sets every cell of the rectangle [row1,row2) x [col1,col2).
func (m *Matrix) Fill(row1, col1, row2, col2 int) {
	for r := row1; r < row2; r++ {
		for c := col1; c < col2; c++ {
			m.Set(r, c, true)
		}
	}
}

// Count returns the number of set cells.
func (m *Matrix) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// Diff counts the cells in which m and o differ. Both must have the same shape.
func (m *Matrix) Diff(o *Matrix) int {
	n := 0
	for i := range m.cells {
		if m.cells[i] != o.cells[i] {
			n++
		}
	}
	return n
}

// ColumnSums counts set cells per column inside [row1,row2), restricted to
// columns [col1,col2). The result is indexed from col1.
func (m *Matrix) ColumnSums(row1, row2, col1, col2 int) []int {
	sums := make([]int, col2-col1)
	for r := row1; r < row2; r++ {
		for c := col1; c < col2; c++ {
			if m.At(r, c) {
				sums[c-col1]++
			}
		}
	}
	return sums
}

// Row returns the set column indices of row r in ascending order.
func (m *Matrix) Row(r int) []int {
	var out []int
	for c := 0; c < m.Cols; c++ {
		if m.At(r, c) {
			out = append(out, c)
		}
	}
	return out
}

// RowsEqual reports whether rows a and b have identical cells.
func (m *Matrix) RowsEqual(a, b int) bool {
	for c := 0; c < m.Cols; c++ {
		if m.At(a, c) != m.At(b, c) {
			return false
		}
	}
	return true
}

// Links lists the set cells, ordered by row then column.
func (m *Matrix) Links() Links {
	var out Links
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.At(r, c) {
				out = append(out, Link{Src: r, Trg: c})
			}
		}
	}
	return out
}

func (m *Matrix) columnEmpty(c int) bool {
	for r := 0; r < m.Rows; r++ {
		if m.At(r, c) {
			return false
		}
	}
	return true
}

// FillTargetGaps aligns unaligned target positions. Each maximal run of
// empty columns gets the union of the column to its left and the column to
// its right; a run at the start of the sentence has no left neighbour.
func (m *Matrix) FillTargetGaps() {
	empty := make([]bool, m.Cols)
	for c := range empty {
		empty[c] = m.columnEmpty(c)
	}
	for start := 0; start < m.Cols; {
		if !empty[start] {
			start++
			continue
		}
		end := start + 1
		for end < m.Cols && empty[end] {
			end++
		}
		fill := make([]bool, m.Rows)
		if start > 0 {
			for r := range fill {
				fill[r] = m.At(r, start-1)
			}
		}
		if end < m.Cols {
			for r := range fill {
				fill[r] = fill[r] || m.At(r, end)
			}
		}
		for c := start; c < end; c++ {
			for r := range fill {
				m.Set(r, c, fill[r])
			}
		}
		start = end
	}
}

// FillSourceGaps is FillTargetGaps applied to rows.
func (m *Matrix) FillSourceGaps() {
	t := m.Transpose()
	t.FillTargetGaps()
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			m.Set(r, c, t.At(c, r))
		}
	}
}

// String renders the matrix as rows of 0/1 digits.
func (m *Matrix) String() string {
	var b strings.Builder
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.At(r, c) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseMatrix reads the String form back. Intended for fixtures.
func ParseMatrix(s string) (*Matrix, error) {
	var rows []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return NewMatrix(0, 0), nil
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for r, line := range rows {
		if len(line) != m.Cols {
			return nil, codecerrors.NewParse("matrix", "", "ragged rows")
		}
		for c, ch := range line {
			switch ch {
			case '1':
				m.Set(r, c, true)
			case '0':
			default:
				return nil, codecerrors.NewParse("matrix", "", "unexpected character "+string(ch))
			}
		}
	}
	return m, nil
}
