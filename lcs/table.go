package lcs

import (
	"fmt"
	"strings"
)

// Table is the optimal-length grid of two sequences a and b.
//
// Invariant: At(i, j) is the LCS length of a[:i] and b[:j]. Row 0 and
// column 0 are zero. The grid is (len(a)+1)×(len(b)+1), stored row-major
// in one slice, and is never mutated after BuildTable returns, so it may
// be read from several goroutines at once.
type Table struct {
	rows, cols int
	cells      []int
}

// BuildTable fills the LCS table of a and b.
//
// Algorithm Outline:
//  1. Let n = len(a), m = len(b). Allocate (n+1)×(m+1) cells, all zero.
//  2. For i = 1..n, j = 1..m:
//     a[i-1] == b[j-1] → T[i][j] = T[i-1][j-1] + 1
//     otherwise        → T[i][j] = max(T[i-1][j], T[i][j-1])
//
// Empty inputs are valid and give an all-zero table of length 0.
//
// Complexity:
//
//	Time   = O(n·m)
//	Memory = O(n·m)
func BuildTable[T comparable](a, b []T) *Table {
	n, m := len(a), len(b)
	t := &Table{rows: n + 1, cols: m + 1, cells: make([]int, (n+1)*(m+1))}
	cols := t.cols

	for i := 1; i <= n; i++ {
		row, prev := i*cols, (i-1)*cols
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				t.cells[row+j] = t.cells[prev+j-1] + 1
				continue
			}
			t.cells[row+j] = max(t.cells[prev+j], t.cells[row+j-1])
		}
	}

	return t
}

// BuildTableString is BuildTable over the runes of a and b.
func BuildTableString(a, b string) *Table {
	return BuildTable([]rune(a), []rune(b))
}

// Length returns the LCS length of a and b without keeping the table:
// only two rows are live at any time.
//
// Complexity: O(n·m) time, O(min(n,m)) memory.
func Length[T comparable](a, b []T) int {
	// Iterate over the longer sequence so the rows span the shorter one.
	if len(b) > len(a) {
		a, b = b, a
	}
	m := len(b)
	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[m]
}

// Rows returns len(a)+1.
func (t *Table) Rows() int { return t.rows }

// Cols returns len(b)+1.
func (t *Table) Cols() int { return t.cols }

// At returns the cell (i, j). Coordinates outside the table read as 0,
// which is also the value of the boundary row and column.
func (t *Table) At(i, j int) int {
	if i < 0 || j < 0 || i >= t.rows || j >= t.cols {
		return 0
	}

	return t.cells[i*t.cols+j]
}

// AtChecked is At with an ErrIndexOutOfRange for coordinates outside the table.
func (t *Table) AtChecked(i, j int) (int, error) {
	if i < 0 || j < 0 || i >= t.rows || j >= t.cols {
		return 0, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrIndexOutOfRange, i, j, t.rows, t.cols)
	}

	return t.cells[i*t.cols+j], nil
}

// Length returns the LCS length of the full sequences, the bottom-right cell.
func (t *Table) Length() int {
	return t.cells[len(t.cells)-1]
}

// Row returns a copy of row i, or nil if i is out of range.
func (t *Table) Row(i int) []int {
	if i < 0 || i >= t.rows {
		return nil
	}
	out := make([]int, t.cols)
	copy(out, t.cells[i*t.cols:(i+1)*t.cols])

	return out
}

// Grid returns a copy of the table as a slice of rows.
func (t *Table) Grid() [][]int {
	g := make([][]int, t.rows)
	for i := range g {
		g[i] = t.Row(i)
	}

	return g
}

// check returns ErrTableMismatch unless t was built for sequences of
// lengths n and m.
func (t *Table) check(n, m int) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrTableMismatch)
	}
	if t.rows != n+1 || t.cols != m+1 {
		return fmt.Errorf("%w: %dx%d table for lengths %d and %d",
			ErrTableMismatch, t.rows, t.cols, n, m)
	}

	return nil
}

// consistent reports whether cell (i, j), with i, j >= 1, holds what the
// recurrence gives it when the symbols at a[i-1] and b[j-1] are eq.
// A table built for other sequences of the same lengths fails this
// somewhere along any walk from the corner.
func (t *Table) consistent(i, j int, eq bool) bool {
	cur := t.At(i, j)
	if eq {
		return t.At(i-1, j-1)+1 == cur
	}

	return t.At(i-1, j) == cur || t.At(i, j-1) == cur
}

func mismatchAt(i, j int) error {
	return fmt.Errorf("%w: cell (%d,%d) disagrees with the sequences", ErrTableMismatch, i, j)
}

// String renders the table as a right-aligned grid, one row per line.
func (t *Table) String() string {
	width := len(fmt.Sprint(t.Length()))
	var sb strings.Builder
	for i := 0; i < t.rows; i++ {
		for j := 0; j < t.cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%*d", width, t.cells[i*t.cols+j])
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
