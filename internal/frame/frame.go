// Package frame holds the numeric tables exchanged between pipeline stages.
//
// Missing values are NaN. A table is never mutated in place by the helpers of this package; they
// return new tables sharing no row storage with their input.
package frame

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyTable      = errors.New("table has no rows")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrRowWidth        = errors.New("row width does not match column count")
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Table is a column-named matrix of float64 values.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// New creates a table, checking every row has one value per column.
func New(columns []string, rows [][]float64) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return nil, errors.Wrapf(ErrDuplicateColumn, "column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.Wrapf(ErrRowWidth, "row %d has %d values, want %d", i, len(row), len(columns))
		}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

func (t *Table) NumRows() int { return len(t.Rows) }

func (t *Table) NumCols() int { return len(t.Columns) }

// ColumnIndex returns the index of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}

	return -1
}

// Column returns a copy of the values of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, errors.Wrapf(ErrUnknownColumn, "column %q", name)
	}
	col := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[idx]
	}

	return col, nil
}

// Select returns a table with the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.ColumnIndex(name)
		if idx[i] < 0 {
			return nil, errors.Wrapf(ErrUnknownColumn, "column %q", name)
		}
	}

	rows := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]float64, len(idx))
		for j, k := range idx {
			out[j] = row[k]
		}
		rows[i] = out
	}

	return &Table{Columns: append([]string(nil), names...), Rows: rows}, nil
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	res, _ := t.Select(keep...) // every kept name exists

	return res
}

// WithColumn returns a copy of the table with values appended as the last column.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if t.ColumnIndex(name) >= 0 {
		return nil, errors.Wrapf(ErrDuplicateColumn, "column %q", name)
	}
	if len(values) != len(t.Rows) {
		return nil, errors.Wrapf(ErrRowWidth, "got %d values for %d rows", len(values), len(t.Rows))
	}
	rows := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]float64, len(row)+1)
		copy(out, row)
		out[len(row)] = values[i]
		rows[i] = out
	}

	return &Table{Columns: append(append([]string(nil), t.Columns...), name), Rows: rows}, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	rows := make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]float64(nil), row...)
	}

	return &Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// HasMissing reports whether any value is NaN.
func (t *Table) HasMissing() bool {
	for _, row := range t.Rows {
		for _, v := range row {
			if math.IsNaN(v) {
				return true
			}
		}
	}

	return false
}

// Matrix copies the table values into a dense matrix.
func (t *Table) Matrix() (*mat.Dense, error) {
	if len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	if len(t.Columns) == 0 {
		return nil, errors.Wrap(ErrUnknownColumn, "table has no columns")
	}
	m := mat.NewDense(len(t.Rows), len(t.Columns), nil)
	for i, row := range t.Rows {
		m.SetRow(i, row)
	}

	return m, nil
}

// FromMatrix builds a table from a dense matrix.
func FromMatrix(columns []string, m mat.Matrix) (*Table, error) {
	r, c := m.Dims()
	if c != len(columns) {
		return nil, errors.Wrapf(ErrRowWidth, "matrix has %d columns, want %d", c, len(columns))
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}

	return New(append([]string(nil), columns...), rows)
}
