package model

import "github.com/tsawler/sheetstream/style"

// Row is an ordered list of cells; the slice index is the zero-based column.
type Row struct {
	Cells []*Cell
	Style *style.Style
}

// NewRow returns a row holding cells and an optional row style.
func NewRow(cells []*Cell, s *style.Style) *Row {
	return &Row{Cells: cells, Style: s}
}

// NewRowFromValues builds a row with one inferred cell per value.
func NewRowFromValues(values []any, s *style.Style) *Row {
	cells := make([]*Cell, len(values))
	for i, v := range values {
		cells[i] = NewCell(v)
	}
	return &Row{Cells: cells, Style: s}
}

// Values returns the cell values in column order.
func (r *Row) Values() []any {
	out := make([]any, len(r.Cells))
	for i, c := range r.Cells {
		if c != nil {
			out[i] = c.Value
		}
	}
	return out
}

// Cell returns the cell at column i, or nil when out of range.
func (r *Row) Cell(i int) *Cell {
	if i < 0 || i >= len(r.Cells) {
		return nil
	}
	return r.Cells[i]
}

// SetCell places c at column i, padding with empty cells as needed.
func (r *Row) SetCell(i int, c *Cell) {
	for len(r.Cells) <= i {
		r.Cells = append(r.Cells, NewEmptyCell())
	}
	r.Cells[i] = c
}

// AddCell appends a cell.
func (r *Row) AddCell(c *Cell) {
	r.Cells = append(r.Cells, c)
}

// NumCells returns the number of cells in the row.
func (r *Row) NumCells() int {
	return len(r.Cells)
}

// SetStyle sets the row style.
func (r *Row) SetStyle(s *style.Style) {
	r.Style = s
}

// IsEmpty reports whether the row has no cells or only empty cells.
func (r *Row) IsEmpty() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
