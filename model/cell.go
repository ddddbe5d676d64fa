package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tsawler/sheetstream/style"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeEmpty indicates an empty cell.
	CellTypeEmpty CellType = iota
	// CellTypeString indicates a string value.
	CellTypeString
	// CellTypeNumeric indicates an integer or floating point value.
	CellTypeNumeric
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeDate indicates a time.Time or time.Duration value.
	CellTypeDate
	// CellTypeError indicates a formula error or a value that could not be
	// converted. The erroring token is kept as the string value.
	CellTypeError
	// CellTypeUnsupported indicates a value no writer can serialize.
	CellTypeUnsupported
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeEmpty:
		return "empty"
	case CellTypeString:
		return "string"
	case CellTypeNumeric:
		return "numeric"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeDate:
		return "date"
	case CellTypeError:
		return "error"
	case CellTypeUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Cell is one value in a row, with an optional style.
//
// Readers produce values of type string, int64, float64, bool, time.Time and
// time.Duration. Writers accept any Go integer or float kind as well.
type Cell struct {
	Value any
	Type  CellType
	Style *style.Style
}

// NewCell returns a cell whose type is inferred from v.
func NewCell(v any) *Cell {
	return &Cell{Value: v, Type: TypeOf(v)}
}

// NewStyledCell returns a cell with an inferred type and the given style.
func NewStyledCell(v any, s *style.Style) *Cell {
	return &Cell{Value: v, Type: TypeOf(v), Style: s}
}

// NewErrorCell returns an error-typed cell carrying the erroring token,
// e.g. "#DIV/0!" or a raw value that failed conversion.
func NewErrorCell(token string) *Cell {
	return &Cell{Value: token, Type: CellTypeError}
}

// NewEmptyCell returns an empty cell.
func NewEmptyCell() *Cell {
	return &Cell{Type: CellTypeEmpty}
}

// TypeOf infers the cell type of a Go value.
func TypeOf(v any) CellType {
	switch x := v.(type) {
	case nil:
		return CellTypeEmpty
	case string:
		if x == "" {
			return CellTypeEmpty
		}
		return CellTypeString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return CellTypeNumeric
	case bool:
		return CellTypeBoolean
	case time.Time, time.Duration:
		return CellTypeDate
	default:
		return CellTypeUnsupported
	}
}

// SetValue replaces the value and re-infers the type.
func (c *Cell) SetValue(v any) {
	c.Value = v
	c.Type = TypeOf(v)
}

// SetType overrides the inferred type, e.g. to write a string as an
// error token.
func (c *Cell) SetType(t CellType) {
	c.Type = t
}

// IsEmpty reports whether the cell holds no value.
func (c *Cell) IsEmpty() bool {
	return c == nil || c.Type == CellTypeEmpty
}

// IsError reports whether the cell is error-typed.
func (c *Cell) IsError() bool {
	return c != nil && c.Type == CellTypeError
}

// String returns a display form of the value.
func (c *Cell) String() string {
	if c == nil || c.Value == nil {
		return ""
	}
	switch v := c.Value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
