package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tsawler/sheetstream/model"
)

// MaxColumns is the number of columns a worksheet can hold (A through XFD).
const MaxColumns = 16384

// MaxRows is the number of rows a worksheet can hold.
const MaxRows = 1048576

// ParseCellRef splits a reference such as "B7" or "$AA$100" into zero-based
// column and row indexes.
func ParseCellRef(ref string) (col, row int, err error) {
	ref = strings.ReplaceAll(ref, "$", "")
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	switch {
	case ref == "":
		return 0, 0, fmt.Errorf("%w: empty cell reference", model.ErrInvalidArgument)
	case i == 0:
		return 0, 0, fmt.Errorf("%w: cell reference %q has no column", model.ErrInvalidArgument, ref)
	case i == len(ref):
		return 0, 0, fmt.Errorf("%w: cell reference %q has no row", model.ErrInvalidArgument, ref)
	}

	col = ColumnToIndex(ref[:i])
	if col < 0 {
		return 0, 0, fmt.Errorf("%w: column %q out of range", model.ErrInvalidArgument, ref[:i])
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 || n > MaxRows {
		return 0, 0, fmt.Errorf("%w: row %q out of range", model.ErrInvalidArgument, ref[i:])
	}
	return col, n - 1, nil
}

// ColumnToIndex converts column letters to a zero-based index: A is 0, Z is
// 25, AA is 26. It returns -1 for anything that is not a column.
func ColumnToIndex(letters string) int {
	if letters == "" || len(letters) > 3 {
		return -1
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A') + 1
	}
	if n > MaxColumns {
		return -1
	}
	return n - 1
}

// IndexToColumn converts a zero-based column index to its letters. Indexes
// past MaxColumns still convert; the writer rejects them before they get
// here.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// CellRef formats zero-based indexes as a reference such as "C4".
func CellRef(col, row int) string {
	return IndexToColumn(col) + strconv.Itoa(row+1)
}

// RangeRef formats a block as "A1:D1".
func RangeRef(startCol, startRow, endCol, endRow int) string {
	return CellRef(startCol, startRow) + ":" + CellRef(endCol, endRow)
}

// ParseRangeRef parses "A1:D10" into zero-based corner coordinates.
func ParseRangeRef(ref string) (startCol, startRow, endCol, endRow int, err error) {
	from, to, ok := strings.Cut(ref, ":")
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("%w: range %q has no colon", model.ErrInvalidArgument, ref)
	}
	if startCol, startRow, err = ParseCellRef(from); err != nil {
		return 0, 0, 0, 0, err
	}
	if endCol, endRow, err = ParseCellRef(to); err != nil {
		return 0, 0, 0, 0, err
	}
	return startCol, startRow, endCol, endRow, nil
}

// columnOf returns the column of a cell reference, or -1.
func columnOf(ref string) int {
	i := 0
	for i < len(ref) && (isLetter(ref[i]) || ref[i] == '$') {
		i++
	}
	return ColumnToIndex(strings.ReplaceAll(ref[:i], "$", ""))
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
