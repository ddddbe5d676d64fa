package writer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/sheetstream/model"
)

// MaxSheetNameLength is the longest sheet name spreadsheet applications
// accept.
const MaxSheetNameLength = 31

const invalidSheetNameChars = `\/?*:[]`

// ColumnWidth is a width applied to an inclusive range of zero-based
// columns.
type ColumnWidth struct {
	From  int
	To    int
	Width float64
}

// Range is a rectangular block of cells given by its zero-based top-left
// and bottom-right (column, row) coordinates.
type Range struct {
	TopLeft     [2]int
	BottomRight [2]int
}

// Sheet is one sheet of a workbook being written.
type Sheet struct {
	owner   *Writer
	name    string
	index   int
	visible bool

	lastRow int // 1-based index of the last row position consumed
	widths  []ColumnWidth
	merges  []Range
	started bool
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// SetName renames the sheet. The name must be unique in the workbook, at
// most 31 characters, must not contain \ / ? * : [ ] and must not start or
// end with a single quote.
func (s *Sheet) SetName(name string) error {
	if err := validateSheetName(name); err != nil {
		return err
	}
	for _, other := range s.owner.sheets {
		if other != s && strings.EqualFold(other.name, name) {
			return fmt.Errorf("%w: sheet name %q is already used", model.ErrInvalidArgument, name)
		}
	}
	s.name = name
	return nil
}

func validateSheetName(name string) error {
	var problems []string
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "it must not be blank")
	}
	if utf8.RuneCountInString(name) > MaxSheetNameLength {
		problems = append(problems, fmt.Sprintf("it must not exceed %d characters", MaxSheetNameLength))
	}
	if strings.ContainsAny(name, invalidSheetNameChars) {
		problems = append(problems, `it must not contain \ / ? * : [ or ]`)
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		problems = append(problems, "it must not start or end with a single quote")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: invalid sheet name %q: %s", model.ErrInvalidArgument, name, strings.Join(problems, "; "))
	}
	return nil
}

// Index returns the zero-based position of the sheet.
func (s *Sheet) Index() int {
	return s.index
}

// IsActive reports whether the sheet is the workbook's current sheet.
func (s *Sheet) IsActive() bool {
	return s.owner.current == s
}

// IsVisible reports whether the sheet is shown.
func (s *Sheet) IsVisible() bool {
	return s.visible
}

// SetVisible hides or shows the sheet.
func (s *Sheet) SetVisible(visible bool) {
	s.visible = visible
}

// LastRowIndex returns the 1-based index of the last row position used,
// counting skipped empty rows, or 0 for a new sheet.
func (s *Sheet) LastRowIndex() int {
	return s.lastRow
}

// Started reports whether the format has begun writing rows for the sheet.
// Column widths are fixed from then on.
func (s *Sheet) Started() bool {
	return s.started
}

// MarkStarted is called by formats once they have written the sheet header.
func (s *Sheet) MarkStarted() {
	s.started = true
}

// SetColumnWidth sets the width of the given zero-based columns. Widths
// must be set before the first row of the sheet is written.
func (s *Sheet) SetColumnWidth(width float64, cols ...int) error {
	for _, c := range cols {
		if err := s.SetColumnWidthForRange(width, c, c); err != nil {
			return err
		}
	}
	return nil
}

// SetColumnWidthForRange sets the width of columns from through to.
func (s *Sheet) SetColumnWidthForRange(width float64, from, to int) error {
	if s.started {
		return fmt.Errorf("%w: column widths must be set before rows are written to sheet %q", model.ErrInvalidArgument, s.name)
	}
	if width <= 0 || from < 0 || to < from {
		return fmt.Errorf("%w: invalid column width %v for columns %d-%d", model.ErrInvalidArgument, width, from, to)
	}
	if limit := s.owner.opts.MaxColumns; limit > 0 && to >= limit {
		return fmt.Errorf("%w: column %d is past the last column %d", model.ErrInvalidArgument, to, limit-1)
	}
	s.widths = append(s.widths, ColumnWidth{From: from, To: to, Width: width})
	return nil
}

// ColumnWidths returns the widths set on the sheet in the order they were
// set.
func (s *Sheet) ColumnWidths() []ColumnWidth {
	return s.widths
}

// MergeCells records a merged block. Coordinates are zero-based
// (column, row) pairs; MergeCells([2]int{0, 0}, [2]int{3, 0}) merges A1:D1.
func (s *Sheet) MergeCells(topLeft, bottomRight [2]int) error {
	if topLeft[0] < 0 || topLeft[1] < 0 || bottomRight[0] < topLeft[0] || bottomRight[1] < topLeft[1] {
		return fmt.Errorf("%w: invalid merge range %v-%v", model.ErrInvalidArgument, topLeft, bottomRight)
	}
	opts := s.owner.opts
	if (opts.MaxColumns > 0 && bottomRight[0] >= opts.MaxColumns) || (opts.MaxRows > 0 && bottomRight[1] >= opts.MaxRows) {
		return fmt.Errorf("%w: merge range %v-%v is outside the sheet", model.ErrInvalidArgument, topLeft, bottomRight)
	}
	s.merges = append(s.merges, Range{TopLeft: topLeft, BottomRight: bottomRight})
	return nil
}

// Merges returns the merged blocks of the sheet.
func (s *Sheet) Merges() []Range {
	return s.merges
}
