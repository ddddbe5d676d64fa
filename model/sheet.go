package model

// IteratorState is the position of a forward-only iterator.
type IteratorState int

const (
	// IteratorNotStarted is the state before the first Rewind.
	IteratorNotStarted IteratorState = iota
	// IteratorPositioned means Current returns a row.
	IteratorPositioned
	// IteratorExhausted means the end of the sheet was reached.
	IteratorExhausted
)

// String returns the state name.
func (s IteratorState) String() string {
	switch s {
	case IteratorNotStarted:
		return "not started"
	case IteratorPositioned:
		return "positioned"
	case IteratorExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// RowIterator yields the rows of one sheet.
//
// Rewind must be called before the first row is read. Iterators over
// streamed XML may only be rewound once; a second call returns an error
// wrapping ErrIteratorNotRewindable.
//
//	for err := it.Rewind(); it.Valid(); err = it.Next() {
//		if err != nil { ... }
//		row := it.Current()
//	}
type RowIterator interface {
	Rewind() error
	Next() error
	Valid() bool
	Current() *Row
	// Key returns the 1-based row number of the current row in the sheet.
	Key() int
}

// SheetIterator yields the sheets of a workbook in document order.
type SheetIterator interface {
	Rewind() error
	Next() error
	Valid() bool
	Current() *Sheet
	// Key returns the zero-based index of the current sheet.
	Key() int
}

// Sheet is one read-side worksheet.
type Sheet struct {
	Name    string
	Index   int // zero-based position in the workbook
	Active  bool
	Visible bool

	rows RowIterator
}

// NewSheet returns a sheet backed by rows.
func NewSheet(name string, index int, active, visible bool, rows RowIterator) *Sheet {
	return &Sheet{Name: name, Index: index, Active: active, Visible: visible, rows: rows}
}

// Rows returns the row iterator of the sheet. The iterator is not started
// until its Rewind method is called.
func (s *Sheet) Rows() RowIterator {
	return s.rows
}

// Each rewinds it and calls fn for every row until the end of the sheet or
// the first error.
func Each(it RowIterator, fn func(key int, row *Row) error) error {
	if err := it.Rewind(); err != nil {
		return err
	}
	for it.Valid() {
		if err := fn(it.Key(), it.Current()); err != nil {
			return err
		}
		if err := it.Next(); err != nil {
			return err
		}
	}
	return nil
}

// ReadAll rewinds it and collects every row.
func ReadAll(it RowIterator) ([]*Row, error) {
	var rows []*Row
	err := Each(it, func(_ int, row *Row) error {
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

// SheetList is a SheetIterator over sheets that are all known when the
// workbook is opened. Unlike row iterators it can be rewound any number of
// times.
type SheetList struct {
	sheets  []*Sheet
	pos     int
	started bool
}

// NewSheetList returns an iterator over sheets.
func NewSheetList(sheets []*Sheet) *SheetList {
	return &SheetList{sheets: sheets}
}

func (l *SheetList) Rewind() error {
	l.pos = 0
	l.started = true
	return nil
}

func (l *SheetList) Next() error {
	if !l.started {
		return l.Rewind()
	}
	if l.pos < len(l.sheets) {
		l.pos++
	}
	return nil
}

func (l *SheetList) Valid() bool {
	return l.started && l.pos < len(l.sheets)
}

func (l *SheetList) Current() *Sheet {
	if !l.Valid() {
		return nil
	}
	return l.sheets[l.pos]
}

func (l *SheetList) Key() int {
	return l.pos
}

// Len returns the number of sheets.
func (l *SheetList) Len() int {
	return len(l.sheets)
}
