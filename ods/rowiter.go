package ods

import (
	"fmt"
	"strconv"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// rowIterator streams the rows of one table from the shared content.xml
// cursor. A row element with number-rows-repeated is parsed once and
// served for each of the row indexes it covers.
//
// Cells are materialized one step late: a cell is added to the row only
// when the next cell starts or the row ends. At the row end this lets a
// trailing cell repeated up to exactly MaxColumns be dropped as padding.
type rowIterator struct {
	cur           *xmlcursor.Cursor
	name          string
	format        *cellFormatter
	preserveEmpty bool

	state    model.IteratorState
	rewound  bool
	detached bool

	building      *model.Row
	rowRepeat     int
	pending       *model.Cell
	pendingRepeat int
	processed     int // row indexes consumed, including skipped rows
	endOfSheet    bool

	buffer    *model.Row
	key       int
	bufferEnd int // last row index the buffered row covers
}

func newRowIterator(cur *xmlcursor.Cursor, name string, format *cellFormatter, preserveEmpty bool) *rowIterator {
	return &rowIterator{cur: cur, name: name, format: format, preserveEmpty: preserveEmpty}
}

// Rewind starts the iteration. It may only be called once, and only while
// the sheet iterator is still on this sheet.
func (it *rowIterator) Rewind() error {
	if it.rewound || it.detached {
		return fmt.Errorf("%w: sheet %q", model.ErrIteratorNotRewindable, it.name)
	}
	it.rewound = true

	it.cur.Reset()
	it.cur.OnNS(nsTable, "table-row", xmlcursor.Start, it.onRowStart)
	it.cur.OnNS(nsTable, "table-cell", xmlcursor.Start, it.onCell)
	it.cur.OnNS(nsTable, "covered-table-cell", xmlcursor.Start, it.onCell)
	it.cur.OnNS(nsTable, "table-row", xmlcursor.End, it.onRowEnd)
	it.cur.OnNS(nsTable, "table", xmlcursor.End, it.onTableEnd)
	return it.advance()
}

// Next moves to the following row.
func (it *rowIterator) Next() error {
	switch it.state {
	case model.IteratorNotStarted:
		return it.Rewind()
	case model.IteratorExhausted:
		return nil
	}
	return it.advance()
}

func (it *rowIterator) advance() error {
	if it.buffer != nil && it.key < it.bufferEnd {
		it.key++
		return nil
	}
	if it.endOfSheet || it.detached {
		it.finish()
		return nil
	}

	it.buffer = nil
	stopped, err := it.cur.Run()
	if err != nil {
		it.finish()
		return model.IOError(err)
	}
	if !stopped || it.endOfSheet {
		it.finish()
		return nil
	}
	it.state = model.IteratorPositioned
	return nil
}

func (it *rowIterator) finish() {
	it.state = model.IteratorExhausted
	it.buffer = nil
}

func (it *rowIterator) detach() {
	it.detached = true
	if it.state == model.IteratorPositioned {
		it.finish()
	}
}

// Valid reports whether Current returns a row.
func (it *rowIterator) Valid() bool {
	return it.state == model.IteratorPositioned
}

// Current returns the current row.
func (it *rowIterator) Current() *model.Row {
	if it.state != model.IteratorPositioned {
		return nil
	}
	return it.buffer
}

// Key returns the 1-based row number of the current row.
func (it *rowIterator) Key() int {
	return it.key
}

func repeatCount(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (it *rowIterator) onRowStart(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	it.rowRepeat = repeatCount(c.AttrNS(nsTable, "number-rows-repeated"))
	it.building = &model.Row{}
	it.pending = nil
	it.pendingRepeat = 0
	return xmlcursor.Continue, nil
}

func (it *rowIterator) onCell(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	repeat := repeatCount(c.AttrNS(nsTable, "number-columns-repeated"))
	n, err := c.Expand()
	if err != nil {
		return xmlcursor.Stop, err
	}
	if it.building == nil {
		return xmlcursor.Continue, nil
	}
	if it.pending != nil {
		addCells(it.building, it.pending, it.pendingRepeat)
	}
	it.pending = it.format.format(n)
	it.pendingRepeat = repeat
	return xmlcursor.Continue, nil
}

func (it *rowIterator) onRowEnd(*xmlcursor.Cursor) (xmlcursor.Action, error) {
	row := it.building
	if row == nil {
		return xmlcursor.Continue, nil
	}
	it.building = nil

	isEmpty := row.IsEmpty() && (it.pending == nil || it.pending.IsEmpty())
	repeat := it.pendingRepeat
	if isEmpty {
		repeat = 1
	}
	if it.pending != nil && len(row.Cells)+repeat != MaxColumns {
		addCells(row, it.pending, repeat)
	}
	it.pending = nil

	start := it.processed + 1
	it.processed += it.rowRepeat
	if isEmpty && !it.preserveEmpty {
		return xmlcursor.Continue, nil
	}
	it.buffer = row
	it.key = start
	it.bufferEnd = start + it.rowRepeat - 1
	return xmlcursor.Stop, nil
}

func (it *rowIterator) onTableEnd(*xmlcursor.Cursor) (xmlcursor.Action, error) {
	it.endOfSheet = true
	return xmlcursor.Stop, nil
}

// addCells appends n copies of c, never growing the row past MaxColumns.
func addCells(row *model.Row, c *model.Cell, n int) {
	for i := 0; i < n && len(row.Cells) < MaxColumns; i++ {
		if i == 0 {
			row.AddCell(c)
			continue
		}
		cp := *c
		row.AddCell(&cp)
	}
}
