package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// rowIterator streams the rows of one worksheet part. It reads exactly one
// row element per call to Next; rows missing from the part are synthesized
// from the row counter when empty rows are preserved.
type rowIterator struct {
	open          func(part string) (io.ReadCloser, error)
	part          string
	format        *cellFormatter
	preserveEmpty bool

	state   model.IteratorState
	rewound bool
	cur     *xmlcursor.Cursor

	numColumns  int // capacity hint from dimension and spans
	building    *model.Row
	lastParsed  int // row number of the last row element seen
	lastColumn  int
	endOfSheet  bool
	rowBuffer   *model.Row
	lastEmitted int // row number of rowBuffer
	next        int // row number to be returned, when preserving empty rows
}

func newRowIterator(open func(string) (io.ReadCloser, error), part string, format *cellFormatter, preserveEmpty bool) *rowIterator {
	return &rowIterator{open: open, part: part, format: format, preserveEmpty: preserveEmpty}
}

// Rewind starts the iteration. It may only be called once.
func (it *rowIterator) Rewind() error {
	if it.rewound {
		return fmt.Errorf("%w: worksheet %s", model.ErrIteratorNotRewindable, it.part)
	}
	it.rewound = true

	rc, err := it.open(it.part)
	if err != nil {
		it.state = model.IteratorExhausted
		return err
	}
	it.cur = xmlcursor.New(rc, it.part)
	it.cur.On("dimension", xmlcursor.Start, it.onDimension)
	it.cur.On("row", xmlcursor.Start, it.onRowStart)
	it.cur.On("c", xmlcursor.Start, it.onCell)
	it.cur.On("row", xmlcursor.End, it.onRowEnd)
	it.cur.On("sheetData", xmlcursor.End, it.onSheetDataEnd)

	it.next = 1
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
	it.next++
	return it.advance()
}

func (it *rowIterator) advance() error {
	needsData := it.lastEmitted == 0 || !it.preserveEmpty || it.lastEmitted < it.next
	if !needsData {
		return nil
	}
	if it.endOfSheet {
		it.finish()
		return nil
	}

	it.building = nil
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
	it.rowBuffer = nil
	it.Close()
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
	if it.preserveEmpty && it.lastEmitted > it.next {
		return model.NewRow(nil, nil)
	}
	return it.rowBuffer
}

// Key returns the 1-based row number of the current row.
func (it *rowIterator) Key() int {
	if it.preserveEmpty {
		return it.next
	}
	return it.lastEmitted
}

// Close releases the worksheet stream.
func (it *rowIterator) Close() error {
	if it.cur == nil {
		return nil
	}
	err := it.cur.Close()
	it.cur = nil
	return err
}

func (it *rowIterator) onDimension(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	ref := c.Attr("ref")
	if _, end, ok := strings.Cut(ref, ":"); ok {
		ref = end
	}
	if col := columnOf(ref); col >= 0 {
		it.numColumns = col + 1
	}
	return xmlcursor.Continue, nil
}

func (it *rowIterator) onRowStart(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	index := it.lastParsed + 1
	if n, err := strconv.Atoi(c.Attr("r")); err == nil && n > 0 {
		index = n
	}
	it.lastParsed = index

	capacity := it.numColumns
	if _, hi, ok := strings.Cut(c.Attr("spans"), ":"); ok {
		if n, err := strconv.Atoi(hi); err == nil && n > 0 && n <= MaxColumns {
			capacity = n
		}
	}
	it.building = &model.Row{Cells: make([]*model.Cell, 0, capacity)}
	it.lastColumn = -1
	return xmlcursor.Continue, nil
}

func (it *rowIterator) onCell(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	col := columnOf(c.Attr("r"))
	if col < 0 {
		col = it.lastColumn + 1
	}
	n, err := c.Expand()
	if err != nil {
		return xmlcursor.Stop, err
	}
	if it.building == nil || col >= MaxColumns {
		return xmlcursor.Continue, nil
	}
	it.building.SetCell(col, it.format.format(n))
	it.lastColumn = col
	return xmlcursor.Continue, nil
}

func (it *rowIterator) onRowEnd(*xmlcursor.Cursor) (xmlcursor.Action, error) {
	row := it.building
	it.building = nil
	if row == nil || (row.IsEmpty() && !it.preserveEmpty) {
		return xmlcursor.Continue, nil
	}
	it.rowBuffer = row
	it.lastEmitted = it.lastParsed
	return xmlcursor.Stop, nil
}

func (it *rowIterator) onSheetDataEnd(*xmlcursor.Cursor) (xmlcursor.Action, error) {
	it.endOfSheet = true
	return xmlcursor.Stop, nil
}
