// Package csv reads and writes delimited text as a single-sheet workbook.
//
// Every field is read back as a string cell. The byte order mark, when
// present, selects the input encoding; otherwise reader.WithEncoding does,
// defaulting to UTF-8.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/reader"
	"github.com/tsawler/sheetstream/textenc"
)

// SheetName is the name of the only sheet of a delimited text document.
const SheetName = ""

// Reader reads a delimited text document.
type Reader struct {
	src  io.ReaderAt
	size int64
	file *os.File
	opts reader.Options

	sheets *model.SheetList
}

// Open opens the file at filename.
func Open(filename string, opts ...reader.Option) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", model.ErrIO, filename, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", model.ErrIO, filename, err)
	}
	r, err := newReader(f, fi.Size(), opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// OpenReaderAt reads size bytes from ra.
func OpenReaderAt(ra io.ReaderAt, size int64, opts ...reader.Option) (*Reader, error) {
	return newReader(ra, size, opts)
}

func newReader(ra io.ReaderAt, size int64, opts []reader.Option) (*Reader, error) {
	o := reader.Apply(opts...)
	if o.FieldDelimiter == 0 {
		o.FieldDelimiter = ','
	}
	if !validDelimiter(o.FieldDelimiter) {
		return nil, fmt.Errorf("%w: invalid field delimiter %q", model.ErrInvalidArgument, o.FieldDelimiter)
	}
	if _, err := textenc.Lookup(encodingOrDefault(o.Encoding)); err != nil {
		return nil, err
	}

	r := &Reader{src: ra, size: size, opts: o}
	rows := &rowIterator{r: r}
	r.sheets = model.NewSheetList([]*model.Sheet{
		model.NewSheet(SheetName, 0, true, true, rows),
	})
	return r, nil
}

func encodingOrDefault(name string) string {
	if name == "" {
		return textenc.UTF8
	}
	return name
}

// validDelimiter mirrors the checks of encoding/csv so a bad delimiter is
// reported at open time instead of on the first read.
func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != 0xFFFD
}

// SheetIterator returns the single sheet.
func (r *Reader) SheetIterator() model.SheetIterator {
	return r.sheets
}

// Close releases the file opened by Open.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rowIterator parses records on demand. Each Rewind starts over from the
// beginning of the input, so it can be rewound any number of times.
type rowIterator struct {
	r *Reader

	parser *csv.Reader
	state  model.IteratorState
	record int
	key    int
	row    *model.Row
}

func (it *rowIterator) Rewind() error {
	src, err := textenc.NewUTF8Reader(io.NewSectionReader(it.r.src, 0, it.r.size), it.r.opts.Encoding)
	if err != nil {
		it.state = model.IteratorExhausted
		return err
	}
	p := csv.NewReader(src)
	p.Comma = it.r.opts.FieldDelimiter
	p.FieldsPerRecord = -1
	p.LazyQuotes = true

	it.parser = p
	it.state = model.IteratorPositioned
	it.record = 0
	it.key = 0
	it.row = nil
	return it.Next()
}

func (it *rowIterator) Next() error {
	if it.state != model.IteratorPositioned {
		return nil
	}
	for {
		fields, err := it.parser.Read()
		if errors.Is(err, io.EOF) {
			it.finish()
			return nil
		}
		if err != nil {
			it.finish()
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return fmt.Errorf("%w: line %d: %v", model.ErrIO, pe.Line, pe.Err)
			}
			return model.IOError(err)
		}
		it.record++

		row := recordRow(fields)
		if row.IsEmpty() && !it.r.opts.PreserveEmptyRows {
			continue
		}
		it.row = row
		it.key = it.record
		return nil
	}
}

func (it *rowIterator) finish() {
	it.state = model.IteratorExhausted
	it.row = nil
}

func (it *rowIterator) Valid() bool {
	return it.state == model.IteratorPositioned
}

func (it *rowIterator) Current() *model.Row {
	return it.row
}

func (it *rowIterator) Key() int {
	return it.key
}

func recordRow(fields []string) *model.Row {
	cells := make([]*model.Cell, len(fields))
	for i, f := range fields {
		cells[i] = model.NewCell(f)
	}
	return model.NewRow(cells, nil)
}
