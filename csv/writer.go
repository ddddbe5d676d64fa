package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/textenc"
	"github.com/tsawler/sheetstream/writer"
)

type state int

const (
	stateCreated state = iota
	stateOpened
	stateClosed
)

// Writer writes rows as delimited text. Styles are ignored and empty rows
// are not written.
type Writer struct {
	delimiter  rune
	addBOM     bool
	tempFolder string
	logger     *slog.Logger

	state state
	out   *writer.Output
	csv   *csv.Writer
}

// NewWriter returns a writer using ',' and a UTF-8 byte order mark.
func NewWriter() *Writer {
	return &Writer{
		delimiter:  ',',
		addBOM:     true,
		tempFolder: os.TempDir(),
		logger:     slog.New(slog.DiscardHandler),
	}
}

func (w *Writer) ensureNotOpened() error {
	switch w.state {
	case stateOpened:
		return fmt.Errorf("%w: configuration must be set before opening", model.ErrWriterAlreadyOpened)
	case stateClosed:
		return model.ErrWriterClosed
	}
	return nil
}

func (w *Writer) ensureOpened() error {
	switch w.state {
	case stateCreated:
		return model.ErrWriterNotOpened
	case stateClosed:
		return model.ErrWriterClosed
	}
	return nil
}

// SetFieldDelimiter sets the field separator.
func (w *Writer) SetFieldDelimiter(r rune) error {
	if err := w.ensureNotOpened(); err != nil {
		return err
	}
	if !validDelimiter(r) {
		return fmt.Errorf("%w: invalid field delimiter %q", model.ErrInvalidArgument, r)
	}
	w.delimiter = r
	return nil
}

// SetShouldAddBOM controls whether the output starts with a UTF-8 byte
// order mark.
func (w *Writer) SetShouldAddBOM(add bool) error {
	if err := w.ensureNotOpened(); err != nil {
		return err
	}
	w.addBOM = add
	return nil
}

// SetTempFolder is accepted for parity with the workbook writers. Delimited
// text is streamed straight to the output.
func (w *Writer) SetTempFolder(dir string) error {
	if err := w.ensureNotOpened(); err != nil {
		return err
	}
	w.tempFolder = dir
	return nil
}

// SetLogger sets the logger used for cleanup warnings.
func (w *Writer) SetLogger(l *slog.Logger) error {
	if err := w.ensureNotOpened(); err != nil {
		return err
	}
	if l != nil {
		w.logger = l
	}
	return nil
}

// OpenToFile opens the writer for a file at path. The file appears only
// when Close succeeds.
func (w *Writer) OpenToFile(path string) error {
	if err := w.ensureNotOpened(); err != nil {
		return err
	}
	out, err := writer.CreateOutput(path)
	if err != nil {
		return err
	}
	return w.open(out)
}

// OpenToWriter opens the writer on dst.
func (w *Writer) OpenToWriter(dst io.Writer) error {
	if err := w.ensureNotOpened(); err != nil {
		return err
	}
	return w.open(writer.WrapOutput(dst))
}

func (w *Writer) open(out *writer.Output) error {
	w.out = out
	w.state = stateOpened
	if w.addBOM {
		if _, err := out.Write(textenc.BOM(textenc.UTF8)); err != nil {
			return w.fail(fmt.Errorf("%w: writing byte order mark: %v", model.ErrIO, err))
		}
	}
	w.csv = csv.NewWriter(out)
	w.csv.Comma = w.delimiter
	return nil
}

// AddRow writes one record. A validation or I/O failure discards the
// output and closes the writer.
func (w *Writer) AddRow(row *model.Row) error {
	if err := w.ensureOpened(); err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: nil row", model.ErrInvalidArgument)
	}
	if row.IsEmpty() {
		return nil
	}

	record := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		if err := writer.ValidateCell(c); err != nil {
			return w.fail(fmt.Errorf("column %d: %w", i+1, err))
		}
		field, err := formatField(c)
		if err != nil {
			return w.fail(fmt.Errorf("column %d: %w", i+1, err))
		}
		record[i] = field
	}
	if err := w.csv.Write(record); err != nil {
		return w.fail(fmt.Errorf("%w: %v", model.ErrIO, err))
	}
	return nil
}

// AddRows writes rows in order, stopping at the first failure.
func (w *Writer) AddRows(rows []*model.Row) error {
	for _, r := range rows {
		if err := w.AddRow(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the output. It is a no-op on a writer that was never
// opened or is already closed.
func (w *Writer) Close() error {
	if w.state != stateOpened {
		return nil
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return w.fail(fmt.Errorf("%w: %v", model.ErrIO, err))
	}
	if err := w.out.Commit(); err != nil {
		return w.fail(err)
	}
	w.state = stateClosed
	return nil
}

// Abort discards the output and closes the writer. It is a no-op unless
// the writer is open.
func (w *Writer) Abort() {
	if w.state == stateOpened {
		w.fail(nil)
	}
}

func (w *Writer) fail(err error) error {
	if w.out != nil {
		if derr := w.out.Discard(); derr != nil {
			w.logger.Warn("removing partial output", "path", w.out.Path(), "error", derr)
		}
	}
	w.state = stateClosed
	return err
}

func formatField(c *model.Cell) (string, error) {
	if c.IsEmpty() {
		return "", nil
	}
	switch v := c.Value.(type) {
	case string:
		return v, nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case time.Duration:
		return v.String(), nil
	}
	return writer.FormatNumber(c.Value)
}
