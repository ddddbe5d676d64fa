package writer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/tsawler/sheetstream/internal/zipfs"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/style"
)

// Package lists container entries that need a fixed position or no
// compression.
type Package struct {
	First  []string
	Stored []string
}

// Engine serializes a workbook in one container format. The Writer drives
// it; formats never see empty rows or unregistered styles.
type Engine interface {
	// Start prepares the working folder dir. styles is the workbook's
	// registry; it keeps growing until Finish.
	Start(dir string, styles *style.Registry) error

	// AddSheet creates the stream for a new sheet.
	AddSheet(s *Sheet) error

	// WriteRow appends one non-empty row at the 1-based index. Every cell
	// carries its registered style.
	WriteRow(s *Sheet, index int, cells []*model.Cell) error

	// Finish closes the sheet streams and writes the remaining parts into
	// the working folder.
	Finish(sheets []*Sheet, active *Sheet) (Package, error)

	// Abort closes any open files after a failure.
	Abort()
}

type state int

const (
	stateCreated state = iota
	stateOpened
	stateClosed
)

// Writer is a multi-sheet workbook writer. Rows are streamed to one
// temporary file per sheet; Close assembles the container.
type Writer struct {
	engine Engine
	opts   Options
	state  state

	out     *Output
	dir     string
	styles  *style.Registry
	sheets  []*Sheet
	current *Sheet
}

// New returns a writer driving engine.
func New(engine Engine, opts Options) *Writer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{engine: engine, opts: opts}
}

// EnsureNotOpened returns an error once the writer has been opened. Setters
// call it because configuration is fixed at open time.
func (w *Writer) EnsureNotOpened() error {
	switch w.state {
	case stateOpened:
		return fmt.Errorf("%w: configuration must be set before opening", model.ErrWriterAlreadyOpened)
	case stateClosed:
		return model.ErrWriterClosed
	}
	return nil
}

// SetTempFolder sets where the working folder is created.
func (w *Writer) SetTempFolder(dir string) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	w.opts.TempFolder = dir
	return nil
}

// SetShouldCreateNewSheetsAutomatically turns automatic sheet splitting on
// or off.
func (w *Writer) SetShouldCreateNewSheetsAutomatically(auto bool) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	w.opts.ShouldCreateNewSheetsAutomatically = auto
	return nil
}

// SetMaxRowsPerSheet sets the row ceiling for automatic splitting.
func (w *Writer) SetMaxRowsPerSheet(n int) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	if n < 1 || (w.opts.MaxRows > 0 && n > w.opts.MaxRows) {
		return fmt.Errorf("%w: max rows per sheet must be between 1 and %d, got %d", model.ErrInvalidArgument, w.opts.MaxRows, n)
	}
	w.opts.MaxRowsPerSheet = n
	return nil
}

// SetDefaultRowStyle replaces the style every row is merged onto.
func (w *Writer) SetDefaultRowStyle(s *style.Style) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	w.opts.DefaultRowStyle = s
	return nil
}

// SetDefaultColumnWidth sets the width of columns without an explicit one.
func (w *Writer) SetDefaultColumnWidth(width float64) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	if width <= 0 {
		return fmt.Errorf("%w: column width must be positive, got %v", model.ErrInvalidArgument, width)
	}
	w.opts.DefaultColumnWidth = width
	return nil
}

// SetLogger sets the logger used for cleanup warnings.
func (w *Writer) SetLogger(l *slog.Logger) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	if l != nil {
		w.opts.Logger = l
	}
	return nil
}

// Options returns the writer configuration.
func (w *Writer) Options() Options {
	return w.opts
}

// OpenToFile opens the writer for a document at path. The file appears
// only when Close succeeds.
func (w *Writer) OpenToFile(path string) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	out, err := CreateOutput(path)
	if err != nil {
		return err
	}
	return w.open(out)
}

// OpenToWriter opens the writer for a document written to dst on Close.
func (w *Writer) OpenToWriter(dst io.Writer) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	return w.open(WrapOutput(dst))
}

func (w *Writer) open(out *Output) error {
	dir, err := os.MkdirTemp(w.opts.TempFolder, "sheetstream-")
	if err != nil {
		out.Discard()
		return fmt.Errorf("%w: creating working folder: %v", model.ErrIO, err)
	}
	w.out = out
	w.dir = dir
	w.styles = style.NewRegistry(w.opts.DefaultRowStyle)
	w.state = stateOpened

	if err := w.engine.Start(dir, w.styles); err != nil {
		return w.fail(err)
	}
	if _, err := w.addSheet(); err != nil {
		return w.fail(err)
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

// AddRow appends row to the current sheet. Empty rows are not written but
// still take up a row position. A validation or I/O failure discards
// everything written so far and closes the writer.
func (w *Writer) AddRow(row *model.Row) error {
	if err := w.ensureOpened(); err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: nil row", model.ErrInvalidArgument)
	}

	if w.current.lastRow >= w.opts.MaxRowsPerSheet && w.opts.ShouldCreateNewSheetsAutomatically {
		if _, err := w.AddNewSheetAndMakeItCurrent(); err != nil {
			return err
		}
	}

	sheet := w.current
	if w.opts.MaxRows > 0 && sheet.lastRow >= w.opts.MaxRows {
		return w.fail(fmt.Errorf("%w: sheet %q already holds %d rows", model.ErrInvalidArgument, sheet.name, w.opts.MaxRows))
	}
	if row.IsEmpty() {
		sheet.lastRow++
		return nil
	}

	cells, err := w.resolve(row)
	if err != nil {
		return w.fail(err)
	}
	if err := w.engine.WriteRow(sheet, sheet.lastRow+1, cells); err != nil {
		return w.fail(err)
	}
	sheet.lastRow++
	return nil
}

// AddRows appends rows in order, stopping at the first failure.
func (w *Writer) AddRows(rows []*model.Row) error {
	for _, r := range rows {
		if err := w.AddRow(r); err != nil {
			return err
		}
	}
	return nil
}

// resolve validates the cells of row and returns copies carrying their
// registered styles. Styles are applied row first, then cell, then any
// facets the value itself requires.
func (w *Writer) resolve(row *model.Row) ([]*model.Cell, error) {
	if w.opts.MaxColumns > 0 && len(row.Cells) > w.opts.MaxColumns {
		return nil, fmt.Errorf("%w: row has %d cells, a sheet holds %d columns", model.ErrInvalidArgument, len(row.Cells), w.opts.MaxColumns)
	}
	rowStyle := style.Merge(w.styles.Default(), row.Style)
	cells := make([]*model.Cell, len(row.Cells))
	for i, c := range row.Cells {
		if c == nil {
			c = model.NewEmptyCell()
		}
		if err := ValidateCell(c); err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		s := style.Merge(rowStyle, c.Style)
		if extra := extraStyle(c, s); extra != nil {
			s = style.Merge(s, extra)
		}
		cells[i] = &model.Cell{Value: c.Value, Type: c.Type, Style: w.styles.Register(s)}
	}
	return cells, nil
}

// AddNewSheetAndMakeItCurrent appends a sheet and makes it the target of
// subsequent rows.
func (w *Writer) AddNewSheetAndMakeItCurrent() (*Sheet, error) {
	if err := w.ensureOpened(); err != nil {
		return nil, err
	}
	s, err := w.addSheet()
	if err != nil {
		return nil, w.fail(err)
	}
	return s, nil
}

func (w *Writer) addSheet() (*Sheet, error) {
	s := &Sheet{
		owner:   w,
		index:   len(w.sheets),
		visible: true,
	}
	s.name = w.uniqueName(s.index + 1)
	if err := w.engine.AddSheet(s); err != nil {
		return nil, err
	}
	w.sheets = append(w.sheets, s)
	w.current = s
	return s, nil
}

func (w *Writer) uniqueName(n int) string {
	for {
		name := "Sheet" + strconv.Itoa(n)
		taken := false
		for _, s := range w.sheets {
			if s.name == name {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
		n++
	}
}

// Sheets returns the sheets in workbook order.
func (w *Writer) Sheets() []*Sheet {
	out := make([]*Sheet, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// CurrentSheet returns the sheet rows are written to, or nil before Open.
func (w *Writer) CurrentSheet() *Sheet {
	return w.current
}

// SetCurrentSheet routes subsequent rows to s, which must belong to this
// writer.
func (w *Writer) SetCurrentSheet(s *Sheet) error {
	if err := w.ensureOpened(); err != nil {
		return err
	}
	if s == nil || s.owner != w {
		return fmt.Errorf("%w: sheet does not belong to this workbook", model.ErrInvalidArgument)
	}
	w.current = s
	return nil
}

// Close finishes the document. It is a no-op on a writer that was never
// opened or is already closed.
func (w *Writer) Close() error {
	if w.state != stateOpened {
		return nil
	}
	pkg, err := w.engine.Finish(w.sheets, w.current)
	if err != nil {
		return w.fail(err)
	}
	if err := zipfs.Pack(w.out, w.dir, zipfs.PackOptions{First: pkg.First, Stored: pkg.Stored}); err != nil {
		return w.fail(err)
	}
	if err := w.out.Commit(); err != nil {
		return w.fail(err)
	}
	w.state = stateClosed
	if err := os.RemoveAll(w.dir); err != nil {
		w.opts.Logger.Warn("removing working folder", "dir", w.dir, "error", err)
	}
	return nil
}

// Abort discards everything written so far, including the output file,
// and closes the writer. It is a no-op unless the writer is open.
func (w *Writer) Abort() {
	if w.state == stateOpened {
		w.fail(nil)
	}
}

// fail discards all temporary state and the partial output, closes the
// writer, and returns err.
func (w *Writer) fail(err error) error {
	w.engine.Abort()
	if w.out != nil {
		if derr := w.out.Discard(); derr != nil {
			w.opts.Logger.Warn("removing partial output", "path", w.out.Path(), "error", derr)
		}
	}
	if w.dir != "" {
		if rerr := os.RemoveAll(w.dir); rerr != nil {
			w.opts.Logger.Warn("removing working folder", "dir", w.dir, "error", rerr)
		}
	}
	w.state = stateClosed
	if errors.Is(err, model.ErrInvalidArgument) || errors.Is(err, model.ErrIO) {
		return err
	}
	return model.IOError(err)
}
