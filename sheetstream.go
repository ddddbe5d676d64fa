// Package sheetstream reads and writes spreadsheets as streams of rows.
//
// Three formats are supported: XLSX, ODS and delimited text (CSV). Rows are
// pulled from a reader one at a time and pushed to a writer one at a time,
// so neither side holds a whole sheet in memory.
//
// Reading:
//
//	r, err := sheetstream.OpenReader("report.xlsx")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	sheets := r.SheetIterator()
//	for err := sheets.Rewind(); sheets.Valid(); err = sheets.Next() {
//	    if err != nil {
//	        // handle error
//	    }
//	    sheet := sheets.Current()
//	    err := model.Each(sheet.Rows(), func(key int, row *model.Row) error {
//	        fmt.Println(key, row.Values())
//	        return nil
//	    })
//	}
//
// Writing:
//
//	w, err := sheetstream.NewWriterForFile("out.ods")
//	if err != nil {
//	    // handle error
//	}
//	if err := w.OpenToFile("out.ods"); err != nil {
//	    // handle error
//	}
//	w.AddRow(model.NewRowFromValues([]any{"id", "name"}, nil))
//	err = w.Close()
//
// The format packages (xlsx, ods, csv) expose the format-specific settings.
package sheetstream

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/sheetstream/csv"
	"github.com/tsawler/sheetstream/format"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/ods"
	"github.com/tsawler/sheetstream/reader"
	"github.com/tsawler/sheetstream/writer"
	"github.com/tsawler/sheetstream/xlsx"
)

// Writer is implemented by the writers of every format.
type Writer interface {
	SetTempFolder(dir string) error
	SetLogger(l *slog.Logger) error
	OpenToFile(path string) error
	OpenToWriter(w io.Writer) error
	AddRow(row *model.Row) error
	AddRows(rows []*model.Row) error
	Close() error
	// Abort discards the output of an open writer.
	Abort()
}

// SheetWriter is implemented by writers of multi-sheet formats.
type SheetWriter interface {
	Writer
	AddNewSheetAndMakeItCurrent() (*writer.Sheet, error)
	Sheets() []*writer.Sheet
	CurrentSheet() *writer.Sheet
	SetCurrentSheet(s *writer.Sheet) error
}

type sheetSource interface {
	SheetIterator() model.SheetIterator
	Close() error
}

// Reader is an open spreadsheet of any supported format.
type Reader struct {
	format format.Format
	src    sheetSource
}

// OpenReader opens the spreadsheet at path. The format is taken from the
// file extension, or from the content when the extension is not known.
func OpenReader(path string, opts ...reader.Option) (*Reader, error) {
	f := format.Detect(path)
	if f == format.Unknown {
		var err error
		if f, err = detectFile(path); err != nil {
			return nil, err
		}
	}

	var (
		src sheetSource
		err error
	)
	switch f {
	case format.XLSX:
		src, err = xlsx.Open(path, opts...)
	case format.ODS:
		src, err = ods.Open(path, opts...)
	case format.CSV:
		src, err = csv.Open(path, opts...)
	}
	if err != nil {
		return nil, err
	}
	return &Reader{format: f, src: src}, nil
}

func detectFile(path string) (format.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return format.Unknown, fmt.Errorf("%w: opening %s: %v", model.ErrIO, path, err)
	}
	defer file.Close()
	fi, err := file.Stat()
	if err != nil {
		return format.Unknown, fmt.Errorf("%w: %s: %v", model.ErrIO, path, err)
	}
	f, err := format.DetectFromReader(file, fi.Size())
	if err != nil {
		return format.Unknown, err
	}
	if f == format.Unknown {
		return format.Unknown, fmt.Errorf("%w: cannot tell the format of %s", model.ErrUnsupportedType, path)
	}
	return f, nil
}

// OpenReaderType reads a spreadsheet of a known format from ra.
func OpenReaderType(ra io.ReaderAt, size int64, f format.Format, opts ...reader.Option) (*Reader, error) {
	var (
		src sheetSource
		err error
	)
	switch f {
	case format.XLSX:
		src, err = xlsx.OpenReaderAt(ra, size, opts...)
	case format.ODS:
		src, err = ods.OpenReaderAt(ra, size, opts...)
	case format.CSV:
		src, err = csv.OpenReaderAt(ra, size, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedType, f)
	}
	if err != nil {
		return nil, err
	}
	return &Reader{format: f, src: src}, nil
}

// Format returns the format of the spreadsheet.
func (r *Reader) Format() format.Format {
	return r.format
}

// SheetIterator returns the sheets in document order.
func (r *Reader) SheetIterator() model.SheetIterator {
	return r.src.SheetIterator()
}

// Close releases the underlying file. It is safe to call Close multiple
// times.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	err := r.src.Close()
	r.src = nil
	return err
}

// NewWriter returns a writer for format f with default settings.
func NewWriter(f format.Format) (Writer, error) {
	switch f {
	case format.XLSX:
		return xlsx.NewWriter(), nil
	case format.ODS:
		return ods.NewWriter(), nil
	case format.CSV:
		return csv.NewWriter(), nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedType, f)
}

// NewWriterForFile returns a writer for the format named by the extension
// of path. The writer is not opened.
func NewWriterForFile(path string) (Writer, error) {
	f := format.Detect(path)
	if f == format.Unknown {
		return nil, fmt.Errorf("%w: no writer for %s", model.ErrUnsupportedType, path)
	}
	return NewWriter(f)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	r := sheetstream.Must(sheetstream.OpenReader("report.xlsx"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
