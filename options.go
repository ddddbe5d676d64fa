package sheetstream

import (
	"log/slog"

	"github.com/tsawler/sheetstream/format"
)

// WriterOptions holds writer settings common to the command line and
// conversions. Settings a format does not have are ignored.
type WriterOptions struct {
	TempFolder string

	// XLSX only.
	InlineStrings bool

	// Multi-sheet formats only. Zero keeps the format's ceiling.
	MaxRowsPerSheet int
	NoAutoSheets    bool

	// CSV only. Zero keeps ','.
	FieldDelimiter rune
	NoBOM          bool

	Logger *slog.Logger
}

type inlineStringsSetter interface {
	SetShouldUseInlineStrings(bool) error
}

type sheetSplitter interface {
	SetShouldCreateNewSheetsAutomatically(bool) error
	SetMaxRowsPerSheet(int) error
}

type delimitedTextSetter interface {
	SetFieldDelimiter(rune) error
	SetShouldAddBOM(bool) error
}

// NewWriterWithOptions returns a writer for format f configured with opts.
func NewWriterWithOptions(f format.Format, opts WriterOptions) (Writer, error) {
	w, err := NewWriter(f)
	if err != nil {
		return nil, err
	}
	if err := opts.apply(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (o WriterOptions) apply(w Writer) error {
	if o.TempFolder != "" {
		if err := w.SetTempFolder(o.TempFolder); err != nil {
			return err
		}
	}
	if o.Logger != nil {
		if err := w.SetLogger(o.Logger); err != nil {
			return err
		}
	}
	if s, ok := w.(inlineStringsSetter); ok {
		if err := s.SetShouldUseInlineStrings(o.InlineStrings); err != nil {
			return err
		}
	}
	if s, ok := w.(sheetSplitter); ok {
		if err := s.SetShouldCreateNewSheetsAutomatically(!o.NoAutoSheets); err != nil {
			return err
		}
		if o.MaxRowsPerSheet > 0 {
			if err := s.SetMaxRowsPerSheet(o.MaxRowsPerSheet); err != nil {
				return err
			}
		}
	}
	if s, ok := w.(delimitedTextSetter); ok {
		if o.FieldDelimiter != 0 {
			if err := s.SetFieldDelimiter(o.FieldDelimiter); err != nil {
				return err
			}
		}
		if err := s.SetShouldAddBOM(!o.NoBOM); err != nil {
			return err
		}
	}
	return nil
}
