package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/style"
	"github.com/tsawler/sheetstream/writer"
)

// Writer writes XLSX workbooks. Configure it before calling OpenToFile or
// OpenToWriter:
//
//	w := xlsx.NewWriter()
//	w.SetShouldUseInlineStrings(true)
//	if err := w.OpenToFile("out.xlsx"); err != nil { ... }
//	defer w.Close()
//	err = w.AddRow(model.NewRowFromValues([]any{"id", "name"}, nil))
type Writer struct {
	*writer.Writer
	eng *engine
}

// DefaultStyle returns the style every XLSX row is based on.
func DefaultStyle() *style.Style {
	s, _ := style.NewBuilder().FontName(defaultFontName).FontSize(defaultFontSize).Build()
	return s
}

// NewWriter returns an XLSX writer using shared strings and the 1900 date
// system.
func NewWriter() *Writer {
	eng := &engine{}
	opts := writer.DefaultOptions(MaxRows, DefaultStyle())
	opts.MaxRows, opts.MaxColumns = MaxRows, MaxColumns
	w := &Writer{
		Writer: writer.New(eng, opts),
		eng:    eng,
	}
	eng.owner = w.Writer
	return w
}

// SetShouldUseInlineStrings embeds strings in the cells instead of the
// shared string table.
func (w *Writer) SetShouldUseInlineStrings(inline bool) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	w.eng.inline = inline
	return nil
}

// SetDate1904 writes dates relative to 1904-01-01 instead of 1899-12-30.
func (w *Writer) SetDate1904(date1904 bool) error {
	if err := w.EnsureNotOpened(); err != nil {
		return err
	}
	w.eng.date1904 = date1904
	return nil
}

// engine is the XLSX half of writer.Writer.
type engine struct {
	owner    *writer.Writer
	inline   bool
	date1904 bool

	dir    string
	styles *style.Registry
	sst    *sstWriter
	sheets map[*writer.Sheet]*worksheet
	order  []*worksheet
}

func (e *engine) Start(dir string, styles *style.Registry) error {
	e.dir = dir
	e.styles = styles
	e.sheets = make(map[*writer.Sheet]*worksheet)
	e.order = nil

	for _, sub := range []string{"_rels", "docProps", "xl/_rels", "xl/worksheets"} {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(sub)), 0o755); err != nil {
			return fmt.Errorf("%w: %v", model.ErrIO, err)
		}
	}
	if !e.inline {
		sst, err := newSSTWriter(filepath.Join(dir, filepath.FromSlash(partSharedString)))
		if err != nil {
			return err
		}
		e.sst = sst
	}
	return nil
}

func (e *engine) AddSheet(s *writer.Sheet) error {
	part := "xl/worksheets/sheet" + strconv.Itoa(s.Index()+1) + ".xml"
	ws, err := createWorksheet(s, filepath.Join(e.dir, filepath.FromSlash(part)), part)
	if err != nil {
		return err
	}
	e.sheets[s] = ws
	e.order = append(e.order, ws)
	return nil
}

func (e *engine) WriteRow(s *writer.Sheet, index int, cells []*model.Cell) error {
	ws := e.sheets[s]
	if !ws.started {
		ws.start(e.owner.Options().DefaultColumnWidth)
	}
	return ws.writeRow(e, index, cells)
}

func (e *engine) Finish(sheets []*writer.Sheet, active *writer.Sheet) (writer.Package, error) {
	width := e.owner.Options().DefaultColumnWidth
	for _, ws := range e.order {
		if err := ws.close(width); err != nil {
			return writer.Package{}, err
		}
	}
	if e.sst != nil {
		if err := e.sst.Close(); err != nil {
			return writer.Package{}, err
		}
	}
	if err := newStylesheet(e.styles.Styles()).writeFile(filepath.Join(e.dir, filepath.FromSlash(partStyles))); err != nil {
		return writer.Package{}, err
	}
	if err := e.writeParts(sheets, active); err != nil {
		return writer.Package{}, err
	}
	return writer.Package{First: []string{partContentTypes}}, nil
}

func (e *engine) Abort() {
	for _, ws := range e.order {
		ws.abort()
	}
	if e.sst != nil {
		e.sst.Abort()
	}
}
