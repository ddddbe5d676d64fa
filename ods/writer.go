package ods

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/style"
	"github.com/tsawler/sheetstream/writer"
)

// Font used for styles that set no font facet.
const (
	defaultFontName = "Arial"
	defaultFontSize = 10
)

// fragmentDir holds the per-sheet row streams inside the working folder.
// It is removed before the folder is packed.
const fragmentDir = "sheets"

// Writer writes ODS documents.
//
//	w := ods.NewWriter()
//	if err := w.OpenToFile("out.ods"); err != nil { ... }
//	defer w.Close()
//	err = w.AddRow(model.NewRowFromValues([]any{"id", "name"}, nil))
type Writer struct {
	*writer.Writer
}

// DefaultStyle returns the style every ODS row is based on.
func DefaultStyle() *style.Style {
	s, _ := style.NewBuilder().FontName(defaultFontName).FontSize(defaultFontSize).Build()
	return s
}

// NewWriter returns an ODS writer with the default options.
func NewWriter() *Writer {
	eng := &engine{}
	opts := writer.DefaultOptions(MaxRows, DefaultStyle())
	opts.MaxRows, opts.MaxColumns = MaxRows, MaxColumns
	w := &Writer{Writer: writer.New(eng, opts)}
	eng.owner = w.Writer
	return w
}

// engine is the ODS half of writer.Writer.
type engine struct {
	owner *writer.Writer

	dir    string
	styles *style.Registry
	sheets map[*writer.Sheet]*worksheet
	order  []*worksheet
}

func (e *engine) Start(dir string, styles *style.Registry) error {
	e.dir = dir
	e.styles = styles
	e.sheets = make(map[*writer.Sheet]*worksheet)
	e.order = nil

	for _, sub := range []string{"META-INF", fragmentDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("%w: %v", model.ErrIO, err)
		}
	}
	return nil
}

func (e *engine) AddSheet(s *writer.Sheet) error {
	path := filepath.Join(e.dir, fragmentDir, "sheet"+strconv.Itoa(s.Index()+1)+".xml")
	ws, err := createWorksheet(s, path)
	if err != nil {
		return err
	}
	e.sheets[s] = ws
	e.order = append(e.order, ws)
	return nil
}

func (e *engine) WriteRow(s *writer.Sheet, index int, cells []*model.Cell) error {
	ws := e.sheets[s]
	if !ws.sheet.Started() {
		ws.sheet.MarkStarted()
	}
	return ws.writeRow(index, cells, e.styles.Default())
}

func (e *engine) Finish(sheets []*writer.Sheet, active *writer.Sheet) (writer.Package, error) {
	for _, ws := range e.order {
		if err := ws.close(); err != nil {
			return writer.Package{}, err
		}
	}
	if err := e.writeContent(); err != nil {
		return writer.Package{}, err
	}
	if err := os.RemoveAll(filepath.Join(e.dir, fragmentDir)); err != nil {
		return writer.Package{}, fmt.Errorf("%w: removing sheet fragments: %v", model.ErrIO, err)
	}
	if err := e.writeParts(active); err != nil {
		return writer.Package{}, err
	}
	return writer.Package{First: []string{partMimetype}, Stored: []string{partMimetype}}, nil
}

func (e *engine) Abort() {
	for _, ws := range e.order {
		ws.abort()
	}
}
