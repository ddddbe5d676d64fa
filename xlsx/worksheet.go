package xlsx

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/tsawler/sheetstream/internal/exceldate"
	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/writer"
)

// worksheet streams one sheet part. The part header, which carries the
// column widths, is written when the first row arrives.
type worksheet struct {
	sheet   *writer.Sheet
	part    string
	f       *os.File
	w       *bufio.Writer
	started bool
}

func createWorksheet(s *writer.Sheet, path, part string) (*worksheet, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: creating sheet %q: %v", model.ErrIO, s.Name(), err)
	}
	return &worksheet{sheet: s, part: part, f: f, w: bufio.NewWriter(f)}, nil
}

func (ws *worksheet) start(defaultWidth float64) {
	ws.started = true
	ws.sheet.MarkStarted()

	ws.w.WriteString(xml.Header)
	ws.w.WriteString(`<worksheet xmlns="` + nsSpreadsheetML + `" xmlns:r="` + nsRelationships + `">`)
	if defaultWidth > 0 {
		ws.w.WriteString(`<sheetFormatPr defaultColWidth="` + formatFloat(defaultWidth) + `" defaultRowHeight="15"/>`)
	}
	if widths := ws.sheet.ColumnWidths(); len(widths) > 0 {
		ws.w.WriteString("<cols>")
		for _, cw := range widths {
			ws.w.WriteString(`<col min="` + strconv.Itoa(cw.From+1) + `" max="` + strconv.Itoa(cw.To+1) +
				`" width="` + formatFloat(cw.Width) + `" customWidth="1"/>`)
		}
		ws.w.WriteString("</cols>")
	}
	ws.w.WriteString("<sheetData>")
}

// writeRow appends a row element at the 1-based index.
func (ws *worksheet) writeRow(e *engine, index int, cells []*model.Cell) error {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	b.WriteString(`<row r="` + strconv.Itoa(index) + `" spans="1:` + strconv.Itoa(len(cells)) + `">`)
	for col, c := range cells {
		if err := e.appendCell(b, CellRef(col, index-1), c); err != nil {
			return err
		}
	}
	b.WriteString("</row>")

	if _, err := ws.w.Write(b.B); err != nil {
		return fmt.Errorf("%w: writing sheet %q: %v", model.ErrIO, ws.sheet.Name(), err)
	}
	return nil
}

// close ends sheetData, writes the merged ranges and closes the file.
func (ws *worksheet) close(defaultWidth float64) error {
	if ws.f == nil {
		return nil
	}
	if !ws.started {
		ws.start(defaultWidth)
	}
	ws.w.WriteString("</sheetData>")
	if merges := ws.sheet.Merges(); len(merges) > 0 {
		ws.w.WriteString(`<mergeCells count="` + strconv.Itoa(len(merges)) + `">`)
		for _, m := range merges {
			ref := RangeRef(m.TopLeft[0], m.TopLeft[1], m.BottomRight[0], m.BottomRight[1])
			ws.w.WriteString(`<mergeCell ref="` + ref + `"/>`)
		}
		ws.w.WriteString("</mergeCells>")
	}
	ws.w.WriteString("</worksheet>")

	err := ws.w.Flush()
	if cerr := ws.f.Close(); err == nil {
		err = cerr
	}
	ws.f = nil
	if err != nil {
		return fmt.Errorf("%w: finishing sheet %q: %v", model.ErrIO, ws.sheet.Name(), err)
	}
	return nil
}

func (ws *worksheet) abort() {
	if ws.f != nil {
		ws.f.Close()
		ws.f = nil
	}
}

// appendCell serializes one cell. Empty cells are only written when they
// carry a style other than the default.
func (e *engine) appendCell(b *bytebufferpool.ByteBuffer, ref string, c *model.Cell) error {
	styleID := c.Style.ID()
	if c.IsEmpty() {
		if styleID > 0 {
			b.WriteString(`<c r="` + ref + `" s="` + strconv.Itoa(styleID) + `"/>`)
		}
		return nil
	}

	b.WriteString(`<c r="` + ref + `"`)
	if styleID > 0 {
		b.WriteString(` s="` + strconv.Itoa(styleID) + `"`)
	}

	switch c.Type {
	case model.CellTypeString:
		s := c.Value.(string)
		if e.inline {
			b.WriteString(` t="inlineStr"><is><t xml:space="preserve">` + xmlesc.EscapeSpreadsheetML(s) + `</t></is></c>`)
			return nil
		}
		i, err := e.sst.Add(s)
		if err != nil {
			return err
		}
		b.WriteString(` t="s"><v>` + strconv.Itoa(i) + `</v></c>`)
	case model.CellTypeNumeric:
		n, err := writer.FormatNumber(c.Value)
		if err != nil {
			return err
		}
		b.WriteString(`><v>` + n + `</v></c>`)
	case model.CellTypeBoolean:
		b.WriteString(` t="b"><v>` + boolAttr(c.Value.(bool)) + `</v></c>`)
	case model.CellTypeDate:
		var serial float64
		switch v := c.Value.(type) {
		case time.Time:
			serial = exceldate.ToSerial(v, e.date1904)
		case time.Duration:
			serial = exceldate.DurationToSerial(v)
		}
		b.WriteString(`><v>` + formatFloat(serial) + `</v></c>`)
	case model.CellTypeError:
		b.WriteString(` t="e"><v>` + xmlesc.EscapeSpreadsheetML(c.Value.(string)) + `</v></c>`)
	default:
		return fmt.Errorf("%w: cannot write %s cell", model.ErrInvalidArgument, c.Type)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
