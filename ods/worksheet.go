package ods

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/style"
	"github.com/tsawler/sheetstream/writer"
)

// worksheet streams the table-row elements of one sheet to a fragment
// file. The enclosing table element is written when content.xml is
// assembled.
type worksheet struct {
	sheet   *writer.Sheet
	path    string
	f       *os.File
	w       *bufio.Writer
	lastRow int // last 1-based row index written, gaps included
}

func createWorksheet(s *writer.Sheet, path string) (*worksheet, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: creating sheet %q: %v", model.ErrIO, s.Name(), err)
	}
	return &worksheet{sheet: s, path: path, f: f, w: bufio.NewWriter(f)}, nil
}

type cellKind int

const (
	plainCell cellKind = iota
	mergedCell
	coveredCell
)

// writeRow appends a row at the 1-based index. Rows skipped since the last
// write become one repeated empty row. Identical neighbouring cells are
// written once with number-columns-repeated.
func (ws *worksheet) writeRow(index int, cells []*model.Cell, def *style.Style) error {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	if gap := index - ws.lastRow - 1; gap > 0 {
		b.WriteString("<table:table-row")
		if gap > 1 {
			b.WriteString(` table:number-rows-repeated="` + strconv.Itoa(gap) + `"`)
		}
		b.WriteString("><table:table-cell/></table:table-row>")
	}

	kinds, spans, cells := ws.mergeLayout(index-1, cells, def)

	b.WriteString("<table:table-row>")
	var prevAttrs, prevContent string
	run := 0
	flush := func() {
		if run > 0 {
			writeCell(b, "table:table-cell", run, prevAttrs, prevContent)
		}
		run = 0
	}
	for col, c := range cells {
		attrs, content := encodeCell(c)
		switch kinds[col] {
		case mergedCell:
			flush()
			writeCell(b, "table:table-cell", 1, attrs+spans[col], content)
			continue
		case coveredCell:
			flush()
			writeCell(b, "table:covered-table-cell", 1, attrs, content)
			continue
		}
		if run > 0 && attrs == prevAttrs && content == prevContent {
			run++
			continue
		}
		flush()
		prevAttrs, prevContent, run = attrs, content, 1
	}
	flush()
	b.WriteString("</table:table-row>")

	if _, err := ws.w.Write(b.B); err != nil {
		return fmt.Errorf("%w: writing sheet %q: %v", model.ErrIO, ws.sheet.Name(), err)
	}
	ws.lastRow = index
	return nil
}

// mergeLayout marks the cells of row (zero-based) that start or are
// covered by a merged block declared so far. The row is padded with
// default cells up to each block's top-left column.
func (ws *worksheet) mergeLayout(row int, cells []*model.Cell, def *style.Style) (map[int]cellKind, map[int]string, []*model.Cell) {
	kinds := make(map[int]cellKind)
	spans := make(map[int]string)
	for _, m := range ws.sheet.Merges() {
		top, left := m.TopLeft[1], m.TopLeft[0]
		if row < top || row > m.BottomRight[1] {
			continue
		}
		if row == top {
			for len(cells) <= left {
				cells = append(cells, &model.Cell{Type: model.CellTypeEmpty, Style: def})
			}
			kinds[left] = mergedCell
			spans[left] = ` table:number-columns-spanned="` + strconv.Itoa(m.BottomRight[0]-left+1) +
				`" table:number-rows-spanned="` + strconv.Itoa(m.BottomRight[1]-top+1) + `"`
		}
		for col := left; col <= m.BottomRight[0] && col < len(cells); col++ {
			if col == left && row == top {
				continue
			}
			kinds[col] = coveredCell
		}
	}
	return kinds, spans, cells
}

func writeCell(b *bytebufferpool.ByteBuffer, element string, repeat int, attrs, content string) {
	b.WriteString("<" + element)
	if repeat > 1 {
		b.WriteString(` table:number-columns-repeated="` + strconv.Itoa(repeat) + `"`)
	}
	b.WriteString(attrs)
	if content == "" {
		b.WriteString("/>")
		return
	}
	b.WriteString(">" + content + "</" + element + ">")
}

// encodeCell returns the attributes and child elements of a cell.
func encodeCell(c *model.Cell) (attrs, content string) {
	attrs = ` table:style-name="ce` + strconv.Itoa(max(c.Style.ID(), 0)) + `"`

	switch c.Type {
	case model.CellTypeString:
		attrs += ` office:value-type="string" calcext:value-type="string"`
		content = paragraphs(c.Value.(string))
	case model.CellTypeNumeric:
		n, _ := writer.FormatNumber(c.Value)
		attrs += ` office:value-type="float" office:value="` + n + `" calcext:value-type="float"`
		content = "<text:p>" + n + "</text:p>"
	case model.CellTypeBoolean:
		v, display := "false", "FALSE"
		if c.Value.(bool) {
			v, display = "true", "TRUE"
		}
		attrs += ` office:value-type="boolean" office:boolean-value="` + v + `" calcext:value-type="boolean"`
		content = "<text:p>" + display + "</text:p>"
	case model.CellTypeDate:
		switch v := c.Value.(type) {
		case time.Time:
			attrs += ` office:value-type="date" office:date-value="` + v.Format("2006-01-02T15:04:05.999999999") + `" calcext:value-type="date"`
			content = "<text:p>" + v.Format("2006-01-02 15:04:05") + "</text:p>"
		case time.Duration:
			attrs += ` office:value-type="time" office:time-value="` + formatDuration(v) + `" calcext:value-type="time"`
			content = "<text:p>" + clockText(v) + "</text:p>"
		}
	case model.CellTypeError:
		attrs += ` office:value-type="string" office:string-value="" calcext:value-type="error"`
		content = "<text:p>" + xmlesc.EscapeOpenDocument(c.Value.(string)) + "</text:p>"
	}
	return attrs, content
}

// paragraphs renders s as one text:p per line. Runs of spaces that XML
// readers would collapse become text:s, tabs become text:tab.
func paragraphs(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		b.WriteString("<text:p>")
		writeLine(&b, line)
		b.WriteString("</text:p>")
	}
	return b.String()
}

func writeLine(b *strings.Builder, line string) {
	start := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case ' ':
			j := i
			for j < len(line) && line[j] == ' ' {
				j++
			}
			b.WriteString(xmlesc.EscapeOpenDocument(line[start:i]))
			n := j - i
			if i > 0 && j < len(line) {
				b.WriteByte(' ')
				n--
			}
			switch {
			case n == 1:
				b.WriteString("<text:s/>")
			case n > 1:
				b.WriteString(`<text:s text:c="` + strconv.Itoa(n) + `"/>`)
			}
			i, start = j, j
		case '\t':
			b.WriteString(xmlesc.EscapeOpenDocument(line[start:i]))
			b.WriteString("<text:tab/>")
			i++
			start = i
		default:
			i++
		}
	}
	b.WriteString(xmlesc.EscapeOpenDocument(line[start:]))
}

// clockText renders d as h:mm:ss for display.
func clockText(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	b.WriteString(strconv.FormatInt(int64(h), 10))
	b.WriteByte(':')
	writeTwoDigits(&b, int(m))
	b.WriteByte(':')
	writeTwoDigits(&b, int(d/time.Second))
	return b.String()
}

// close flushes the fragment.
func (ws *worksheet) close() error {
	if ws.f == nil {
		return nil
	}
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

// copyTo writes the rows of the closed fragment to w. A table needs at
// least one row, so a sheet without rows gets an empty one.
func (ws *worksheet) copyTo(w io.Writer) error {
	if ws.lastRow == 0 {
		_, err := io.WriteString(w, "<table:table-row><table:table-cell/></table:table-row>")
		return err
	}
	f, err := os.Open(ws.path)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: copying sheet %q: %v", model.ErrIO, ws.sheet.Name(), err)
	}
	return nil
}

func (ws *worksheet) abort() {
	if ws.f != nil {
		ws.f.Close()
		ws.f = nil
	}
}
