package xlsx

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/valyala/bytebufferpool"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/style"
)

// Font used for styles that set no font facet.
const (
	defaultFontName = "Calibri"
	defaultFontSize = 11
)

// dedupe assigns indexes to distinct XML fragments in first-seen order.
type dedupe struct {
	index map[string]int
	items []string
}

func newDedupe(initial ...string) *dedupe {
	d := &dedupe{index: make(map[string]int)}
	for _, s := range initial {
		d.add(s)
	}
	return d
}

func (d *dedupe) add(s string) int {
	if i, ok := d.index[s]; ok {
		return i
	}
	i := len(d.items)
	d.index[s] = i
	d.items = append(d.items, s)
	return i
}

type cellXf struct {
	numFmt, font, fill, border int
	applyFont                  bool
	alignment                  string
}

// stylesheet collects the fonts, fills, borders and number formats of the
// registered styles. cellXfs index i is style id i.
type stylesheet struct {
	numFmts    map[string]int
	numFmtList []numFmtXML
	fonts      *dedupe
	fills      *dedupe
	borders    *dedupe
	xfs        []cellXf
}

const (
	fillNone    = `<fill><patternFill patternType="none"/></fill>`
	fillGray125 = `<fill><patternFill patternType="gray125"/></fill>`
	borderNone  = `<border><left/><right/><top/><bottom/><diagonal/></border>`
)

func newStylesheet(styles []*style.Style) *stylesheet {
	ss := &stylesheet{
		numFmts: make(map[string]int),
		fonts:   newDedupe(),
		fills:   newDedupe(fillNone, fillGray125),
		borders: newDedupe(borderNone),
	}
	for _, s := range styles {
		ss.add(s)
	}
	return ss
}

func (ss *stylesheet) add(s *style.Style) {
	xf := cellXf{
		numFmt:    ss.numFmtID(s),
		font:      ss.fonts.add(fontXML(s)),
		applyFont: s.HasFont(),
		alignment: alignmentXML(s),
	}
	if c, ok := s.Background(); ok {
		xf.fill = ss.fills.add(`<fill><patternFill patternType="solid"><fgColor rgb="` + c.ARGB() + `"/></patternFill></fill>`)
	}
	if b, ok := s.Border(); ok && !b.IsZero() {
		xf.border = ss.borders.add(borderXML(b))
	}
	ss.xfs = append(ss.xfs, xf)
}

func (ss *stylesheet) numFmtID(s *style.Style) int {
	code, ok := s.NumberFormat()
	if !ok || code == "" {
		return 0
	}
	if id, ok := builtinNumFmtIDs[code]; ok {
		return id
	}
	if id, ok := ss.numFmts[code]; ok {
		return id
	}
	id := firstCustomNumFmtID + len(ss.numFmtList)
	ss.numFmts[code] = id
	ss.numFmtList = append(ss.numFmtList, numFmtXML{NumFmtID: id, FormatCode: code})
	return id
}

func fontXML(s *style.Style) string {
	f := s.Font()
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	b.WriteString("<font>")
	if f.Bold {
		b.WriteString("<b/>")
	}
	if f.Italic {
		b.WriteString("<i/>")
	}
	if f.Strikethrough {
		b.WriteString("<strike/>")
	}
	if f.Underline {
		b.WriteString("<u/>")
	}
	size := f.Size
	if size <= 0 {
		size = defaultFontSize
	}
	b.WriteString(`<sz val="` + strconv.FormatFloat(size, 'f', -1, 64) + `"/>`)
	if f.Color != "" {
		b.WriteString(`<color rgb="` + f.Color.ARGB() + `"/>`)
	}
	name := f.Name
	if name == "" {
		name = defaultFontName
	}
	b.WriteString(`<name val="` + xmlesc.Escape(name) + `"/>`)
	b.WriteString("</font>")
	return b.String()
}

func borderXML(bd style.Border) string {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	b.WriteString("<border>")
	for _, side := range []struct {
		name string
		part style.BorderPart
	}{
		{"left", bd.Left},
		{"right", bd.Right},
		{"top", bd.Top},
		{"bottom", bd.Bottom},
	} {
		st := borderLineStyle(side.part)
		if st == "" {
			b.WriteString("<" + side.name + "/>")
			continue
		}
		b.WriteString("<" + side.name + ` style="` + st + `">`)
		if side.part.Color != "" {
			b.WriteString(`<color rgb="` + side.part.Color.ARGB() + `"/>`)
		}
		b.WriteString("</" + side.name + ">")
	}
	b.WriteString("<diagonal/></border>")
	return b.String()
}

// borderLineStyle maps a border part to a SpreadsheetML line style, or ""
// for no line.
func borderLineStyle(p style.BorderPart) string {
	if p.IsZero() {
		return ""
	}
	switch p.Style {
	case style.BorderNone:
		return ""
	case style.BorderDashed:
		if p.Width == style.BorderThin {
			return "dashed"
		}
		return "mediumDashed"
	case style.BorderDotted:
		return "dotted"
	case style.BorderDouble:
		return "double"
	default:
		switch p.Width {
		case style.BorderMedium:
			return "medium"
		case style.BorderThick:
			return "thick"
		default:
			return "thin"
		}
	}
}

func alignmentXML(s *style.Style) string {
	var attrs string
	if a, ok := s.Alignment(); ok {
		attrs += ` horizontal="` + string(a) + `"`
	}
	if wrap, ok := s.WrapText(); ok {
		attrs += ` wrapText="` + boolAttr(wrap) + `"`
	}
	if shrink, ok := s.ShrinkToFit(); ok {
		attrs += ` shrinkToFit="` + boolAttr(shrink) + `"`
	}
	if attrs == "" {
		return ""
	}
	return "<alignment" + attrs + "/>"
}

func boolAttr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// writeFile writes the styles part to path.
func (ss *stylesheet) writeFile(path string) error {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	b.WriteString(xml.Header)
	b.WriteString(`<styleSheet xmlns="` + nsSpreadsheetML + `">`)

	if len(ss.numFmtList) > 0 {
		b.WriteString(`<numFmts count="` + strconv.Itoa(len(ss.numFmtList)) + `">`)
		for _, nf := range ss.numFmtList {
			b.WriteString(`<numFmt numFmtId="` + strconv.Itoa(nf.NumFmtID) + `" formatCode="` + xmlesc.Escape(nf.FormatCode) + `"/>`)
		}
		b.WriteString(`</numFmts>`)
	}
	writeList(b, "fonts", ss.fonts.items)
	writeList(b, "fills", ss.fills.items)
	writeList(b, "borders", ss.borders.items)

	b.WriteString(`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>`)
	b.WriteString(`<cellXfs count="` + strconv.Itoa(len(ss.xfs)) + `">`)
	for _, xf := range ss.xfs {
		b.WriteString(`<xf numFmtId="` + strconv.Itoa(xf.numFmt) +
			`" fontId="` + strconv.Itoa(xf.font) +
			`" fillId="` + strconv.Itoa(xf.fill) +
			`" borderId="` + strconv.Itoa(xf.border) + `" xfId="0"`)
		if xf.numFmt > 0 {
			b.WriteString(` applyNumberFormat="1"`)
		}
		if xf.applyFont {
			b.WriteString(` applyFont="1"`)
		}
		if xf.fill > 0 {
			b.WriteString(` applyFill="1"`)
		}
		if xf.border > 0 {
			b.WriteString(` applyBorder="1"`)
		}
		if xf.alignment == "" {
			b.WriteString(`/>`)
			continue
		}
		b.WriteString(` applyAlignment="1">` + xf.alignment + `</xf>`)
	}
	b.WriteString(`</cellXfs>`)
	b.WriteString(`<cellStyles count="1"><cellStyle name="Normal" xfId="0" builtinId="0"/></cellStyles>`)
	b.WriteString(`</styleSheet>`)

	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing styles: %v", model.ErrIO, err)
	}
	return nil
}

func writeList(b *bytebufferpool.ByteBuffer, name string, items []string) {
	b.WriteString("<" + name + ` count="` + strconv.Itoa(len(items)) + `">`)
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString("</" + name + ">")
}
