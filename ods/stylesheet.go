package ods

import (
	"sort"
	"strconv"

	"github.com/valyala/bytebufferpool"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/style"
	"github.com/tsawler/sheetstream/writer"
)

// Table styles: ta1 for visible sheets, ta2 for hidden ones.
const tableStyles = `<style:style style:name="ta1" style:family="table" style:master-page-name="Default">` +
	`<style:table-properties table:display="true" style:writing-mode="lr-tb"/></style:style>` +
	`<style:style style:name="ta2" style:family="table" style:master-page-name="Default">` +
	`<style:table-properties table:display="false" style:writing-mode="lr-tb"/></style:style>`

// defaultColumnWidth is the column width applications use when none is
// set.
const defaultColumnWidth = "0.889in"

var borderWidths = map[style.BorderWidth]string{
	style.BorderThin:   "0.75pt",
	style.BorderMedium: "1.75pt",
	style.BorderThick:  "2.5pt",
}

var textAligns = map[style.Alignment]string{
	style.AlignLeft:    "start",
	style.AlignRight:   "end",
	style.AlignCenter:  "center",
	style.AlignJustify: "justify",
}

// columnWidth converts a width in characters to inches.
func columnWidth(chars float64) string {
	return strconv.FormatFloat((chars*7+5)/96, 'f', 4, 64) + "in"
}

// columnRun is a run of adjacent columns sharing a column style.
type columnRun struct {
	style string
	count int
}

// columnStyles names the distinct column widths of the workbook. co1 is
// the default width.
type columnStyles struct {
	names  map[string]string
	widths []string
}

func newColumnStyles(defaultWidth float64) *columnStyles {
	cs := &columnStyles{names: make(map[string]string)}
	w := defaultColumnWidth
	if defaultWidth > 0 {
		w = columnWidth(defaultWidth)
	}
	cs.name(w)
	return cs
}

func (cs *columnStyles) name(width string) string {
	if n, ok := cs.names[width]; ok {
		return n
	}
	n := "co" + strconv.Itoa(len(cs.widths)+1)
	cs.names[width] = n
	cs.widths = append(cs.widths, width)
	return n
}

// layout returns the table-column runs for a sheet. Later widths win where
// ranges overlap.
func (cs *columnStyles) layout(widths []writer.ColumnWidth) []columnRun {
	if len(widths) == 0 {
		return []columnRun{{style: "co1", count: 1}}
	}
	last := 0
	for _, w := range widths {
		last = max(last, min(w.To, MaxColumns-1))
	}
	perColumn := make([]string, last+1)
	for _, w := range widths {
		name := cs.name(columnWidth(w.Width))
		for c := w.From; c <= w.To && c <= last; c++ {
			perColumn[c] = name
		}
	}

	var runs []columnRun
	for _, name := range perColumn {
		if name == "" {
			name = "co1"
		}
		if n := len(runs); n > 0 && runs[n-1].style == name {
			runs[n-1].count++
			continue
		}
		runs = append(runs, columnRun{style: name, count: 1})
	}
	return runs
}

func (cs *columnStyles) appendTo(b *bytebufferpool.ByteBuffer) {
	for _, w := range cs.widths {
		b.WriteString(`<style:style style:name="` + cs.names[w] + `" style:family="table-column">` +
			`<style:table-column-properties fo:break-before="auto" style:column-width="` + w + `"/></style:style>`)
	}
}

func appendColumns(b *bytebufferpool.ByteBuffer, runs []columnRun) {
	for _, r := range runs {
		b.WriteString(`<table:table-column table:style-name="` + r.style + `"`)
		if r.count > 1 {
			b.WriteString(` table:number-columns-repeated="` + strconv.Itoa(r.count) + `"`)
		}
		b.WriteString(` table:default-cell-style-name="Default"/>`)
	}
}

// appendFontFaces declares every font the styles use.
func appendFontFaces(b *bytebufferpool.ByteBuffer, styles []*style.Style) {
	seen := map[string]bool{defaultFontName: true}
	for _, s := range styles {
		if name := s.Font().Name; name != "" {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	b.WriteString("<office:font-face-decls>")
	for _, n := range names {
		esc := xmlesc.Escape(n)
		b.WriteString(`<style:font-face style:name="` + esc + `" svg:font-family="` + esc + `"/>`)
	}
	b.WriteString("</office:font-face-decls>")
}

// appendCellStyle writes the automatic style ce{id} of a registered style.
func appendCellStyle(b *bytebufferpool.ByteBuffer, s *style.Style) {
	b.WriteString(`<style:style style:name="ce` + strconv.Itoa(s.ID()) + `" style:family="table-cell" style:parent-style-name="Default">`)

	var props string
	if c, ok := s.Background(); ok {
		props += ` fo:background-color="` + c.Hash() + `"`
	}
	if br, ok := s.Border(); ok && !br.IsZero() {
		props += borderAttr("top", br.Top) + borderAttr("right", br.Right) +
			borderAttr("bottom", br.Bottom) + borderAttr("left", br.Left)
	}
	if wrap, ok := s.WrapText(); ok && wrap {
		props += ` fo:wrap-option="wrap"`
	}
	if shrink, ok := s.ShrinkToFit(); ok && shrink {
		props += ` style:shrink-to-fit="true"`
	}
	align, hasAlign := s.Alignment()
	if hasAlign {
		props += ` style:text-align-source="fix"`
	}
	if props != "" {
		b.WriteString("<style:table-cell-properties" + props + "/>")
	}
	if hasAlign {
		b.WriteString(`<style:paragraph-properties fo:text-align="` + textAligns[align] + `"/>`)
	}
	if s.HasFont() {
		appendTextProperties(b, s.Font())
	}
	b.WriteString("</style:style>")
}

func borderAttr(side string, p style.BorderPart) string {
	if p.IsZero() {
		return ""
	}
	v := "none"
	if p.Style != style.BorderNone {
		v = borderWidths[p.Width] + " " + string(p.Style) + " " + p.Color.Hash()
	}
	return ` fo:border-` + side + `="` + v + `"`
}

func appendTextProperties(b *bytebufferpool.ByteBuffer, f style.Font) {
	b.WriteString("<style:text-properties")
	if f.Name != "" {
		b.WriteString(` style:font-name="` + xmlesc.Escape(f.Name) + `"`)
	}
	if f.Size > 0 {
		b.WriteString(` fo:font-size="` + strconv.FormatFloat(f.Size, 'f', -1, 64) + `pt"`)
	}
	if f.Color != "" {
		b.WriteString(` fo:color="` + f.Color.Hash() + `"`)
	}
	if f.Bold {
		b.WriteString(` fo:font-weight="bold" style:font-weight-asian="bold" style:font-weight-complex="bold"`)
	}
	if f.Italic {
		b.WriteString(` fo:font-style="italic" style:font-style-asian="italic" style:font-style-complex="italic"`)
	}
	if f.Underline {
		b.WriteString(` style:text-underline-style="solid" style:text-underline-width="auto" style:text-underline-color="font-color"`)
	}
	if f.Strikethrough {
		b.WriteString(` style:text-line-through-style="solid"`)
	}
	b.WriteString("/>")
}
