package ods

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/writer"
)

// generator is recorded in meta.xml.
const generator = "sheetstream"

const documentNamespaces = ` xmlns:office="` + nsOffice + `"` +
	` xmlns:style="` + nsStyle + `"` +
	` xmlns:text="` + nsText + `"` +
	` xmlns:table="` + nsTable + `"` +
	` xmlns:fo="` + nsFO + `"` +
	` xmlns:svg="` + nsSVG + `"` +
	` xmlns:number="` + nsNumber + `"` +
	` xmlns:calcext="` + nsCalcExt + `"`

// writeContent assembles content.xml: automatic styles for the registered
// styles and column widths, then one table per sheet wrapping its row
// fragment.
func (e *engine) writeContent() error {
	path := filepath.Join(e.dir, partContent)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", model.ErrIO, partContent, err)
	}
	w := bufio.NewWriter(f)

	cols := newColumnStyles(e.owner.Options().DefaultColumnWidth)
	layouts := make([][]columnRun, len(e.order))
	for i, ws := range e.order {
		layouts[i] = cols.layout(ws.sheet.ColumnWidths())
	}

	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)
	b.WriteString(xml.Header)
	b.WriteString(`<office:document-content` + documentNamespaces + ` office:version="1.2">`)
	b.WriteString("<office:scripts/>")
	styles := e.styles.Styles()
	appendFontFaces(b, styles)
	b.WriteString("<office:automatic-styles>")
	cols.appendTo(b)
	b.WriteString(tableStyles)
	for _, s := range styles {
		appendCellStyle(b, s)
	}
	b.WriteString("</office:automatic-styles><office:body><office:spreadsheet>")
	w.Write(b.B)

	for i, ws := range e.order {
		b.Reset()
		tableStyle := "ta1"
		if !ws.sheet.IsVisible() {
			tableStyle = "ta2"
		}
		b.WriteString(`<table:table table:name="` + xmlesc.Escape(ws.sheet.Name()) + `" table:style-name="` + tableStyle + `">`)
		appendColumns(b, layouts[i])
		w.Write(b.B)
		if err := ws.copyTo(w); err != nil {
			f.Close()
			return err
		}
		w.WriteString("</table:table>")
	}
	w.WriteString("</office:spreadsheet></office:body></office:document-content>")

	err = w.Flush()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: writing %s: %v", model.ErrIO, partContent, err)
	}
	return nil
}

// writeParts writes the parts other than content.xml.
func (e *engine) writeParts(active *writer.Sheet) error {
	if err := os.WriteFile(filepath.Join(e.dir, partMimetype), []byte(MimeType), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", model.ErrIO, partMimetype, err)
	}
	parts := []struct {
		name string
		fn   func(*bytebufferpool.ByteBuffer)
	}{
		{partManifest, manifestXML},
		{partMeta, func(b *bytebufferpool.ByteBuffer) { metaXML(b, time.Now()) }},
		{partStyles, e.stylesXML},
		{partSettings, func(b *bytebufferpool.ByteBuffer) { settingsXML(b, active.Name()) }},
	}
	for _, p := range parts {
		if err := e.writePart(p.name, p.fn); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) writePart(name string, fn func(*bytebufferpool.ByteBuffer)) error {
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)

	b.WriteString(xml.Header)
	fn(b)
	if err := os.WriteFile(filepath.Join(e.dir, filepath.FromSlash(name)), b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", model.ErrIO, name, err)
	}
	return nil
}

func manifestXML(b *bytebufferpool.ByteBuffer) {
	b.WriteString(`<manifest:manifest xmlns:manifest="` + nsManifest + `" manifest:version="1.2">`)
	b.WriteString(`<manifest:file-entry manifest:full-path="/" manifest:version="1.2" manifest:media-type="` + MimeType + `"/>`)
	for _, part := range []string{partContent, partStyles, partMeta, partSettings} {
		b.WriteString(`<manifest:file-entry manifest:full-path="` + part + `" manifest:media-type="text/xml"/>`)
	}
	b.WriteString("</manifest:manifest>")
}

func metaXML(b *bytebufferpool.ByteBuffer, now time.Time) {
	ts := now.UTC().Format("2006-01-02T15:04:05")
	b.WriteString(`<office:document-meta xmlns:office="` + nsOffice + `" xmlns:meta="` + nsMeta +
		`" xmlns:dc="` + nsDC + `" xmlns:xlink="` + nsXLink + `" office:version="1.2"><office:meta>`)
	b.WriteString("<meta:generator>" + generator + "</meta:generator>")
	b.WriteString("<meta:creation-date>" + ts + "</meta:creation-date>")
	b.WriteString("<dc:date>" + ts + "</dc:date>")
	b.WriteString("</office:meta></office:document-meta>")
}

// stylesXML writes the named Default cell style from the default row
// style, and the page layout the table styles refer to.
func (e *engine) stylesXML(b *bytebufferpool.ByteBuffer) {
	def := e.styles.Default()
	b.WriteString(`<office:document-styles` + documentNamespaces + ` office:version="1.2">`)
	appendFontFaces(b, e.styles.Styles())
	b.WriteString("<office:styles>")
	b.WriteString(`<style:default-style style:family="table-cell">`)
	appendTextProperties(b, def.Font())
	b.WriteString("</style:default-style>")
	b.WriteString(`<style:style style:name="Default" style:family="table-cell">`)
	appendTextProperties(b, def.Font())
	b.WriteString("</style:style>")
	b.WriteString("</office:styles>")
	b.WriteString(`<office:automatic-styles><style:page-layout style:name="pm1"/></office:automatic-styles>`)
	b.WriteString(`<office:master-styles><style:master-page style:name="Default" style:page-layout-name="pm1"/></office:master-styles>`)
	b.WriteString("</office:document-styles>")
}

func settingsXML(b *bytebufferpool.ByteBuffer, activeName string) {
	b.WriteString(`<office:document-settings xmlns:office="` + nsOffice + `" xmlns:config="` + nsConfig + `" office:version="1.2">`)
	b.WriteString(`<office:settings><config:config-item-set config:name="ooo:view-settings">`)
	b.WriteString(`<config:config-item-map-indexed config:name="Views"><config:config-item-map-entry>`)
	b.WriteString(`<config:config-item config:name="ViewId" config:type="string">view1</config:config-item>`)
	b.WriteString(`<config:config-item config:name="ActiveTable" config:type="string">` + xmlesc.Escape(activeName) + `</config:config-item>`)
	b.WriteString("</config:config-item-map-entry></config:config-item-map-indexed>")
	b.WriteString("</config:config-item-set></office:settings></office:document-settings>")
}
