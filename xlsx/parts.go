package xlsx

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/writer"
)

// appName is recorded in docProps/app.xml.
const appName = "sheetstream"

// writeParts writes the package parts that describe the sheets: the
// workbook, its relationships, the content types and the document
// properties.
func (e *engine) writeParts(sheets []*writer.Sheet, active *writer.Sheet) error {
	parts := []struct {
		name string
		fn   func(*bytebufferpool.ByteBuffer)
	}{
		{partWorkbook, func(b *bytebufferpool.ByteBuffer) { e.workbookXML(b, sheets, active) }},
		{partWorkbookRels, func(b *bytebufferpool.ByteBuffer) { e.workbookRelsXML(b, len(sheets)) }},
		{partContentTypes, func(b *bytebufferpool.ByteBuffer) { e.contentTypesXML(b, len(sheets)) }},
		{partRootRels, rootRelsXML},
		{partCore, func(b *bytebufferpool.ByteBuffer) { coreXML(b, time.Now()) }},
		{partApp, appXML},
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

func (e *engine) workbookXML(b *bytebufferpool.ByteBuffer, sheets []*writer.Sheet, active *writer.Sheet) {
	b.WriteString(`<workbook xmlns="` + nsSpreadsheetML + `" xmlns:r="` + nsRelationships + `">`)
	if e.date1904 {
		b.WriteString(`<workbookPr date1904="1"/>`)
	}
	activeTab := 0
	if active != nil {
		activeTab = active.Index()
	}
	b.WriteString(`<bookViews><workbookView activeTab="` + strconv.Itoa(activeTab) + `"/></bookViews>`)
	b.WriteString("<sheets>")
	for _, s := range sheets {
		n := strconv.Itoa(s.Index() + 1)
		b.WriteString(`<sheet name="` + xmlesc.Escape(s.Name()) + `" sheetId="` + n + `"`)
		if !s.IsVisible() {
			b.WriteString(` state="hidden"`)
		}
		b.WriteString(` r:id="rId` + n + `"/>`)
	}
	b.WriteString("</sheets></workbook>")
}

// workbookRelsXML numbers the sheets rId1..rIdN so that the workbook part
// can refer to them by position; styles and shared strings follow.
func (e *engine) workbookRelsXML(b *bytebufferpool.ByteBuffer, n int) {
	b.WriteString(`<Relationships xmlns="` + nsPackageRels + `">`)
	for i := 1; i <= n; i++ {
		writeRel(b, i, relWorksheet, "worksheets/sheet"+strconv.Itoa(i)+".xml")
	}
	writeRel(b, n+1, relStyles, "styles.xml")
	if !e.inline {
		writeRel(b, n+2, relSharedStrings, "sharedStrings.xml")
	}
	b.WriteString("</Relationships>")
}

func (e *engine) contentTypesXML(b *bytebufferpool.ByteBuffer, n int) {
	b.WriteString(`<Types xmlns="` + nsContentTypes + `">`)
	b.WriteString(`<Default Extension="rels" ContentType="` + ctRelationships + `"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	writeOverride(b, partWorkbook, ctWorkbook)
	for i := 1; i <= n; i++ {
		writeOverride(b, "xl/worksheets/sheet"+strconv.Itoa(i)+".xml", ctWorksheet)
	}
	writeOverride(b, partStyles, ctStyles)
	if !e.inline {
		writeOverride(b, partSharedString, ctSharedStrings)
	}
	writeOverride(b, partCore, ctCoreProps)
	writeOverride(b, partApp, ctExtendedProps)
	b.WriteString("</Types>")
}

func rootRelsXML(b *bytebufferpool.ByteBuffer) {
	b.WriteString(`<Relationships xmlns="` + nsPackageRels + `">`)
	writeRel(b, 1, relOfficeDocument, partWorkbook)
	writeRel(b, 2, relCoreProps, partCore)
	writeRel(b, 3, relExtendedProps, partApp)
	b.WriteString("</Relationships>")
}

func coreXML(b *bytebufferpool.ByteBuffer, created time.Time) {
	ts := created.UTC().Format(time.RFC3339)
	b.WriteString(`<cp:coreProperties` +
		` xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/"` +
		` xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	b.WriteString(`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>`)
	b.WriteString(`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>`)
	b.WriteString(`</cp:coreProperties>`)
}

func appXML(b *bytebufferpool.ByteBuffer) {
	b.WriteString(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">`)
	b.WriteString(`<Application>` + appName + `</Application>`)
	b.WriteString(`</Properties>`)
}

func writeRel(b *bytebufferpool.ByteBuffer, id int, typ, target string) {
	b.WriteString(`<Relationship Id="rId` + strconv.Itoa(id) + `" Type="` + typ + `" Target="` + target + `"/>`)
}

func writeOverride(b *bytebufferpool.ByteBuffer, part, ct string) {
	b.WriteString(`<Override PartName="/` + part + `" ContentType="` + ct + `"/>`)
}
