// Package xlsx reads and writes Office Open XML spreadsheets (.xlsx).
//
// Reading is streamed: the workbook, relationships and styles parts are
// decoded up front, shared strings are loaded once (spilling to a file
// cache for very large tables), and each worksheet is pulled one row at a
// time through an xmlcursor.Cursor.
//
// Writing goes through [Writer], which streams every sheet to its own
// temporary part and assembles the container on Close.
package xlsx

import "encoding/xml"

// XML namespaces used in XLSX files.
const (
	nsSpreadsheetML = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types.
const (
	relOfficeDocument = nsRelationships + "/officeDocument"
	relWorksheet      = nsRelationships + "/worksheet"
	relSharedStrings  = nsRelationships + "/sharedStrings"
	relStyles         = nsRelationships + "/styles"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = nsRelationships + "/extended-properties"
)

// Content types.
const (
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ctCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtendedProps = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Part names.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partWorkbook     = "xl/workbook.xml"
	partWorkbookRels = "xl/_rels/workbook.xml.rels"
	partStyles       = "xl/styles.xml"
	partSharedString = "xl/sharedStrings.xml"
	partApp          = "docProps/app.xml"
	partCore         = "docProps/core.xml"
)

// workbookXML represents the xl/workbook.xml file structure.
type workbookXML struct {
	XMLName    xml.Name      `xml:"workbook"`
	WorkbookPr workbookPrXML `xml:"workbookPr"`
	Views      []bookViewXML `xml:"bookViews>workbookView"`
	Sheets     []sheetRefXML `xml:"sheets>sheet"`
}

type workbookPrXML struct {
	Date1904 string `xml:"date1904,attr"`
}

type bookViewXML struct {
	ActiveTab int `xml:"activeTab,attr"`
}

type sheetRefXML struct {
	Name  string `xml:"name,attr"`
	State string `xml:"state,attr"` // visible, hidden or veryHidden
	RID   string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// stylesXML represents the parts of xl/styles.xml the reader needs.
type stylesXML struct {
	XMLName xml.Name    `xml:"styleSheet"`
	NumFmts []numFmtXML `xml:"numFmts>numFmt"`
	CellXfs []xfXML     `xml:"cellXfs>xf"`
}

type numFmtXML struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type xfXML struct {
	NumFmtID          *int    `xml:"numFmtId,attr"`
	ApplyNumberFormat *string `xml:"applyNumberFormat,attr"`
}
