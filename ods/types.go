// Package ods reads and writes OpenDocument spreadsheets (.ods).
//
// All sheets of an ODS document live in one content.xml part, so reading
// is a single forward pass: the sheet iterator walks the table elements of
// that stream and hands each sheet a row iterator positioned on it.
// Repeated rows and cells are expanded on the fly.
//
// Writing streams each sheet's rows to a temporary fragment; Close wraps
// the fragments in content.xml together with the automatic styles built
// from the style registry.
package ods

// XML namespaces used in ODS files.
const (
	nsOffice   = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsStyle    = "urn:oasis:names:tc:opendocument:xmlns:style:1.0"
	nsText     = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	nsTable    = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsFO       = "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
	nsSVG      = "urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0"
	nsMeta     = "urn:oasis:names:tc:opendocument:xmlns:meta:1.0"
	nsConfig   = "urn:oasis:names:tc:opendocument:xmlns:config:1.0"
	nsNumber   = "urn:oasis:names:tc:opendocument:xmlns:datastyle:1.0"
	nsManifest = "urn:oasis:names:tc:opendocument:xmlns:manifest:1.0"
	nsDC       = "http://purl.org/dc/elements/1.1/"
	nsXLink    = "http://www.w3.org/1999/xlink"
	nsCalcExt  = "urn:org:documentfoundation:names:experimental:calc:xmlns:calcext:1.0"
)

// Part names.
const (
	partMimetype = "mimetype"
	partManifest = "META-INF/manifest.xml"
	partContent  = "content.xml"
	partStyles   = "styles.xml"
	partMeta     = "meta.xml"
	partSettings = "settings.xml"
)

// MimeType is the media type stored in the mimetype entry.
const MimeType = "application/vnd.oasis.opendocument.spreadsheet"

const (
	// MaxRows is the number of rows a sheet can hold.
	MaxRows = 1 << 20
	// MaxColumns is the number of columns a sheet can hold. A trailing cell
	// repeated up to exactly this width is padding, not data.
	MaxColumns = 1 << 14
)

// Values of office:value-type. Error cells are only marked with
// calcext:value-type.
const (
	valueTypeString     = "string"
	valueTypeFloat      = "float"
	valueTypePercentage = "percentage"
	valueTypeCurrency   = "currency"
	valueTypeBoolean    = "boolean"
	valueTypeDate       = "date"
	valueTypeTime       = "time"
	valueTypeError      = "error"
)
