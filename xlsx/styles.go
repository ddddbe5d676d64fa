package xlsx

import (
	"encoding/xml"
	"strconv"

	"github.com/tsawler/sheetstream/model"
)

// cellFormat is the number format part of one cellXfs entry.
type cellFormat struct {
	numFmtID int
	hasID    bool
	// applyNumberFormat is nil when the attribute is absent.
	applyNumberFormat *bool
}

// styleTable answers number format questions about cell style indexes.
type styleTable struct {
	formats []cellFormat
	custom  map[int]string
	isDate  map[int]bool // memoized per style index
}

func newStyleTable() *styleTable {
	return &styleTable{custom: make(map[int]string), isDate: make(map[int]bool)}
}

// parseStyles decodes the cellXfs and numFmts of a styles part.
func parseStyles(data []byte) (*styleTable, error) {
	var doc stylesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &model.XMLError{Part: partStyles, Err: err}
	}

	st := newStyleTable()
	for _, nf := range doc.NumFmts {
		st.custom[nf.NumFmtID] = nf.FormatCode
	}
	for _, xf := range doc.CellXfs {
		var f cellFormat
		if xf.NumFmtID != nil {
			f.numFmtID, f.hasID = *xf.NumFmtID, true
		}
		if xf.ApplyNumberFormat != nil {
			v := *xf.ApplyNumberFormat == "1" || *xf.ApplyNumberFormat == "true"
			f.applyNumberFormat = &v
		}
		st.formats = append(st.formats, f)
	}
	return st, nil
}

// IsDateStyle reports whether numeric cells with the given style index
// hold dates. The default style at index 0 never does.
//
// An explicit applyNumberFormat="0" turns date detection off. When the
// attribute is absent, built-in date formats are still honored.
func (st *styleTable) IsDateStyle(index int) bool {
	if index <= 0 || index >= len(st.formats) {
		return false
	}
	if v, ok := st.isDate[index]; ok {
		return v
	}
	v := st.computeIsDate(st.formats[index])
	st.isDate[index] = v
	return v
}

func (st *styleTable) computeIsDate(f cellFormat) bool {
	if !f.hasID {
		return false
	}
	if f.applyNumberFormat != nil && !*f.applyNumberFormat {
		return false
	}
	if f.numFmtID < firstCustomNumFmtID {
		return builtinDateNumFmt(f.numFmtID)
	}
	code, ok := st.custom[f.numFmtID]
	return ok && isDateFormatCode(code)
}

// FormatCode returns the number format code of a style index, or
// "General".
func (st *styleTable) FormatCode(index int) string {
	if index < 0 || index >= len(st.formats) {
		return builtinNumFmts[0]
	}
	id := st.formats[index].numFmtID
	if code, ok := st.custom[id]; ok {
		return code
	}
	if code, ok := builtinNumFmts[id]; ok {
		return code
	}
	return builtinNumFmts[0]
}

func parseStyleIndex(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
