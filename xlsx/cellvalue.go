package xlsx

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/sheetstream/internal/exceldate"
	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// Values of the c/@t attribute.
const (
	cellTypeInlineString  = "inlineStr"
	cellTypeSharedString  = "s"
	cellTypeFormulaString = "str"
	cellTypeBoolean       = "b"
	cellTypeError         = "e"
	cellTypeDate          = "d"
	cellTypeNumeric       = "n"
)

// cellFormatter turns an expanded c element into a cell. Values that cannot
// be converted become error cells carrying the raw text.
type cellFormatter struct {
	strings     *sharedStrings // nil when the workbook has no shared strings
	styles      *styleTable
	date1904    bool
	formatDates bool
}

func (f *cellFormatter) format(c *xmlcursor.Node) *model.Cell {
	var raw string
	if v := c.Child("v"); v != nil {
		raw = v.Text()
	}

	switch c.AttrValue("t") {
	case cellTypeInlineString:
		is := c.Child("is")
		if is == nil {
			return model.NewEmptyCell()
		}
		return stringCell(richText(is))
	case cellTypeSharedString:
		return f.sharedString(raw)
	case cellTypeFormulaString:
		return stringCell(xmlesc.UnescapeSpreadsheetML(raw))
	case cellTypeBoolean:
		switch strings.TrimSpace(raw) {
		case "1", "true":
			return model.NewCell(true)
		case "0", "false":
			return model.NewCell(false)
		}
		return model.NewErrorCell(raw)
	case cellTypeError:
		return model.NewErrorCell(raw)
	case cellTypeDate:
		return f.isoDate(raw)
	default:
		return f.number(raw, parseStyleIndex(c.AttrValue("s")))
	}
}

func stringCell(s string) *model.Cell {
	if s == "" {
		return model.NewEmptyCell()
	}
	return &model.Cell{Value: s, Type: model.CellTypeString}
}

func (f *cellFormatter) sharedString(raw string) *model.Cell {
	if f.strings == nil {
		return model.NewErrorCell(raw)
	}
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return model.NewErrorCell(raw)
	}
	s, err := f.strings.Get(i)
	if err != nil {
		return model.NewErrorCell(raw)
	}
	return stringCell(s)
}

func (f *cellFormatter) number(raw string, styleIndex int) *model.Cell {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.NewEmptyCell()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.NewErrorCell(raw)
	}

	if f.styles != nil && f.styles.IsDateStyle(styleIndex) {
		t, err := exceldate.FromSerial(v, f.date1904)
		if err != nil {
			return model.NewErrorCell(raw)
		}
		if f.formatDates {
			return stringCell(t.Format(exceldate.Layout(f.styles.FormatCode(styleIndex))))
		}
		return model.NewCell(t)
	}

	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return model.NewCell(int64(v))
	}
	return model.NewCell(v)
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04", "2006-01-02"}

func (f *cellFormatter) isoDate(raw string) *model.Cell {
	raw = strings.TrimSpace(raw)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			if f.formatDates {
				return stringCell(t.Format(time.DateTime))
			}
			return model.NewCell(t)
		}
	}
	return model.NewErrorCell(raw)
}
