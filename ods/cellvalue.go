package ods

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// cellFormatter turns an expanded table-cell element into a cell. Values
// that cannot be converted become error cells carrying the raw attribute.
type cellFormatter struct {
	formatDates bool
}

func (f *cellFormatter) format(n *xmlcursor.Node) *model.Cell {
	if n.AttrValueNS(nsCalcExt, "value-type") == valueTypeError {
		return model.NewErrorCell(cellText(n))
	}

	switch n.AttrValueNS(nsOffice, "value-type") {
	case valueTypeString:
		if hasParagraphs(n) {
			return stringCell(cellText(n))
		}
		return stringCell(n.AttrValueNS(nsOffice, "string-value"))
	case valueTypeFloat, valueTypePercentage:
		return numberCell(n.AttrValueNS(nsOffice, "value"))
	case valueTypeCurrency:
		value := n.AttrValueNS(nsOffice, "value")
		if currency := n.AttrValueNS(nsOffice, "currency"); currency != "" {
			value += " " + currency
		}
		return stringCell(value)
	case valueTypeBoolean:
		raw := n.AttrValueNS(nsOffice, "boolean-value")
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return model.NewErrorCell(raw)
		}
		return model.NewCell(b)
	case valueTypeDate:
		if f.formatDates {
			return stringCell(cellText(n))
		}
		raw := n.AttrValueNS(nsOffice, "date-value")
		t, err := parseDate(raw)
		if err != nil {
			return model.NewErrorCell(raw)
		}
		return model.NewCell(t)
	case valueTypeTime:
		if f.formatDates {
			return stringCell(cellText(n))
		}
		raw := n.AttrValueNS(nsOffice, "time-value")
		d, err := parseDuration(raw)
		if err != nil {
			return model.NewErrorCell(raw)
		}
		return model.NewCell(d)
	default:
		return model.NewEmptyCell()
	}
}

func stringCell(s string) *model.Cell {
	if s == "" {
		return model.NewEmptyCell()
	}
	return &model.Cell{Value: s, Type: model.CellTypeString}
}

// numberCell returns integral values as int64 and the rest as float64.
func numberCell(raw string) *model.Cell {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return model.NewErrorCell(raw)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return model.NewCell(int64(f))
	}
	return model.NewCell(f)
}

func hasParagraphs(n *xmlcursor.Node) bool {
	for _, c := range n.Children {
		if c.Name.Space == nsText && c.Name.Local == "p" {
			return true
		}
	}
	return false
}

// cellText returns the displayed text of a cell: its paragraphs joined by
// newlines. Annotations are not part of the text.
func cellText(n *xmlcursor.Node) string {
	var b strings.Builder
	first := true
	for _, c := range n.Children {
		if c.Name.Space != nsText || c.Name.Local != "p" {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		first = false
		writeText(&b, c)
	}
	return b.String()
}

func writeText(b *strings.Builder, p *xmlcursor.Node) {
	for _, c := range p.Children {
		if c.IsText() {
			b.WriteString(c.Data)
			continue
		}
		if c.Name.Space != nsText {
			continue
		}
		switch c.Name.Local {
		case "s":
			n := 1
			if v, err := strconv.Atoi(c.AttrValueNS(nsText, "c")); err == nil && v > 0 {
				n = v
			}
			b.WriteString(strings.Repeat(" ", n))
		case "tab":
			b.WriteByte('\t')
		case "line-break":
			b.WriteByte('\n')
		case "note":
		default:
			writeText(b, c) // span, a, and other inline containers
		}
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate parses an office:date-value. Values without a zone are UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

var errDuration = errors.New("invalid duration")

// parseDuration parses an ISO 8601 duration of days, hours, minutes and
// seconds, e.g. PT36H00M00S or -P1DT0.5S.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if !strings.HasPrefix(s, "P") || len(s) == 1 {
		return 0, errDuration
	}
	s = s[1:]

	var total float64
	inTime := false
	for s != "" {
		if s[0] == 'T' {
			if inTime {
				return 0, errDuration
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, errDuration
		}
		v, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, errDuration
		}
		var unit time.Duration
		switch {
		case s[i] == 'D' && !inTime:
			unit = 24 * time.Hour
		case s[i] == 'H' && inTime:
			unit = time.Hour
		case s[i] == 'M' && inTime:
			unit = time.Minute
		case s[i] == 'S' && inTime:
			unit = time.Second
		default:
			return 0, errDuration
		}
		total += v * float64(unit)
		s = s[i+1:]
	}

	d := time.Duration(math.Round(total))
	if neg {
		d = -d
	}
	return d, nil
}

// formatDuration renders d as an office:time-value.
func formatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute

	b.WriteString("PT")
	b.WriteString(strconv.FormatInt(int64(h), 10))
	b.WriteByte('H')
	writeTwoDigits(&b, int(m))
	b.WriteByte('M')
	sec := d / time.Second
	writeTwoDigits(&b, int(sec))
	if frac := d - sec*time.Second; frac > 0 {
		f := strconv.FormatFloat(frac.Seconds(), 'f', -1, 64)
		b.WriteString(strings.TrimPrefix(f, "0"))
	}
	b.WriteByte('S')
	return b.String()
}

func writeTwoDigits(b *strings.Builder, n int) {
	if n < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(n))
}
