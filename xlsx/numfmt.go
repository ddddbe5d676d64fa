package xlsx

import "strings"

// Number format ids below this are built in; custom formats start here.
const firstCustomNumFmtID = 164

// builtinNumFmts holds the built-in number formats that have a fixed,
// locale-independent code.
var builtinNumFmts = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

var builtinNumFmtIDs = func() map[string]int {
	m := make(map[string]int, len(builtinNumFmts))
	for id, code := range builtinNumFmts {
		m[code] = id
	}
	return m
}()

// builtinDateNumFmt reports whether a built-in number format id displays a
// date or time.
func builtinDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || id == 45 || id == 46 || id == 47
}

// isDateFormatCode reports whether a custom format code displays a date or
// time. Bracketed sections such as [$-409] or [Red], quoted text and
// backslash-escaped characters are ignored, as is every section after the
// first. Date letters match in either case.
func isDateFormatCode(code string) bool {
	if strings.EqualFold(code, "General") {
		return false
	}
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		switch c := code[i]; c {
		case '\\':
			i++
		case '"':
			j := strings.IndexByte(code[i+1:], '"')
			if j < 0 {
				i = len(code)
			} else {
				i += j + 1
			}
		case '[':
			j := strings.IndexByte(code[i:], ']')
			if j < 0 {
				i = len(code)
			} else {
				i += j
			}
		case ';':
			i = len(code)
		default:
			b.WriteByte(c)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ymdhs")
}
