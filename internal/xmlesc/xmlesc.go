// Package xmlesc escapes text for the two spreadsheet XML dialects.
//
// SpreadsheetML keeps control characters by encoding them as "_xHHHH_"
// placeholders; OpenDocument has no such convention and drops them.
package xmlesc

import (
	"fmt"
	"strconv"
	"strings"
)

// Escape entity-escapes the five XML special characters. The apostrophe is
// written as a numeric reference.
func Escape(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#039;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isControl reports characters that XML 1.0 cannot carry literally.
func isControl(r rune) bool {
	return r < 0x20 && r != '\t' && r != '\n' && r != '\r'
}

// isPlaceholderChar reports characters that SpreadsheetML writes as
// "_xHHHH_". A literal carriage return would be normalized to a line feed
// by the XML parser, so it is encoded too.
func isPlaceholderChar(c byte) bool {
	return c == '\r' || isControl(rune(c))
}

// EscapeSpreadsheetML escapes s for a SpreadsheetML text node. Control
// characters and carriage returns become "_xHHHH_", and the leading underscore of any literal
// "_xHHHH_" sequence is itself escaped as "_x005F_" so it survives a round
// trip.
func EscapeSpreadsheetML(s string) string {
	if needsPlaceholderEscape(s) {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			c := s[i]
			switch {
			case c == '_' && isPlaceholderAt(s, i):
				b.WriteString("_x005F_")
			case isPlaceholderChar(c):
				fmt.Fprintf(&b, "_x%04X_", c)
			default:
				b.WriteByte(c)
			}
		}
		s = b.String()
	}
	return Escape(s)
}

func needsPlaceholderEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if isPlaceholderChar(s[i]) || (s[i] == '_' && isPlaceholderAt(s, i)) {
			return true
		}
	}
	return false
}

// isPlaceholderAt reports whether s[i:] starts with "_xHHHH_".
func isPlaceholderAt(s string, i int) bool {
	if i+7 > len(s) || s[i] != '_' || s[i+1] != 'x' || s[i+6] != '_' {
		return false
	}
	for j := i + 2; j < i+6; j++ {
		if !isHex(s[j]) {
			return false
		}
	}
	return true
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// UnescapeSpreadsheetML decodes "_xHHHH_" placeholders in text that has
// already been entity-decoded by the XML parser.
func UnescapeSpreadsheetML(s string) string {
	if !strings.Contains(s, "_x") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if isPlaceholderAt(s, i) {
			v, _ := strconv.ParseUint(s[i+2:i+6], 16, 32)
			b.WriteRune(rune(v))
			i += 7
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// EscapeOpenDocument drops control characters and entity-escapes the rest.
func EscapeOpenDocument(s string) string {
	if strings.IndexFunc(s, isControl) >= 0 {
		s = strings.Map(func(r rune) rune {
			if isControl(r) {
				return -1
			}
			return r
		}, s)
	}
	return Escape(s)
}
