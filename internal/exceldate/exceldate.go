// Package exceldate converts between time values and spreadsheet serial
// day numbers, and turns spreadsheet date format codes into Go layouts.
package exceldate

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	epoch1900 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Serial day numbers at or above this are past the year 9999.
const maxSerial = 2958466

const dayNanos = float64(24 * time.Hour)

// ToSerial returns the serial day number of t. The wall clock of t is used
// as is; the location is ignored.
//
// In the 1900 system, serial 60 is the nonexistent 1900-02-29 and dates
// before 1900-03-01 are shifted by one day to match.
func ToSerial(t time.Time, date1904 bool) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	epoch := epoch1900
	if date1904 {
		epoch = epoch1904
	}
	serial := float64(wall.Sub(epoch)) / dayNanos
	if !date1904 && serial < 61 {
		serial--
	}
	return serial
}

// FromSerial converts a serial day number into a UTC time, rounded to the
// nearest second.
func FromSerial(serial float64, date1904 bool) (time.Time, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return time.Time{}, fmt.Errorf("invalid serial date %v", serial)
	}
	if serial >= maxSerial {
		return time.Time{}, fmt.Errorf("serial date %v is too large", serial)
	}
	epoch := epoch1900
	if date1904 {
		epoch = epoch1904
	} else if serial < 61 {
		serial++
	}
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second), nil
}

// DurationToSerial expresses d as a fraction of days.
func DurationToSerial(d time.Duration) float64 {
	return float64(d) / dayNanos
}

// Layout converts a date format code such as "yyyy-mm-dd hh:mm" into a Go
// time layout. Only the first section of a multi-section code is used.
// Literal text that happens to spell a Go layout element is not protected.
func Layout(code string) string {
	if i := sectionEnd(code); i >= 0 {
		code = code[:i]
	}
	toks := tokenize(code)
	ampm := false
	for _, t := range toks {
		if t.kind == tokAMPM {
			ampm = true
		}
	}

	var b strings.Builder
	for i, t := range toks {
		switch t.kind {
		case tokLiteral:
			b.WriteString(t.text)
		case tokAMPM:
			if t.text == "am/pm" || t.text == "a/p" {
				b.WriteString("pm")
			} else {
				b.WriteString("PM")
			}
		case tokYear:
			if len(t.text) <= 2 {
				b.WriteString("06")
			} else {
				b.WriteString("2006")
			}
		case tokDay:
			switch len(t.text) {
			case 1:
				b.WriteString("2")
			case 2:
				b.WriteString("02")
			case 3:
				b.WriteString("Mon")
			default:
				b.WriteString("Monday")
			}
		case tokHour:
			switch {
			case ampm && len(t.text) == 1:
				b.WriteString("3")
			case ampm:
				b.WriteString("03")
			default:
				b.WriteString("15")
			}
		case tokSecond:
			if len(t.text) == 1 {
				b.WriteString("5")
			} else {
				b.WriteString("05")
			}
		case tokFraction:
			b.WriteString(t.text)
		case tokM:
			if isMinute(toks, i) {
				if len(t.text) == 1 {
					b.WriteString("4")
				} else {
					b.WriteString("04")
				}
				continue
			}
			switch len(t.text) {
			case 1:
				b.WriteString("1")
			case 2:
				b.WriteString("01")
			case 3, 5:
				b.WriteString("Jan")
			default:
				b.WriteString("January")
			}
		}
	}
	return b.String()
}

// sectionEnd returns the index of the first unquoted ';'.
func sectionEnd(code string) int {
	quoted := false
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '"':
			quoted = !quoted
		case '\\':
			i++
		case ';':
			if !quoted {
				return i
			}
		}
	}
	return -1
}

type tokKind int

const (
	tokLiteral tokKind = iota
	tokYear
	tokM
	tokDay
	tokHour
	tokSecond
	tokFraction
	tokAMPM
)

type token struct {
	kind tokKind
	text string
}

func tokenize(code string) []token {
	var toks []token
	lower := asciiLower(code)
	for i := 0; i < len(code); {
		c := lower[i]
		switch {
		case c == '"':
			j := strings.IndexByte(code[i+1:], '"')
			if j < 0 {
				toks = append(toks, token{tokLiteral, code[i+1:]})
				i = len(code)
				continue
			}
			toks = append(toks, token{tokLiteral, code[i+1 : i+1+j]})
			i += j + 2
		case c == '\\' && i+1 < len(code):
			toks = append(toks, token{tokLiteral, code[i+1 : i+2]})
			i += 2
		case c == '_' || c == '*':
			// padding directives take the following character
			i += 2
		case c == '[':
			j := strings.IndexByte(code[i:], ']')
			if j < 0 {
				i = len(code)
				continue
			}
			inner := lower[i+1 : i+j]
			switch {
			case inner == "":
			case strings.Trim(inner, "h") == "":
				toks = append(toks, token{tokHour, "hh"})
			case strings.Trim(inner, "m") == "":
				toks = append(toks, token{tokM, "mm"})
			case strings.Trim(inner, "s") == "":
				toks = append(toks, token{tokSecond, "ss"})
			}
			i += j + 1
		case strings.HasPrefix(lower[i:], "am/pm"):
			toks = append(toks, token{tokAMPM, code[i : i+5]})
			i += 5
		case strings.HasPrefix(lower[i:], "a/p"):
			toks = append(toks, token{tokAMPM, code[i : i+3]})
			i += 3
		case c == 'y' || c == 'm' || c == 'd' || c == 'h' || c == 's':
			j := i
			for j < len(code) && lower[j] == c {
				j++
			}
			toks = append(toks, token{kindOf(c), lower[i:j]})
			i = j
		case c == '.' && i+1 < len(code) && code[i+1] == '0':
			j := i + 1
			for j < len(code) && code[j] == '0' {
				j++
			}
			toks = append(toks, token{tokFraction, code[i:j]})
			i = j
		default:
			toks = append(toks, token{tokLiteral, code[i : i+1]})
			i++
		}
	}
	return toks
}

// asciiLower lowercases ASCII letters only, keeping byte offsets aligned
// with the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func kindOf(c byte) tokKind {
	switch c {
	case 'y':
		return tokYear
	case 'm':
		return tokM
	case 'd':
		return tokDay
	case 'h':
		return tokHour
	default:
		return tokSecond
	}
}

// isMinute decides whether the m-run at i means minutes: it does when the
// nearest date/time token before it is an hour or the nearest one after it
// is a second.
func isMinute(toks []token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if toks[j].kind != tokLiteral {
			if toks[j].kind == tokHour {
				return true
			}
			break
		}
	}
	for j := i + 1; j < len(toks); j++ {
		if toks[j].kind != tokLiteral {
			return toks[j].kind == tokSecond
		}
	}
	return false
}
