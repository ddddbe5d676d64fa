package style

import (
	"fmt"
	"strings"
)

// Color is an RGB color written as six uppercase hex digits, e.g. "FF0000".
type Color string

// Predefined colors.
const (
	Black      Color = "000000"
	White      Color = "FFFFFF"
	Red        Color = "FF0000"
	DarkRed    Color = "C00000"
	Orange     Color = "FFC000"
	Yellow     Color = "FFFF00"
	Green      Color = "00B050"
	LightGreen Color = "92D050"
	Blue       Color = "0070C0"
	LightBlue  Color = "00B0F0"
	DarkBlue   Color = "002060"
	Purple     Color = "7030A0"
)

// RGB builds a Color from its red, green and blue components.
// Each component must be in the range 0-255.
func RGB(r, g, b int) (Color, error) {
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return "", fmt.Errorf("%w: color component %d out of range 0-255", ErrInvalidArgument, c)
		}
	}
	return Color(fmt.Sprintf("%02X%02X%02X", r, g, b)), nil
}

// ParseColor accepts "RRGGBB" or "#RRGGBB" in either case.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return "", fmt.Errorf("%w: invalid color %q", ErrInvalidArgument, s)
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return "", fmt.Errorf("%w: invalid color %q", ErrInvalidArgument, s)
		}
	}
	return Color(strings.ToUpper(s)), nil
}

// ARGB returns the color with an opaque alpha prefix, as SpreadsheetML expects.
func (c Color) ARGB() string {
	return "FF" + string(c)
}

// Hash returns the color in "#rrggbb" form, as OpenDocument expects.
func (c Color) Hash() string {
	return "#" + strings.ToLower(string(c))
}

func (c Color) valid() bool {
	if len(c) != 6 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if !isHex(c[i]) {
			return false
		}
	}
	return true
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
