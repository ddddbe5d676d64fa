package style

import "fmt"

// BorderWidth is the thickness of a border line.
type BorderWidth string

// Border widths.
const (
	BorderThin   BorderWidth = "thin"
	BorderMedium BorderWidth = "medium"
	BorderThick  BorderWidth = "thick"
)

// BorderStyle is the stroke used to draw a border line.
type BorderStyle string

// Border styles.
const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderDouble BorderStyle = "double"
	BorderNone   BorderStyle = "none"
)

// BorderPart describes one side of a cell border. The zero value means the
// side has no border.
type BorderPart struct {
	Color Color
	Width BorderWidth
	Style BorderStyle
}

// NewBorderPart validates and returns a border side.
func NewBorderPart(color Color, width BorderWidth, st BorderStyle) (BorderPart, error) {
	if !color.valid() {
		return BorderPart{}, fmt.Errorf("%w: invalid border color %q", ErrInvalidArgument, color)
	}
	switch width {
	case BorderThin, BorderMedium, BorderThick:
	default:
		return BorderPart{}, fmt.Errorf("%w: invalid border width %q", ErrInvalidArgument, width)
	}
	switch st {
	case BorderSolid, BorderDashed, BorderDotted, BorderDouble, BorderNone:
	default:
		return BorderPart{}, fmt.Errorf("%w: invalid border style %q", ErrInvalidArgument, st)
	}
	return BorderPart{Color: color, Width: width, Style: st}, nil
}

// IsZero reports whether the side is unset.
func (p BorderPart) IsZero() bool {
	return p == BorderPart{}
}

// Border holds the four sides of a cell border.
type Border struct {
	Top    BorderPart
	Right  BorderPart
	Bottom BorderPart
	Left   BorderPart
}

// NewBorder returns a border with the same part on all four sides.
func NewBorder(p BorderPart) Border {
	return Border{Top: p, Right: p, Bottom: p, Left: p}
}

// IsZero reports whether no side is set.
func (b Border) IsZero() bool {
	return b == Border{}
}

func (b Border) key() string {
	part := func(p BorderPart) string {
		if p.IsZero() {
			return "-"
		}
		return string(p.Color) + "/" + string(p.Width) + "/" + string(p.Style)
	}
	return part(b.Top) + "," + part(b.Right) + "," + part(b.Bottom) + "," + part(b.Left)
}
