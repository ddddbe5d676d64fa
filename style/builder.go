package style

import "fmt"

// Builder accumulates facets for a new Style. Setters can be chained; the
// first invalid value is remembered and reported by Build.
//
//	s, err := style.NewBuilder().
//		Bold().
//		FontSize(14).
//		FontColor(style.Blue).
//		Alignment(style.AlignCenter).
//		Build()
type Builder struct {
	s   Style
	err error
}

// NewBuilder returns a Builder with no facets set.
func NewBuilder() *Builder {
	return &Builder{s: Style{id: -1}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Bold sets the font to bold.
func (b *Builder) Bold() *Builder {
	b.s.bold = facet[bool]{true, true}
	return b
}

// Italic sets the font to italic.
func (b *Builder) Italic() *Builder {
	b.s.italic = facet[bool]{true, true}
	return b
}

// Underline underlines the font.
func (b *Builder) Underline() *Builder {
	b.s.underline = facet[bool]{true, true}
	return b
}

// Strikethrough strikes the font through.
func (b *Builder) Strikethrough() *Builder {
	b.s.strikethrough = facet[bool]{true, true}
	return b
}

// FontSize sets the font size in points.
func (b *Builder) FontSize(size float64) *Builder {
	if size <= 0 {
		return b.fail(fmt.Errorf("%w: font size must be positive, got %v", ErrInvalidArgument, size))
	}
	b.s.fontSize = facet[float64]{size, true}
	return b
}

// FontColor sets the font color.
func (b *Builder) FontColor(c Color) *Builder {
	if !c.valid() {
		return b.fail(fmt.Errorf("%w: invalid font color %q", ErrInvalidArgument, c))
	}
	b.s.fontColor = facet[Color]{c, true}
	return b
}

// FontName sets the font family name.
func (b *Builder) FontName(name string) *Builder {
	if name == "" {
		return b.fail(fmt.Errorf("%w: empty font name", ErrInvalidArgument))
	}
	b.s.fontName = facet[string]{name, true}
	return b
}

// Background sets a solid background fill.
func (b *Builder) Background(c Color) *Builder {
	if !c.valid() {
		return b.fail(fmt.Errorf("%w: invalid background color %q", ErrInvalidArgument, c))
	}
	b.s.background = facet[Color]{c, true}
	return b
}

// Border sets the cell border.
func (b *Builder) Border(border Border) *Builder {
	b.s.border = facet[Border]{border, true}
	return b
}

// Alignment sets the horizontal alignment.
func (b *Builder) Alignment(a Alignment) *Builder {
	switch a {
	case AlignLeft, AlignRight, AlignCenter, AlignJustify:
	default:
		return b.fail(fmt.Errorf("%w: invalid cell alignment %q", ErrInvalidArgument, a))
	}
	b.s.alignment = facet[Alignment]{a, true}
	return b
}

// WrapText sets whether long text wraps inside the cell.
func (b *Builder) WrapText(wrap bool) *Builder {
	b.s.wrapText = facet[bool]{wrap, true}
	return b
}

// ShrinkToFit sets whether text shrinks to fit the column width.
func (b *Builder) ShrinkToFit(shrink bool) *Builder {
	b.s.shrinkToFit = facet[bool]{shrink, true}
	return b
}

// NumberFormat sets the number format code, e.g. "0.00" or "yyyy-mm-dd".
func (b *Builder) NumberFormat(code string) *Builder {
	if code == "" {
		return b.fail(fmt.Errorf("%w: empty number format", ErrInvalidArgument))
	}
	b.s.numberFormat = facet[string]{code, true}
	return b
}

// Build returns the style, or the first error recorded by a setter.
func (b *Builder) Build() (*Style, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.s.clone(), nil
}
