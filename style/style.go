// Package style holds cell styles, the facet-wise merge applied when a row
// style meets a cell style, and the registry that deduplicates styles into
// the indexed table a workbook writes out.
package style

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidArgument is returned for invalid style values. The model package
// re-exports it as the codec-wide invalid argument error.
var ErrInvalidArgument = errors.New("sheetstream: invalid argument")

// Alignment is the horizontal alignment of cell content.
type Alignment string

// Cell alignments.
const (
	AlignLeft    Alignment = "left"
	AlignRight   Alignment = "right"
	AlignCenter  Alignment = "center"
	AlignJustify Alignment = "justify"
)

// Font is the resolved font facet of a style.
type Font struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Size          float64
	Color         Color
	Name          string
}

// facet is a single style value together with whether it was set.
type facet[T comparable] struct {
	v   T
	set bool
}

func (f facet[T]) or(base facet[T]) facet[T] {
	if f.set {
		return f
	}
	return base
}

// Style is an immutable set of facets. Each facet is either explicitly set
// or absent; absent facets take the value of whatever style they are merged
// onto. Styles are created with a Builder and combined with Merge.
type Style struct {
	id int

	bold          facet[bool]
	italic        facet[bool]
	underline     facet[bool]
	strikethrough facet[bool]
	fontSize      facet[float64]
	fontColor     facet[Color]
	fontName      facet[string]

	background   facet[Color]
	border       facet[Border]
	alignment    facet[Alignment]
	wrapText     facet[bool]
	shrinkToFit  facet[bool]
	numberFormat facet[string]
}

// Empty returns a style with no facet set.
func Empty() *Style {
	return &Style{id: -1}
}

// ID returns the registry index of the style, or -1 if the style has not
// been registered.
func (s *Style) ID() int {
	if s == nil {
		return -1
	}
	return s.id
}

// IsEmpty reports whether no facet is set.
func (s *Style) IsEmpty() bool {
	return s == nil || s.key() == ""
}

// Font returns the font facets. Unset facets are reported as zero values.
func (s *Style) Font() Font {
	if s == nil {
		return Font{}
	}
	return Font{
		Bold:          s.bold.v,
		Italic:        s.italic.v,
		Underline:     s.underline.v,
		Strikethrough: s.strikethrough.v,
		Size:          s.fontSize.v,
		Color:         s.fontColor.v,
		Name:          s.fontName.v,
	}
}

// HasFont reports whether any font facet is set.
func (s *Style) HasFont() bool {
	if s == nil {
		return false
	}
	return s.bold.set || s.italic.set || s.underline.set || s.strikethrough.set ||
		s.fontSize.set || s.fontColor.set || s.fontName.set
}

// Background returns the fill color, if set.
func (s *Style) Background() (Color, bool) {
	if s == nil {
		return "", false
	}
	return s.background.v, s.background.set
}

// Border returns the border, if set.
func (s *Style) Border() (Border, bool) {
	if s == nil {
		return Border{}, false
	}
	return s.border.v, s.border.set
}

// Alignment returns the horizontal alignment, if set.
func (s *Style) Alignment() (Alignment, bool) {
	if s == nil {
		return "", false
	}
	return s.alignment.v, s.alignment.set
}

// WrapText returns the wrap text flag, if set.
func (s *Style) WrapText() (bool, bool) {
	if s == nil {
		return false, false
	}
	return s.wrapText.v, s.wrapText.set
}

// ShrinkToFit returns the shrink to fit flag, if set.
func (s *Style) ShrinkToFit() (bool, bool) {
	if s == nil {
		return false, false
	}
	return s.shrinkToFit.v, s.shrinkToFit.set
}

// NumberFormat returns the number format code, if set.
func (s *Style) NumberFormat() (string, bool) {
	if s == nil {
		return "", false
	}
	return s.numberFormat.v, s.numberFormat.set
}

// Merge combines base and override facet by facet: a facet set on override
// wins, otherwise the base facet is kept. Either argument may be nil. The
// result is a new unregistered style.
func Merge(base, override *Style) *Style {
	if base == nil {
		base = Empty()
	}
	if override == nil {
		override = Empty()
	}
	return &Style{
		id:            -1,
		bold:          override.bold.or(base.bold),
		italic:        override.italic.or(base.italic),
		underline:     override.underline.or(base.underline),
		strikethrough: override.strikethrough.or(base.strikethrough),
		fontSize:      override.fontSize.or(base.fontSize),
		fontColor:     override.fontColor.or(base.fontColor),
		fontName:      override.fontName.or(base.fontName),
		background:    override.background.or(base.background),
		border:        override.border.or(base.border),
		alignment:     override.alignment.or(base.alignment),
		wrapText:      override.wrapText.or(base.wrapText),
		shrinkToFit:   override.shrinkToFit.or(base.shrinkToFit),
		numberFormat:  override.numberFormat.or(base.numberFormat),
	}
}

// Equal reports whether two styles set the same facets to the same values.
// Registry ids are ignored.
func Equal(a, b *Style) bool {
	return a.key() == b.key()
}

func (s *Style) clone() *Style {
	c := *s
	return &c
}

// key serializes the set facets. Two styles with the same key are the same
// style as far as the registry is concerned.
func (s *Style) key() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	flag := func(name string, f facet[bool]) {
		if f.set {
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(strconv.FormatBool(f.v))
			b.WriteByte(';')
		}
	}
	str := func(name string, set bool, v string) {
		if set {
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(strconv.Quote(v))
			b.WriteByte(';')
		}
	}
	flag("b", s.bold)
	flag("i", s.italic)
	flag("u", s.underline)
	flag("st", s.strikethrough)
	str("sz", s.fontSize.set, strconv.FormatFloat(s.fontSize.v, 'g', -1, 64))
	str("fc", s.fontColor.set, string(s.fontColor.v))
	str("fn", s.fontName.set, s.fontName.v)
	str("bg", s.background.set, string(s.background.v))
	str("bd", s.border.set, s.border.v.key())
	str("al", s.alignment.set, string(s.alignment.v))
	flag("wr", s.wrapText)
	flag("sh", s.shrinkToFit)
	str("nf", s.numberFormat.set, s.numberFormat.v)
	return b.String()
}
