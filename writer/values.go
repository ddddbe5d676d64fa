package writer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/style"
)

// MaxCharactersPerCell is the longest string a cell may hold.
const MaxCharactersPerCell = 32767

// Number formats applied to date cells that have none.
const (
	DefaultDateFormat     = "yyyy-mm-dd hh:mm:ss"
	DefaultDurationFormat = "[h]:mm:ss"
)

// ValidateCell checks that c can be serialized.
func ValidateCell(c *model.Cell) error {
	if c == nil {
		return nil
	}
	switch c.Type {
	case model.CellTypeEmpty:
		return nil
	case model.CellTypeBoolean:
		if _, ok := c.Value.(bool); !ok {
			return fmt.Errorf("%w: boolean cell holds %T", model.ErrInvalidArgument, c.Value)
		}
		return nil
	case model.CellTypeDate:
		switch c.Value.(type) {
		case time.Time, time.Duration:
			return nil
		}
		return fmt.Errorf("%w: date cell holds %T", model.ErrInvalidArgument, c.Value)
	case model.CellTypeString, model.CellTypeError:
		s, ok := c.Value.(string)
		if !ok {
			return fmt.Errorf("%w: %s cell holds %T", model.ErrInvalidArgument, c.Type, c.Value)
		}
		if n := utf8.RuneCountInString(s); n > MaxCharactersPerCell {
			return fmt.Errorf("%w: cell has %d characters, the maximum is %d", model.ErrInvalidArgument, n, MaxCharactersPerCell)
		}
		return nil
	case model.CellTypeNumeric:
		if _, err := FormatNumber(c.Value); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported cell value of type %T", model.ErrInvalidArgument, c.Value)
	}
}

// FormatNumber renders a numeric value without locale-specific
// separators, e.g. 1234.5.
func FormatNumber(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.FormatInt(int64(n), 10), nil
	case int8:
		return strconv.FormatInt(int64(n), 10), nil
	case int16:
		return strconv.FormatInt(int64(n), 10), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return formatFloat(float64(n), 32)
	case float64:
		return formatFloat(n, 64)
	default:
		return "", fmt.Errorf("%w: %T is not a number", model.ErrInvalidArgument, v)
	}
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v cannot be stored in a cell", model.ErrInvalidArgument, f)
	}
	return strconv.FormatFloat(f, 'f', -1, bits), nil
}

// extraStyle returns facets a cell needs regardless of what the caller
// set: wrapping for multi-line text and a number format for dates.
func extraStyle(c *model.Cell, s *style.Style) *style.Style {
	b := style.NewBuilder()
	needed := false
	switch v := c.Value.(type) {
	case string:
		if _, set := s.WrapText(); !set && strings.Contains(v, "\n") {
			b.WrapText(true)
			needed = true
		}
	case time.Time:
		if _, set := s.NumberFormat(); !set {
			b.NumberFormat(DefaultDateFormat)
			needed = true
		}
	case time.Duration:
		if _, set := s.NumberFormat(); !set {
			b.NumberFormat(DefaultDurationFormat)
			needed = true
		}
	}
	if !needed {
		return nil
	}
	extra, _ := b.Build()
	return extra
}
