// Package reader holds the options shared by every format reader.
//
// Options are passed to a format's Open function as functional options:
//
//	r, err := xlsx.Open("report.xlsx",
//		reader.WithPreserveEmptyRows(true),
//		reader.WithFormatDates(true),
//	)
package reader

import "os"

// DefaultSharedStringsInMemoryLimit is the number of unique shared strings
// kept in memory before the XLSX reader spills them to a file cache.
const DefaultSharedStringsInMemoryLimit = 100_000

// Options configures a reader.
type Options struct {
	// PreserveEmptyRows yields rows with no values instead of skipping them.
	PreserveEmptyRows bool

	// FormatDates returns date cells as strings formatted with the cell's
	// number format instead of time.Time values.
	FormatDates bool

	// TempFolder holds cache files created while reading.
	TempFolder string

	// SharedStringsInMemoryLimit caps the in-memory shared string cache.
	SharedStringsInMemoryLimit int

	// FieldDelimiter separates fields in delimited text.
	FieldDelimiter rune

	// Encoding names the charset of delimited text without a byte order
	// mark. Empty means UTF-8.
	Encoding string
}

// Option configures Options.
type Option func(*Options)

// Defaults returns the default options.
func Defaults() Options {
	return Options{
		TempFolder:                 os.TempDir(),
		SharedStringsInMemoryLimit: DefaultSharedStringsInMemoryLimit,
		FieldDelimiter:             ',',
	}
}

// Apply returns the defaults with opts applied in order.
func Apply(opts ...Option) Options {
	o := Defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPreserveEmptyRows sets Options.PreserveEmptyRows.
func WithPreserveEmptyRows(preserve bool) Option {
	return func(o *Options) {
		o.PreserveEmptyRows = preserve
	}
}

// WithFormatDates sets Options.FormatDates.
func WithFormatDates(format bool) Option {
	return func(o *Options) {
		o.FormatDates = format
	}
}

// WithTempFolder sets Options.TempFolder.
func WithTempFolder(dir string) Option {
	return func(o *Options) {
		o.TempFolder = dir
	}
}

// WithSharedStringsInMemoryLimit sets Options.SharedStringsInMemoryLimit.
// Zero or a negative limit keeps every string in memory.
func WithSharedStringsInMemoryLimit(n int) Option {
	return func(o *Options) {
		o.SharedStringsInMemoryLimit = n
	}
}

// WithFieldDelimiter sets Options.FieldDelimiter.
func WithFieldDelimiter(r rune) Option {
	return func(o *Options) {
		o.FieldDelimiter = r
	}
}

// WithEncoding sets Options.Encoding.
func WithEncoding(name string) Option {
	return func(o *Options) {
		o.Encoding = name
	}
}
