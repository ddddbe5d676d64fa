package writer

import (
	"log/slog"
	"os"

	"github.com/tsawler/sheetstream/style"
)

// Options configures a workbook writer. They are fixed once the writer is
// opened.
type Options struct {
	// TempFolder is where the per-workbook working folder is created.
	TempFolder string

	// ShouldCreateNewSheetsAutomatically starts a new sheet when the
	// current one reaches MaxRowsPerSheet. When false, rows past the limit
	// are still written to the current sheet.
	ShouldCreateNewSheetsAutomatically bool

	// MaxRowsPerSheet is the row ceiling that triggers a new sheet.
	MaxRowsPerSheet int

	// MaxRows and MaxColumns are the sheet size of the format. Rows,
	// merges and column widths beyond them are rejected. Zero means no
	// limit.
	MaxRows    int
	MaxColumns int

	// DefaultRowStyle is the base every row and cell style is merged onto.
	// It is registered as style 0.
	DefaultRowStyle *style.Style

	// DefaultColumnWidth applies to columns without an explicit width.
	// Zero leaves the format default.
	DefaultColumnWidth float64

	// Logger receives warnings about best-effort cleanup.
	Logger *slog.Logger
}

// DefaultOptions returns options with the given row ceiling and default
// style, automatic sheet creation on, and the system temp folder.
func DefaultOptions(maxRows int, defaultStyle *style.Style) Options {
	return Options{
		TempFolder:                         os.TempDir(),
		ShouldCreateNewSheetsAutomatically: true,
		MaxRowsPerSheet:                    maxRows,
		DefaultRowStyle:                    defaultStyle,
		Logger:                             slog.New(slog.DiscardHandler),
	}
}
