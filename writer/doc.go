// Package writer implements the format-independent half of the streaming
// workbook writers: lifecycle, sheets, style resolution, automatic sheet
// splitting, and cleanup.
//
// # Lifecycle
//
// A [Writer] is created, configured, opened once with [Writer.OpenToFile] or
// [Writer.OpenToWriter], fed rows, and closed. Setters fail with
// model.ErrWriterAlreadyOpened after opening; adding rows before opening
// fails with model.ErrWriterNotOpened. Close on a writer that was never
// opened, or is already closed, does nothing.
//
// # Rows and styles
//
// Each non-empty row is validated, its styles are merged (default row style,
// then row style, then cell style, then facets the value requires such as
// text wrapping for multi-line strings), registered in the workbook's
// [style.Registry], and handed to the format [Engine] which appends it to the
// sheet's temporary file. Empty rows are not written but still consume a
// row position, so the rows after them keep their numbers.
//
// When the current sheet reaches Options.MaxRowsPerSheet and automatic
// sheet creation is on, the next row starts a new sheet.
//
// # Failure
//
// Any failure while writing removes the working folder and the scratch
// output and closes the writer. When writing to a path the target file is
// replaced only after the container has been fully written.
package writer
