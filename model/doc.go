// Package model defines the values that flow through every reader and
// writer: cells, rows, sheets, the iterator contracts, and the error
// taxonomy.
//
// # Cells and Rows
//
// A [Cell] holds a Go value and a [CellType]. [NewCell] infers the type:
//
//	row := model.NewRowFromValues([]any{"name", 42, 3.5, true, time.Now()}, nil)
//
// Error-typed cells ([NewErrorCell]) carry the offending token as their
// string value. Readers use them when a single value cannot be converted,
// so one bad cell never aborts a read.
//
// A [Row] is empty when it has no cells or only empty cells. Writers never
// serialize empty rows.
//
// # Iteration
//
// [RowIterator] and [SheetIterator] follow a Rewind/Valid/Current/Next
// protocol. Streamed row iterators can be rewound only once. [Each] and
// [ReadAll] cover the common loops.
//
// # Errors
//
// All failures wrap one of the sentinel errors in this package, such as
// [ErrIO], [ErrInvalidArgument] or [ErrWriterNotOpened]. XML parse failures
// are reported as [*XMLError] wrapped in [ErrIO].
package model
