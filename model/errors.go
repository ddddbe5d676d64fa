package model

import (
	"errors"
	"fmt"

	"github.com/tsawler/sheetstream/style"
)

// Errors returned by readers and writers. Callers test for them with
// errors.Is; the concrete errors wrap these with context.
var (
	// ErrIO reports a container that cannot be opened, created or read,
	// including malformed XML inside it.
	ErrIO = errors.New("sheetstream: I/O error")

	// ErrUnsupportedType reports an unrecognized format or file type.
	ErrUnsupportedType = errors.New("sheetstream: unsupported type")

	// ErrInvalidArgument reports oversized cell content, unsupported cell
	// values and invalid style values.
	ErrInvalidArgument = style.ErrInvalidArgument

	// ErrWriterNotOpened is returned when rows are added before the
	// writer is opened.
	ErrWriterNotOpened = errors.New("sheetstream: writer not opened")

	// ErrWriterAlreadyOpened is returned by configuration setters once the
	// writer is opened.
	ErrWriterAlreadyOpened = errors.New("sheetstream: writer already opened")

	// ErrWriterClosed is returned when a closed writer is used.
	ErrWriterClosed = errors.New("sheetstream: writer already closed")

	// ErrIteratorNotRewindable is returned when a forward-only row
	// iterator is rewound a second time.
	ErrIteratorNotRewindable = errors.New("sheetstream: iterator is not rewindable")

	// ErrEncodingConversion reports an unsupported encoding or a failed
	// charset conversion.
	ErrEncodingConversion = errors.New("sheetstream: encoding conversion failed")

	// ErrSheetNotFound reports a sheet referenced by the workbook that has
	// no part in the container.
	ErrSheetNotFound = errors.New("sheetstream: sheet not found")

	// ErrSharedStringNotFound reports a shared string index outside the
	// shared string table.
	ErrSharedStringNotFound = errors.New("sheetstream: shared string not found")

	// ErrEncryptedWorkbook reports a password protected workbook.
	ErrEncryptedWorkbook = errors.New("sheetstream: workbook is encrypted")
)

// IsWriterStateError reports whether err was caused by using a writer in
// the wrong lifecycle phase.
func IsWriterStateError(err error) bool {
	return errors.Is(err, ErrWriterNotOpened) ||
		errors.Is(err, ErrWriterAlreadyOpened) ||
		errors.Is(err, ErrWriterClosed)
}

// XMLError is a failure while parsing one XML part of a container.
// Readers report it wrapped in ErrIO; see IOError.
type XMLError struct {
	Part string // container entry being parsed, e.g. "xl/worksheets/sheet1.xml"
	Err  error
}

func (e *XMLError) Error() string {
	if e.Part == "" {
		return "xml processing failed: " + e.Err.Error()
	}
	return fmt.Sprintf("xml processing failed in %s: %v", e.Part, e.Err)
}

func (e *XMLError) Unwrap() error {
	return e.Err
}

// IOError translates an internal failure into an error that matches ErrIO.
// The original error stays in the chain so callers can still extract an
// *XMLError with errors.As.
func IOError(err error) error {
	if err == nil || errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
