// Package format identifies spreadsheet formats by file name or content.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"

	"github.com/tsawler/sheetstream/internal/zipfs"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/textenc"
)

// Format is a supported spreadsheet format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// CSV indicates delimited text.
	CSV
	// XLSX indicates an Office Open XML workbook.
	XLSX
	// ODS indicates an OpenDocument spreadsheet.
	ODS
)

const odsMimeType = "application/vnd.oasis.opendocument.spreadsheet"

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case CSV:
		return "CSV"
	case XLSX:
		return "XLSX"
	case ODS:
		return "ODS"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case CSV:
		return ".csv"
	case XLSX:
		return ".xlsx"
	case ODS:
		return ".ods"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	f, _ := FromType(filepath.Ext(filename))
	return f
}

// FromType resolves a type token such as "xlsx" or ".ods". Unknown tokens
// return an error wrapping model.ErrUnsupportedType.
func FromType(token string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(token, ".")) {
	case "csv":
		return CSV, nil
	case "xlsx":
		return XLSX, nil
	case "ods":
		return ODS, nil
	}
	return Unknown, fmt.Errorf("%w: %q", model.ErrUnsupportedType, token)
}

// DetectFromMagic checks the leading bytes of a file. Only text starting
// with a byte order mark is recognized, as CSV. ZIP and OLE2 containers
// need DetectFromReader to tell their contents apart.
func DetectFromMagic(data []byte) Format {
	if name, _ := textenc.DetectBOM(data); name != "" {
		return CSV
	}
	return Unknown
}

// DetectFromReader inspects the content to determine the format. Delimited
// text without a byte order mark has no signature and is reported as
// Unknown. A password protected workbook returns model.ErrEncryptedWorkbook
// and a legacy binary workbook model.ErrUnsupportedType.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, len(ole2Magic))
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, zipMagic):
		return detectZIPFormat(r, size)
	case bytes.Equal(magic, ole2Magic):
		return Unknown, detectOLE2Format(r)
	}
	return DetectFromMagic(magic), nil
}

// detectZIPFormat tells an OpenDocument package from an Office Open XML
// one.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	a, err := zipfs.NewArchive(r, size)
	if err != nil {
		return Unknown, err
	}
	defer a.Close()

	if a.Has("mimetype") {
		data, err := a.ReadEntry("mimetype")
		if err == nil && strings.TrimSpace(string(data)) == odsMimeType {
			return ODS, nil
		}
		return Unknown, nil
	}
	if a.Has("[Content_Types].xml") {
		for _, name := range a.Names() {
			if strings.HasPrefix(name, "xl/") {
				return XLSX, nil
			}
		}
	}
	return Unknown, nil
}

// detectOLE2Format looks at the streams of a compound file. Office stores
// an encrypted OOXML workbook as an EncryptedPackage stream; BIFF
// workbooks use Workbook or Book.
func detectOLE2Format(r io.ReaderAt) error {
	doc, err := mscfb.New(r)
	if err != nil {
		return fmt.Errorf("%w: reading compound file: %v", model.ErrIO, err)
	}
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: reading compound file: %v", model.ErrIO, err)
		}
		switch entry.Name {
		case "EncryptedPackage":
			return model.ErrEncryptedWorkbook
		case "Workbook", "Book":
			return fmt.Errorf("%w: legacy binary workbook", model.ErrUnsupportedType)
		}
	}
}

// ContainerError picks the error to report for content that failed to open
// as a ZIP container. Encrypted and legacy binary workbooks are compound
// files, so the reason is taken from DetectFromReader when it names one;
// otherwise err is returned unchanged.
func ContainerError(r io.ReaderAt, size int64, err error) error {
	_, derr := DetectFromReader(r, size)
	if errors.Is(derr, model.ErrEncryptedWorkbook) || errors.Is(derr, model.ErrUnsupportedType) {
		return derr
	}
	return err
}

// FileContainerError is ContainerError for the file at path.
func FileContainerError(path string, err error) error {
	f, oerr := os.Open(path)
	if oerr != nil {
		return err
	}
	defer f.Close()
	fi, serr := f.Stat()
	if serr != nil {
		return err
	}
	if cerr := ContainerError(f, fi.Size(), err); cerr != err {
		return fmt.Errorf("%s: %w", path, cerr)
	}
	return err
}
