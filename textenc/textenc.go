// Package textenc detects byte order marks and converts text between UTF-8
// and other encodings for the delimited text reader and writer.
package textenc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/tsawler/sheetstream/model"
)

// Encoding names understood by this package. Other names are resolved as
// WHATWG labels, e.g. "windows-1252" or "shift_jis".
const (
	UTF8    = "UTF-8"
	UTF16LE = "UTF-16LE"
	UTF16BE = "UTF-16BE"
	UTF32LE = "UTF-32LE"
	UTF32BE = "UTF-32BE"
)

// byte order marks, longest first so UTF-32LE is not mistaken for UTF-16LE
var boms = []struct {
	name string
	mark []byte
}{
	{UTF32LE, []byte{0xFF, 0xFE, 0x00, 0x00}},
	{UTF32BE, []byte{0x00, 0x00, 0xFE, 0xFF}},
	{UTF8, []byte{0xEF, 0xBB, 0xBF}},
	{UTF16LE, []byte{0xFF, 0xFE}},
	{UTF16BE, []byte{0xFE, 0xFF}},
}

// BOM returns the byte order mark for an encoding name, or nil.
func BOM(name string) []byte {
	name = canonical(name)
	for _, b := range boms {
		if b.name == name {
			return b.mark
		}
	}
	return nil
}

// DetectBOM returns the encoding announced by a byte order mark at the start
// of data and the number of bytes to skip. Without a mark it returns ("", 0).
func DetectBOM(data []byte) (name string, offset int) {
	for _, b := range boms {
		if bytes.HasPrefix(data, b.mark) {
			return b.name, len(b.mark)
		}
	}
	return "", 0
}

// BytesOffsetToSkipBOM returns how many leading bytes of data are the byte
// order mark of the named encoding. It returns 0 when data does not start
// with that mark.
func BytesOffsetToSkipBOM(data []byte, name string) int {
	if mark := BOM(name); mark != nil && bytes.HasPrefix(data, mark) {
		return len(mark)
	}
	return 0
}

// Lookup resolves an encoding name.
func Lookup(name string) (encoding.Encoding, error) {
	switch canonical(name) {
	case UTF8:
		return unicode.UTF8, nil
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case UTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), nil
	case UTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), nil
	}
	enc, _ := charset.Lookup(name)
	if enc == nil {
		return nil, fmt.Errorf("%w: unsupported encoding %q", model.ErrEncodingConversion, name)
	}
	return enc, nil
}

func canonical(name string) string {
	n := strings.ToUpper(strings.ReplaceAll(name, "_", "-"))
	switch n {
	case "UTF8":
		return UTF8
	case "UTF16LE":
		return UTF16LE
	case "UTF16BE":
		return UTF16BE
	case "UTF32LE":
		return UTF32LE
	case "UTF32BE":
		return UTF32BE
	}
	return n
}

// ToUTF8 converts data from the named encoding to UTF-8.
func ToUTF8(data []byte, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return data, nil
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: from %s: %v", model.ErrEncodingConversion, name, err)
	}
	return out, nil
}

// FromUTF8 converts UTF-8 data to the named encoding. Characters the target
// encoding cannot represent cause an error.
func FromUTF8(data []byte, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return data, nil
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: to %s: %v", model.ErrEncodingConversion, name, err)
	}
	return out, nil
}

// NewUTF8Reader returns a reader producing UTF-8 from r. The input's byte
// order mark, if any, decides the encoding and is skipped; otherwise name is
// used, defaulting to UTF-8 when empty.
func NewUTF8Reader(r io.Reader, name string) (io.Reader, error) {
	head := make([]byte, 4)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: reading byte order mark: %v", model.ErrIO, err)
	}
	head = head[:n]

	detected, offset := DetectBOM(head)
	if detected != "" {
		name = detected
	}
	if name == "" {
		name = UTF8
	}
	rest := io.MultiReader(bytes.NewReader(head[offset:]), r)

	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return rest, nil
	}
	return transform.NewReader(rest, enc.NewDecoder()), nil
}

// NewWriter returns a writer that encodes UTF-8 input into the named
// encoding. Close flushes any buffered output but does not close w.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
