package textenc

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tsawler/sheetstream/model"
)

func TestBytesOffsetToSkipBOM(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		encoding string
		want     int
	}{
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, "csv"...), UTF8, 3},
		{"utf16be with bom", []byte{0xFE, 0xFF, 0x00, 'a'}, UTF16BE, 2},
		{"utf32le with bom", []byte{0xFF, 0xFE, 0x00, 0x00, 'a', 0, 0, 0}, UTF32LE, 4},
		{"utf8 without bom", []byte("csv"), UTF8, 0},
		{"mismatched encoding", []byte{0xEF, 0xBB, 0xBF}, UTF16LE, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesOffsetToSkipBOM(tt.data, tt.encoding); got != tt.want {
				t.Errorf("BytesOffsetToSkipBOM() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetectBOM(t *testing.T) {
	tests := []struct {
		data       []byte
		wantName   string
		wantOffset int
	}{
		{[]byte{0xFF, 0xFE, 0x00, 0x00}, UTF32LE, 4},
		{[]byte{0xFF, 0xFE, 'a', 0x00}, UTF16LE, 2},
		{[]byte{0xEF, 0xBB, 0xBF, 'x'}, UTF8, 3},
		{[]byte("plain"), "", 0},
		{nil, "", 0},
	}

	for _, tt := range tests {
		name, off := DetectBOM(tt.data)
		if name != tt.wantName || off != tt.wantOffset {
			t.Errorf("DetectBOM(% x) = %q,%d, want %q,%d", tt.data, name, off, tt.wantName, tt.wantOffset)
		}
	}
}

func TestConversionRoundTrip(t *testing.T) {
	for _, enc := range []string{UTF16LE, UTF16BE, UTF32LE, "windows-1252", "ISO-8859-1"} {
		t.Run(enc, func(t *testing.T) {
			in := []byte("Café, naïve")
			encoded, err := FromUTF8(in, enc)
			if err != nil {
				t.Fatalf("FromUTF8() error = %v", err)
			}
			if bytes.Equal(encoded, in) {
				t.Fatal("FromUTF8() did not convert")
			}
			decoded, err := ToUTF8(encoded, enc)
			if err != nil {
				t.Fatalf("ToUTF8() error = %v", err)
			}
			if !bytes.Equal(decoded, in) {
				t.Errorf("round trip = %q, want %q", decoded, in)
			}
		})
	}
}

func TestUnsupportedEncoding(t *testing.T) {
	if _, err := ToUTF8([]byte("x"), "klingon"); !errors.Is(err, model.ErrEncodingConversion) {
		t.Errorf("ToUTF8() error = %v, want ErrEncodingConversion", err)
	}
	if _, err := FromUTF8([]byte("x"), "klingon"); !errors.Is(err, model.ErrEncodingConversion) {
		t.Errorf("FromUTF8() error = %v, want ErrEncodingConversion", err)
	}
}

func TestUnrepresentableCharacter(t *testing.T) {
	if _, err := FromUTF8([]byte("日本"), "windows-1252"); !errors.Is(err, model.ErrEncodingConversion) {
		t.Errorf("FromUTF8() error = %v, want ErrEncodingConversion", err)
	}
}

func TestNewUTF8Reader(t *testing.T) {
	utf16, err := FromUTF8([]byte("a,b\n"), UTF16LE)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		input    []byte
		encoding string
		want     string
	}{
		{"utf8 bom skipped", append([]byte{0xEF, 0xBB, 0xBF}, "a,b\n"...), "", "a,b\n"},
		{"bom wins over name", append([]byte{0xFF, 0xFE}, utf16...), "windows-1252", "a,b\n"},
		{"named encoding", []byte("caf\xe9"), "windows-1252", "café"},
		{"short input", []byte("a"), "", "a"},
		{"empty input", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewUTF8Reader(bytes.NewReader(tt.input), tt.encoding)
			if err != nil {
				t.Fatalf("NewUTF8Reader() error = %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("read %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, UTF16BE)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.Copy(w, strings.NewReader("hi")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0, 'h', 0, 'i'}) {
		t.Errorf("NewWriter() wrote % x", buf.Bytes())
	}
}
