package zipfs

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/sheetstream/model"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPack_OrderAndMethod(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"content.xml":           "<content/>",
		"META-INF/manifest.xml": "<manifest/>",
		"mimetype":              "application/vnd.oasis.opendocument.spreadsheet",
	})

	var buf bytes.Buffer
	err := Pack(&buf, dir, PackOptions{First: []string{"mimetype"}, Stored: []string{"mimetype"}})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("got %d entries, want 3", len(zr.File))
	}
	if zr.File[0].Name != "mimetype" {
		t.Errorf("first entry = %q, want mimetype", zr.File[0].Name)
	}
	if zr.File[0].Method != zip.Store {
		t.Errorf("mimetype method = %d, want Store", zr.File[0].Method)
	}
	if zr.File[1].Method != zip.Deflate {
		t.Errorf("other entries should be deflated")
	}
}

func TestArchive_ReadEntry(t *testing.T) {
	dir := writeTree(t, map[string]string{"xl/workbook.xml": "<workbook/>"})
	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Pack(f, dir, PackOptions{}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if !a.Has("xl/workbook.xml") || a.Has("missing.xml") {
		t.Error("Has() returned the wrong answer")
	}
	data, err := a.ReadEntry("xl/workbook.xml")
	if err != nil || string(data) != "<workbook/>" {
		t.Errorf("ReadEntry() = %q, %v", data, err)
	}
	if _, err := a.ReadEntry("missing.xml"); !errors.Is(err, model.ErrIO) {
		t.Errorf("ReadEntry(missing) error = %v, want ErrIO", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpen_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	os.WriteFile(path, []byte("not a zip"), 0o644)

	if _, err := Open(path); !errors.Is(err, model.ErrIO) {
		t.Errorf("Open() error = %v, want ErrIO", err)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		base, target, want string
	}{
		{"xl", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl", "/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl", "../docProps/app.xml", "docProps/app.xml"},
		{"xl/worksheets", "./sheet2.xml", "xl/worksheets/sheet2.xml"},
	}

	for _, tt := range tests {
		if got := Clean(tt.base, tt.target); got != tt.want {
			t.Errorf("Clean(%q, %q) = %q, want %q", tt.base, tt.target, got, tt.want)
		}
	}
}
