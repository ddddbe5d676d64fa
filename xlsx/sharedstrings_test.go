package xlsx

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/tsawler/sheetstream/model"
)

func sstXML(uniqueCount string, items ...string) string {
	var b strings.Builder
	b.WriteString(`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`)
	if uniqueCount != "" {
		b.WriteString(` uniqueCount="` + uniqueCount + `"`)
	}
	b.WriteString(`>`)
	for _, s := range items {
		b.WriteString("<si><t>" + s + "</t></si>")
	}
	b.WriteString("</sst>")
	return b.String()
}

func TestLoadSharedStrings_CacheSelection(t *testing.T) {
	tests := []struct {
		name     string
		count    string
		limit    int
		wantFile bool
	}{
		{"under the limit", "2", 10, false},
		{"over the limit", "2", 1, true},
		{"unknown count", "", 10, true},
		{"no limit", "", 0, false},
		{"negative count", "-1", 100000, true},
		{"negative count without limit", "-1", 0, false},
		{"huge count", "9000000000000000000", 100000, true},
		{"huge count without limit", "9000000000000000000", 0, false},
		{"count beyond int", "99999999999999999999", 0, false},
		{"garbage count", "many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sst, err := loadSharedStrings(strings.NewReader(sstXML(tt.count, "one", "two")), partSharedString, tt.limit, t.TempDir())
			if err != nil {
				t.Fatalf("loadSharedStrings() failed: %v", err)
			}
			defer sst.Close()

			_, isFile := sst.cache.(*fileCache)
			if isFile != tt.wantFile {
				t.Errorf("cache = %T, want file cache %v", sst.cache, tt.wantFile)
			}
			for i, want := range []string{"one", "two"} {
				got, err := sst.Get(i)
				if err != nil || got != want {
					t.Errorf("Get(%d) = %q, %v; want %q", i, got, err, want)
				}
			}
			if _, err := sst.Get(2); !errors.Is(err, model.ErrSharedStringNotFound) {
				t.Errorf("Get(2) error = %v, want ErrSharedStringNotFound", err)
			}
		})
	}
}

func TestFileCache_Chunks(t *testing.T) {
	tmp := t.TempDir()
	n := stringsPerChunk*2 + 5
	c, err := newFileCache(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := c.add("s" + strconv.Itoa(i) + "\nline"); err != nil {
			t.Fatalf("add(%d) failed: %v", i, err)
		}
	}
	if err := c.seal(); err != nil {
		t.Fatal(err)
	}

	for _, i := range []int{0, n - 1, stringsPerChunk, 3, stringsPerChunk - 1} {
		got, err := c.get(i)
		want := "s" + strconv.Itoa(i) + "\nline"
		if err != nil || got != want {
			t.Errorf("get(%d) = %q, %v; want %q", i, got, err, want)
		}
	}
	if _, err := c.get(n); !errors.Is(err, model.ErrSharedStringNotFound) {
		t.Errorf("get(%d) error = %v", n, err)
	}

	if err := c.close(); err != nil {
		t.Fatal(err)
	}
	if entries, _ := os.ReadDir(tmp); len(entries) != 0 {
		t.Errorf("cache folder not removed: %v", entries)
	}
}

func TestLoadSharedStrings_Malformed(t *testing.T) {
	_, err := loadSharedStrings(strings.NewReader(`<sst uniqueCount="1"><si><t>x`), partSharedString, 10, t.TempDir())
	var xerr *model.XMLError
	if !errors.As(err, &xerr) {
		t.Errorf("error = %v, want *model.XMLError", err)
	}
}

func TestLoadSharedStrings_NoTable(t *testing.T) {
	sst, err := loadSharedStrings(strings.NewReader(`<other/>`), partSharedString, 10, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sst.Get(0); !errors.Is(err, model.ErrSharedStringNotFound) {
		t.Errorf("Get(0) error = %v", err)
	}
}
