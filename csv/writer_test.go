package csv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tsawler/sheetstream/model"
)

func values(v ...any) *model.Row {
	return model.NewRowFromValues(v, nil)
}

func TestWriter_Output(t *testing.T) {
	when := time.Date(2020, 3, 4, 6, 0, 0, 0, time.UTC)
	errCell := model.NewErrorCell("#N/A")

	tests := []struct {
		name      string
		configure func(*Writer) error
		rows      []*model.Row
		want      string
	}{
		{
			name: "defaults",
			rows: []*model.Row{
				values("id", "name"),
				values(1, "a,b"),
				values(nil, nil),
				values(true, when),
				values(2.5, `q"`),
				model.NewRow([]*model.Cell{errCell, nil, model.NewCell(int64(-7))}, nil),
				values(false, 90*time.Minute),
			},
			want: "\ufeffid,name\n1,\"a,b\"\n1,2020-03-04T06:00:00Z\n2.5,\"q\"\"\"\n#N/A,,-7\n0,1h30m0s\n",
		},
		{
			name:      "no bom",
			configure: func(w *Writer) error { return w.SetShouldAddBOM(false) },
			rows:      []*model.Row{values("x", "line\nbreak")},
			want:      "x,\"line\nbreak\"\n",
		},
		{
			name: "semicolon",
			configure: func(w *Writer) error {
				if err := w.SetShouldAddBOM(false); err != nil {
					return err
				}
				return w.SetFieldDelimiter(';')
			},
			rows: []*model.Row{values("a;b", "c,d", 3)},
			want: "\"a;b\";c,d;3\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter()
			if tt.configure != nil {
				if err := tt.configure(w); err != nil {
					t.Fatal(err)
				}
			}
			var buf bytes.Buffer
			if err := w.OpenToWriter(&buf); err != nil {
				t.Fatal(err)
			}
			if err := w.AddRows(tt.rows); err != nil {
				t.Fatalf("AddRows() failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() failed: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewWriter()
	if err := w.OpenToFile(path); err != nil {
		t.Fatal(err)
	}
	rows := []*model.Row{
		values("name", "note"),
		values("Gadget & <Co>", "two\nlines"),
		values("  padded  ", `"quoted"`),
	}
	if err := w.AddRows(rows); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := model.ReadAll(onlySheet(t, r).Rows())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if !reflect.DeepEqual(got[i].Values(), rows[i].Values()) {
			t.Errorf("row %d = %v, want %v", i+1, got[i].Values(), rows[i].Values())
		}
	}
}

func TestWriter_Lifecycle(t *testing.T) {
	w := NewWriter()
	if err := w.AddRow(values("a")); !errors.Is(err, model.ErrWriterNotOpened) {
		t.Errorf("AddRow before open = %v, want ErrWriterNotOpened", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close before open = %v, want nil", err)
	}

	var buf bytes.Buffer
	if err := w.OpenToWriter(&buf); err != nil {
		t.Fatal(err)
	}
	setters := map[string]func() error{
		"SetFieldDelimiter": func() error { return w.SetFieldDelimiter(';') },
		"SetShouldAddBOM":   func() error { return w.SetShouldAddBOM(false) },
		"SetTempFolder":     func() error { return w.SetTempFolder(t.TempDir()) },
		"SetLogger":         func() error { return w.SetLogger(nil) },
		"OpenToWriter":      func() error { return w.OpenToWriter(&buf) },
	}
	for name, fn := range setters {
		if err := fn(); !errors.Is(err, model.ErrWriterAlreadyOpened) {
			t.Errorf("%s after open = %v, want ErrWriterAlreadyOpened", name, err)
		}
	}
	if err := w.AddRow(nil); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("AddRow(nil) = %v, want ErrInvalidArgument", err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := w.AddRow(values("a")); !errors.Is(err, model.ErrWriterClosed) {
		t.Errorf("AddRow after close = %v, want ErrWriterClosed", err)
	}
	if err := w.SetShouldAddBOM(true); !errors.Is(err, model.ErrWriterClosed) {
		t.Errorf("setter after close = %v, want ErrWriterClosed", err)
	}
}

func TestWriter_InvalidDelimiter(t *testing.T) {
	if err := NewWriter().SetFieldDelimiter('\n'); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("SetFieldDelimiter('\\n') = %v, want ErrInvalidArgument", err)
	}
}

func TestWriter_Abort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	w := NewWriter()
	if err := w.OpenToFile(path); err != nil {
		t.Fatal(err)
	}
	if err := w.AddRow(values("a")); err != nil {
		t.Fatal(err)
	}
	w.Abort()
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("output folder holds %d entries after Abort", len(entries))
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() after Abort = %v, want nil", err)
	}
}

func TestWriter_InvalidRowRemovesOutput(t *testing.T) {
	tests := []struct {
		name string
		row  *model.Row
	}{
		{"too long", values(strings.Repeat("x", 32768))},
		{"unsupported", values(struct{}{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "out.csv")
			w := NewWriter()
			if err := w.OpenToFile(path); err != nil {
				t.Fatal(err)
			}
			if err := w.AddRow(values("ok")); err != nil {
				t.Fatal(err)
			}
			if err := w.AddRow(tt.row); !errors.Is(err, model.ErrInvalidArgument) {
				t.Fatalf("AddRow() = %v, want ErrInvalidArgument", err)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("output folder holds %d entries after failure", len(entries))
			}
			if err := w.AddRow(values("again")); !errors.Is(err, model.ErrWriterClosed) {
				t.Errorf("AddRow after failure = %v, want ErrWriterClosed", err)
			}
		})
	}
}
