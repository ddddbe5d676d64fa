package ods

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/reader"
	"github.com/tsawler/sheetstream/style"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w := NewWriter()
	if err := w.SetTempFolder(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	return w
}

func writeDocument(t *testing.T, w *Writer, rows ...*model.Row) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.ods")
	if err := w.OpenToFile(path); err != nil {
		t.Fatalf("OpenToFile() failed: %v", err)
	}
	if err := w.AddRows(rows); err != nil {
		t.Fatalf("AddRows() failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	return path
}

func readPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	t.Fatalf("%s has no part %s", path, name)
	return ""
}

func values(v ...any) *model.Row {
	return model.NewRowFromValues(v, nil)
}

func TestWriter_RoundTrip(t *testing.T) {
	when := time.Date(2020, 3, 4, 6, 0, 0, 0, time.UTC)
	path := writeDocument(t, newTestWriter(t),
		values("id", "name", "price", "active", "created", "took"),
		values(1, "Widget", 1234.5, true, when, 90*time.Minute),
		values(int64(-2), "Gadget & <Co>", float32(0.25), false, nil, "x"),
		model.NewRow([]*model.Cell{model.NewErrorCell("#N/A"), model.NewCell("two\nlines  here\ttab")}, nil),
	)

	_, rows := readFirstSheet(t, openTest(t, path))
	want := [][]any{
		{"id", "name", "price", "active", "created", "took"},
		{int64(1), "Widget", 1234.5, true, when, 90 * time.Minute},
		{int64(-2), "Gadget & <Co>", 0.25, false, nil, "x"},
		{"#N/A", "two\nlines  here\ttab"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, r := range rows {
		got := r.Values()
		if !reflect.DeepEqual(got, want[i]) {
			t.Errorf("row %d = %#v, want %#v", i+1, got, want[i])
		}
	}
	if !rows[3].Cell(0).IsError() {
		t.Errorf("error cell read back as %v", rows[3].Cell(0).Type)
	}
}

func TestWriter_ContainerLayout(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(t)
	if err := w.OpenToWriter(&buf); err != nil {
		t.Fatal(err)
	}
	if err := w.AddRow(values("a")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	first := zr.File[0]
	if first.Name != partMimetype || first.Method != zip.Store {
		t.Errorf("first entry = %s (method %d), want stored mimetype", first.Name, first.Method)
	}
	rc, err := first.Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != MimeType {
		t.Errorf("mimetype = %q", data)
	}

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, part := range []string{partManifest, partContent, partStyles, partMeta, partSettings} {
		if !names[part] {
			t.Errorf("missing part %s", part)
		}
	}
	for name := range names {
		if strings.HasPrefix(name, fragmentDir+"/") {
			t.Errorf("sheet fragment %s was packed", name)
		}
	}

	r, err := OpenReaderAt(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("OpenReaderAt() failed: %v", err)
	}
	defer r.Close()
}

func TestWriter_Compression(t *testing.T) {
	path := writeDocument(t, newTestWriter(t),
		values("a", "a", "a", "b"),
		model.NewRow(nil, nil),
		model.NewRow(nil, nil),
		values("after gap"),
	)
	content := readPart(t, path, partContent)

	for _, want := range []string{
		`<table:table-cell table:number-columns-repeated="3" table:style-name="ce0" office:value-type="string" calcext:value-type="string"><text:p>a</text:p></table:table-cell>`,
		`<table:table-row table:number-rows-repeated="2"><table:table-cell/></table:table-row>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content.xml lacks %s", want)
		}
	}

	keys, rows := readFirstSheet(t, openTest(t, path))
	if !reflect.DeepEqual(keys, []int{1, 4}) {
		t.Errorf("keys = %v, want [1 4]", keys)
	}
	if got := rows[0].Values(); !reflect.DeepEqual(got, []any{"a", "a", "a", "b"}) {
		t.Errorf("row 1 = %v", got)
	}

	keys, _ = readFirstSheet(t, openTest(t, path, reader.WithPreserveEmptyRows(true)))
	if !reflect.DeepEqual(keys, []int{1, 2, 3, 4}) {
		t.Errorf("preserved keys = %v, want [1 2 3 4]", keys)
	}
}

func TestWriter_SheetsAndSettings(t *testing.T) {
	w := newTestWriter(t)
	path := filepath.Join(t.TempDir(), "sheets.ods")
	if err := w.OpenToFile(path); err != nil {
		t.Fatal(err)
	}
	first := w.CurrentSheet()
	if err := first.SetName("Data & More"); err != nil {
		t.Fatal(err)
	}
	if err := w.AddRow(values(1)); err != nil {
		t.Fatal(err)
	}
	hidden, err := w.AddNewSheetAndMakeItCurrent()
	if err != nil {
		t.Fatal(err)
	}
	hidden.SetVisible(false)
	if err := w.AddRow(values(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := w.AddNewSheetAndMakeItCurrent(); err != nil {
		t.Fatal(err)
	}
	if err := w.SetCurrentSheet(first); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	content := readPart(t, path, partContent)
	for _, want := range []string{
		`<table:table table:name="Data &amp; More" table:style-name="ta1">`,
		`<table:table table:name="Sheet2" table:style-name="ta2">`,
		`<table:table table:name="Sheet3" table:style-name="ta1"><table:table-column table:style-name="co1" table:default-cell-style-name="Default"/><table:table-row><table:table-cell/></table:table-row></table:table>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content.xml lacks %s", want)
		}
	}
	if settings := readPart(t, path, partSettings); !strings.Contains(settings, `config:name="ActiveTable" config:type="string">Data &amp; More<`) {
		t.Errorf("settings.xml = %s", settings)
	}

	r := openTest(t, path)
	if r.ActiveSheetName() != "Data & More" {
		t.Errorf("ActiveSheetName() = %q", r.ActiveSheetName())
	}
	type info struct {
		name            string
		active, visible bool
	}
	var got []info
	it := r.SheetIterator()
	for err := it.Rewind(); it.Valid(); err = it.Next() {
		if err != nil {
			t.Fatal(err)
		}
		s := it.Current()
		got = append(got, info{s.Name, s.Active, s.Visible})
	}
	want := []info{{"Data & More", true, true}, {"Sheet2", false, false}, {"Sheet3", false, true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sheets = %+v, want %+v", got, want)
	}
}

func TestWriter_Styles(t *testing.T) {
	border, err := style.NewBorderPart(style.Red, style.BorderMedium, style.BorderDashed)
	if err != nil {
		t.Fatal(err)
	}
	header, err := style.NewBuilder().Bold().Italic().Background(style.Yellow).
		Alignment(style.AlignCenter).Border(style.NewBorder(border)).FontName("Courier New").Build()
	if err != nil {
		t.Fatal(err)
	}
	path := writeDocument(t, newTestWriter(t),
		model.NewRowFromValues([]any{"title"}, header),
		values("plain"),
	)
	content := readPart(t, path, partContent)

	for _, want := range []string{
		`<style:font-face style:name="Courier New" svg:font-family="Courier New"/>`,
		`<style:style style:name="ce0" style:family="table-cell" style:parent-style-name="Default"><style:text-properties style:font-name="Arial" fo:font-size="10pt"/></style:style>`,
		`fo:background-color="#ffff00"`,
		`fo:border-top="1.75pt dashed #ff0000"`,
		`style:text-align-source="fix"`,
		`<style:paragraph-properties fo:text-align="center"/>`,
		`fo:font-weight="bold"`,
		`fo:font-style="italic"`,
		`<table:table-cell table:style-name="ce1" office:value-type="string" calcext:value-type="string"><text:p>title</text:p></table:table-cell>`,
		`<table:table-cell table:style-name="ce0" office:value-type="string" calcext:value-type="string"><text:p>plain</text:p></table:table-cell>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content.xml lacks %s", want)
		}
	}
	if styles := readPart(t, path, partStyles); !strings.Contains(styles, `<style:style style:name="Default" style:family="table-cell">`) {
		t.Errorf("styles.xml has no Default style: %s", styles)
	}
}

func TestWriter_ColumnWidthsAndMerges(t *testing.T) {
	w := newTestWriter(t)
	if err := w.SetDefaultColumnWidth(12); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "layout.ods")
	if err := w.OpenToFile(path); err != nil {
		t.Fatal(err)
	}
	s := w.CurrentSheet()
	if err := s.SetColumnWidthForRange(20, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeCells([2]int{0, 0}, [2]int{2, 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.AddRows([]*model.Row{values("merged", "x", "y"), values("p", "q")}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	content := readPart(t, path, partContent)
	for _, want := range []string{
		`<style:style style:name="co1" style:family="table-column"><style:table-column-properties fo:break-before="auto" style:column-width="0.9271in"/></style:style>`,
		`<style:style style:name="co2" style:family="table-column"><style:table-column-properties fo:break-before="auto" style:column-width="1.5104in"/></style:style>`,
		`<table:table-column table:style-name="co1" table:default-cell-style-name="Default"/><table:table-column table:style-name="co2" table:number-columns-repeated="2" table:default-cell-style-name="Default"/>`,
		`table:number-columns-spanned="3" table:number-rows-spanned="2"`,
		`<table:covered-table-cell table:style-name="ce0" office:value-type="string" calcext:value-type="string"><text:p>x</text:p></table:covered-table-cell>`,
		`<table:covered-table-cell table:style-name="ce0" office:value-type="string" calcext:value-type="string"><text:p>q</text:p></table:covered-table-cell>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content.xml lacks %s", want)
		}
	}

	_, rows := readFirstSheet(t, openTest(t, path))
	if got := rows[0].Values(); !reflect.DeepEqual(got, []any{"merged", "x", "y"}) {
		t.Errorf("row 1 = %v", got)
	}
}

func TestWriter_InvalidRowRemovesOutput(t *testing.T) {
	tmp := t.TempDir()
	w := NewWriter()
	if err := w.SetTempFolder(tmp); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bad.ods")
	if err := w.OpenToFile(path); err != nil {
		t.Fatal(err)
	}
	if err := w.AddRow(values("ok")); err != nil {
		t.Fatal(err)
	}
	err := w.AddRow(values(struct{}{}))
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("AddRow() error = %v, want ErrInvalidArgument", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output exists after failure: %v", err)
	}
	if entries, _ := os.ReadDir(tmp); len(entries) != 0 {
		t.Errorf("temp folder not cleaned: %v", entries)
	}
	if err := w.AddRow(values("late")); !errors.Is(err, model.ErrWriterClosed) {
		t.Errorf("AddRow() after failure error = %v, want ErrWriterClosed", err)
	}
}
