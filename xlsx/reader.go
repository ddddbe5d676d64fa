package xlsx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/tsawler/sheetstream/format"
	"github.com/tsawler/sheetstream/internal/zipfs"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/reader"
)

// Reader provides streaming access to the sheets of an XLSX workbook.
type Reader struct {
	archive  *zipfs.Archive
	opts     reader.Options
	strings  *sharedStrings
	styles   *styleTable
	date1904 bool

	sheets    []*model.Sheet
	iterators []*rowIterator
}

// Open opens an XLSX file for reading.
func Open(filename string, opts ...reader.Option) (*Reader, error) {
	a, err := zipfs.Open(filename)
	if err != nil {
		return nil, format.FileContainerError(filename, err)
	}
	return newReader(a, opts)
}

// OpenReaderAt reads an XLSX workbook of the given size from ra.
func OpenReaderAt(ra io.ReaderAt, size int64, opts ...reader.Option) (*Reader, error) {
	a, err := zipfs.NewArchive(ra, size)
	if err != nil {
		return nil, format.ContainerError(ra, size, err)
	}
	return newReader(a, opts)
}

func newReader(a *zipfs.Archive, opts []reader.Option) (*Reader, error) {
	r := &Reader{archive: a, opts: reader.Apply(opts...)}
	if err := r.load(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the container and removes cache files. Row iterators that
// are still open are closed.
func (r *Reader) Close() error {
	for _, it := range r.iterators {
		it.Close()
	}
	var err error
	if r.strings != nil {
		err = r.strings.Close()
		r.strings = nil
	}
	if cerr := r.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *Reader) load() error {
	if !r.archive.Has(partContentTypes) {
		return fmt.Errorf("%w: missing required part %s", model.ErrIO, partContentTypes)
	}

	workbookPart := partWorkbook
	if rels, err := r.relationships(partRootRels); err == nil {
		for _, rel := range rels {
			if rel.Type == relOfficeDocument {
				workbookPart = zipfs.Clean("", rel.Target)
			}
		}
	}
	if !r.archive.Has(workbookPart) {
		return fmt.Errorf("%w: missing required part %s", model.ErrIO, workbookPart)
	}

	data, err := r.archive.ReadEntry(workbookPart)
	if err != nil {
		return err
	}
	var wb workbookXML
	if err := xml.Unmarshal(data, &wb); err != nil {
		return model.IOError(&model.XMLError{Part: workbookPart, Err: err})
	}
	r.date1904 = wb.WorkbookPr.Date1904 == "1" || wb.WorkbookPr.Date1904 == "true"
	activeTab := 0
	if len(wb.Views) > 0 {
		activeTab = wb.Views[0].ActiveTab
	}

	base := path.Dir(workbookPart)
	rels, err := r.relationships(path.Join(base, "_rels", path.Base(workbookPart)+".rels"))
	if err != nil {
		return err
	}
	byID := make(map[string]relationshipXML, len(rels))
	stylesPart, stringsPart := partStyles, partSharedString
	for _, rel := range rels {
		byID[rel.ID] = rel
		switch rel.Type {
		case relStyles:
			stylesPart = zipfs.Clean(base, rel.Target)
		case relSharedStrings:
			stringsPart = zipfs.Clean(base, rel.Target)
		}
	}

	if err := r.loadStyles(stylesPart); err != nil {
		return err
	}
	if err := r.loadSharedStrings(stringsPart); err != nil {
		return err
	}

	format := &cellFormatter{
		strings:     r.strings,
		styles:      r.styles,
		date1904:    r.date1904,
		formatDates: r.opts.FormatDates,
	}
	for _, ref := range wb.Sheets {
		rel, ok := byID[ref.RID]
		if ok && rel.Type != relWorksheet {
			continue // chartsheets and dialog sheets hold no rows
		}
		if !ok {
			return fmt.Errorf("%w: no relationship %q for sheet %q", model.ErrSheetNotFound, ref.RID, ref.Name)
		}
		part := zipfs.Clean(base, rel.Target)
		if !r.archive.Has(part) {
			return fmt.Errorf("%w: sheet %q refers to missing part %s", model.ErrSheetNotFound, ref.Name, part)
		}

		index := len(r.sheets)
		it := newRowIterator(r.archive.OpenEntry, part, format, r.opts.PreserveEmptyRows)
		r.iterators = append(r.iterators, it)
		r.sheets = append(r.sheets, model.NewSheet(ref.Name, index, index == activeTab, ref.State == "" || ref.State == "visible", it))
	}
	return nil
}

// relationships reads a .rels part. A missing part yields no
// relationships.
func (r *Reader) relationships(part string) ([]relationshipXML, error) {
	if !r.archive.Has(part) {
		return nil, nil
	}
	data, err := r.archive.ReadEntry(part)
	if err != nil {
		return nil, err
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, model.IOError(&model.XMLError{Part: part, Err: err})
	}
	return rels.Relationship, nil
}

func (r *Reader) loadStyles(part string) error {
	if !r.archive.Has(part) {
		r.styles = newStyleTable()
		return nil
	}
	data, err := r.archive.ReadEntry(part)
	if err != nil {
		return err
	}
	st, err := parseStyles(data)
	if err != nil {
		return model.IOError(err)
	}
	r.styles = st
	return nil
}

func (r *Reader) loadSharedStrings(part string) error {
	if !r.archive.Has(part) {
		return nil
	}
	rc, err := r.archive.OpenEntry(part)
	if err != nil {
		return err
	}
	sst, err := loadSharedStrings(rc, part, r.opts.SharedStringsInMemoryLimit, r.opts.TempFolder)
	if err != nil {
		var xerr *model.XMLError
		if errors.As(err, &xerr) {
			return model.IOError(err)
		}
		return err
	}
	r.strings = sst
	return nil
}

// Date1904 reports whether the workbook uses the 1904 date system.
func (r *Reader) Date1904() bool {
	return r.date1904
}

// SheetIterator returns an iterator over the sheets in workbook order.
func (r *Reader) SheetIterator() model.SheetIterator {
	return model.NewSheetList(r.sheets)
}

// SheetCount returns the number of worksheets in the workbook.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// SheetNames returns the names of all worksheets.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet at the given zero-based index.
func (r *Reader) Sheet(index int) (*model.Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("%w: sheet index %d out of range (0-%d)", model.ErrSheetNotFound, index, len(r.sheets)-1)
	}
	return r.sheets[index], nil
}

// SheetByName returns the sheet with the given name.
func (r *Reader) SheetByName(name string) (*model.Sheet, error) {
	for _, s := range r.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", model.ErrSheetNotFound, name)
}
