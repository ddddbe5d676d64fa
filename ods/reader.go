package ods

import (
	"fmt"
	"io"

	"github.com/tsawler/sheetstream/format"
	"github.com/tsawler/sheetstream/internal/zipfs"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/reader"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// Reader provides streaming access to the sheets of an ODS document.
type Reader struct {
	archive *zipfs.Archive
	opts    reader.Options
	format  *cellFormatter

	activeName string
	sheets     *sheetIterator
}

// Open opens an ODS file for reading.
func Open(filename string, opts ...reader.Option) (*Reader, error) {
	a, err := zipfs.Open(filename)
	if err != nil {
		return nil, format.FileContainerError(filename, err)
	}
	return newReader(a, opts)
}

// OpenReaderAt reads an ODS document of the given size from ra.
func OpenReaderAt(ra io.ReaderAt, size int64, opts ...reader.Option) (*Reader, error) {
	a, err := zipfs.NewArchive(ra, size)
	if err != nil {
		return nil, format.ContainerError(ra, size, err)
	}
	return newReader(a, opts)
}

func newReader(a *zipfs.Archive, opts []reader.Option) (*Reader, error) {
	r := &Reader{archive: a, opts: reader.Apply(opts...)}
	r.format = &cellFormatter{formatDates: r.opts.FormatDates}
	if !a.Has(partContent) {
		a.Close()
		return nil, fmt.Errorf("%w: missing required part %s", model.ErrIO, partContent)
	}
	if err := r.loadSettings(); err != nil {
		a.Close()
		return nil, err
	}
	r.sheets = &sheetIterator{r: r}
	return r, nil
}

// loadSettings reads the name of the active table from settings.xml. The
// part is optional.
func (r *Reader) loadSettings() error {
	if !r.archive.Has(partSettings) {
		return nil
	}
	rc, err := r.archive.OpenEntry(partSettings)
	if err != nil {
		return err
	}
	cur := xmlcursor.New(rc, partSettings)
	defer cur.Close()

	cur.OnNS(nsConfig, "config-item", xmlcursor.Start, func(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
		if c.AttrNS(nsConfig, "name") != "ActiveTable" {
			return xmlcursor.Continue, nil
		}
		n, err := c.Expand()
		if err != nil {
			return xmlcursor.Stop, err
		}
		r.activeName = n.Text()
		return xmlcursor.Stop, nil
	})
	if _, err := cur.Run(); err != nil {
		return model.IOError(err)
	}
	return nil
}

// SheetIterator returns the iterator over the sheets in document order.
// Sheets share one stream, so there is a single iterator per reader;
// moving it to the next sheet ends iteration of the previous sheet's rows.
func (r *Reader) SheetIterator() model.SheetIterator {
	return r.sheets
}

// ActiveSheetName returns the table settings.xml marks as active, or ""
// when the document does not say.
func (r *Reader) ActiveSheetName() string {
	return r.activeName
}

// Close releases the content stream and the container.
func (r *Reader) Close() error {
	if r.sheets != nil {
		r.sheets.finish()
	}
	return r.archive.Close()
}
