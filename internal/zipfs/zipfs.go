// Package zipfs reads entries from ZIP containers and packs a folder of
// generated parts into one.
package zipfs

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/sheetstream/model"
)

// Archive is an open ZIP container.
type Archive struct {
	zr     *zip.Reader
	closer io.Closer
	files  map[string]*zip.File
}

// Open opens the container at path.
func Open(path string) (*Archive, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening ZIP archive %s: %v", model.ErrIO, path, err)
	}
	a := newArchive(&zrc.Reader)
	a.closer = zrc
	return a, nil
}

// NewArchive reads a container from r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: opening ZIP archive: %v", model.ErrIO, err)
	}
	return newArchive(zr), nil
}

func newArchive(zr *zip.Reader) *Archive {
	a := &Archive{zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.files[f.Name] = f
	}
	return a
}

// Has reports whether the container holds an entry named name.
func (a *Archive) Has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// Names returns the entry names in container order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// OpenEntry opens an entry for streaming.
func (a *Archive) OpenEntry(name string) (io.ReadCloser, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found in archive", model.ErrIO, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", model.ErrIO, name, err)
	}
	return rc, nil
}

// ReadEntry returns the whole content of an entry.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	rc, err := a.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", model.ErrIO, name, err)
	}
	return data, nil
}

// Close releases the container. It is safe to call more than once.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// PackOptions controls the layout of a packed container.
type PackOptions struct {
	// First lists entries written before all others, in order.
	First []string
	// Stored lists entries written without compression.
	Stored []string
}

// Pack writes every regular file under dir into a ZIP container on w, with
// entry names relative to dir and slash separated.
func Pack(w io.Writer, dir string, opts PackOptions) error {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: listing %s: %v", model.ErrIO, dir, err)
	}

	ordered := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range opts.First {
		for _, m := range names {
			if m == n {
				ordered = append(ordered, n)
				seen[n] = true
			}
		}
	}
	for _, n := range names {
		if !seen[n] {
			ordered = append(ordered, n)
		}
	}

	stored := make(map[string]bool, len(opts.Stored))
	for _, n := range opts.Stored {
		stored[n] = true
	}

	zw := zip.NewWriter(w)
	for _, name := range ordered {
		method := zip.Deflate
		if stored[name] {
			method = zip.Store
		}
		if err := addFile(zw, filepath.Join(dir, filepath.FromSlash(name)), name, method); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finishing ZIP archive: %v", model.ErrIO, err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, name string, method uint16) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()

	dst, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return fmt.Errorf("%w: adding %s: %v", model.ErrIO, name, err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("%w: writing %s: %v", model.ErrIO, name, err)
	}
	return nil
}

// Clean joins a relationship target onto base the way package part names
// are resolved: absolute targets start at the container root, relative ones
// at base.
func Clean(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	joined := filepath.ToSlash(filepath.Join(filepath.FromSlash(base), filepath.FromSlash(target)))
	return strings.TrimPrefix(joined, "/")
}
