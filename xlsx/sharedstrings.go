package xlsx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// stringsPerChunk is the number of shared strings stored in one file of the
// file cache.
const stringsPerChunk = 10000

// stringCache stores the shared string table.
type stringCache interface {
	add(s string) error
	// seal is called once every string has been added.
	seal() error
	get(index int) (string, error)
	close() error
}

// memoryCache keeps every string in a slice.
type memoryCache struct {
	values []string
}

func (c *memoryCache) add(s string) error {
	c.values = append(c.values, s)
	return nil
}

func (c *memoryCache) seal() error { return nil }

func (c *memoryCache) get(index int) (string, error) {
	if index < 0 || index >= len(c.values) {
		return "", fmt.Errorf("%w: index %d of %d", model.ErrSharedStringNotFound, index, len(c.values))
	}
	return c.values[index], nil
}

func (c *memoryCache) close() error {
	c.values = nil
	return nil
}

// fileCache spills strings to chunk files in a temporary folder and keeps
// only the most recently used chunk in memory.
type fileCache struct {
	dir   string
	count int

	w      *bufio.Writer
	f      *os.File
	loaded int // chunk number held in chunk, or -1
	chunk  []string
}

func newFileCache(tempFolder string) (*fileCache, error) {
	dir, err := os.MkdirTemp(tempFolder, "sheetstream-sst-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating shared strings cache: %v", model.ErrIO, err)
	}
	return &fileCache{dir: dir, loaded: -1}, nil
}

func (c *fileCache) chunkPath(n int) string {
	return filepath.Join(c.dir, "chunk"+strconv.Itoa(n))
}

func (c *fileCache) add(s string) error {
	if c.count%stringsPerChunk == 0 {
		if err := c.flush(); err != nil {
			return err
		}
		f, err := os.Create(c.chunkPath(c.count / stringsPerChunk))
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrIO, err)
		}
		c.f = f
		c.w = bufio.NewWriter(f)
	}
	c.count++
	// One quoted string per line keeps embedded newlines out of the framing.
	if _, err := c.w.WriteString(strconv.Quote(s) + "\n"); err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return nil
}

func (c *fileCache) flush() error {
	if c.f == nil {
		return nil
	}
	err := c.w.Flush()
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	c.f, c.w = nil, nil
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return nil
}

func (c *fileCache) seal() error {
	return c.flush()
}

func (c *fileCache) get(index int) (string, error) {
	if index < 0 || index >= c.count {
		return "", fmt.Errorf("%w: index %d of %d", model.ErrSharedStringNotFound, index, c.count)
	}
	n := index / stringsPerChunk
	if n != c.loaded {
		if err := c.load(n); err != nil {
			return "", err
		}
	}
	i := index % stringsPerChunk
	if i >= len(c.chunk) {
		return "", fmt.Errorf("%w: index %d", model.ErrSharedStringNotFound, index)
	}
	return c.chunk[i], nil
}

func (c *fileCache) load(n int) error {
	f, err := os.Open(c.chunkPath(n))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	defer f.Close()

	chunk := make([]string, 0, stringsPerChunk)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		s, err := strconv.Unquote(sc.Text())
		if err != nil {
			return fmt.Errorf("%w: corrupt shared strings cache: %v", model.ErrIO, err)
		}
		chunk = append(chunk, s)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	c.chunk, c.loaded = chunk, n
	return nil
}

func (c *fileCache) close() error {
	c.flush()
	c.chunk = nil
	return os.RemoveAll(c.dir)
}

// maxPreallocatedStrings bounds the capacity reserved from uniqueCount.
const maxPreallocatedStrings = 1 << 16

// sharedStrings is the read side of the shared string table.
type sharedStrings struct {
	cache stringCache
}

// loadSharedStrings reads the whole table from r. The cache is chosen from
// the uniqueCount declared on the root element: tables that are larger
// than limit, or that do not declare a count, go to a file cache unless
// limit is not positive.
func loadSharedStrings(r io.Reader, part string, limit int, tempFolder string) (*sharedStrings, error) {
	cur := xmlcursor.New(r, part)
	defer cur.Close()

	found, err := cur.SkipTo("sst")
	if err != nil {
		return nil, err
	}
	if !found {
		return &sharedStrings{cache: &memoryCache{}}, nil
	}

	var cache stringCache = &memoryCache{}
	unique, err := strconv.Atoi(cur.Attr("uniqueCount"))
	if err != nil || unique < 0 {
		unique = -1
	}
	if limit > 0 && (unique < 0 || unique > limit) {
		fc, err := newFileCache(tempFolder)
		if err != nil {
			return nil, err
		}
		cache = fc
	} else if unique > 0 {
		// uniqueCount is not trusted beyond sizing the first allocation.
		cache = &memoryCache{values: make([]string, 0, min(unique, maxPreallocatedStrings))}
	}

	cur.On("si", xmlcursor.Start, func(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
		n, err := c.Expand()
		if err != nil {
			return xmlcursor.Stop, err
		}
		return xmlcursor.Continue, cache.add(richText(n))
	})
	if _, err := cur.Run(); err != nil {
		cache.close()
		return nil, err
	}
	if err := cache.seal(); err != nil {
		cache.close()
		return nil, err
	}
	return &sharedStrings{cache: cache}, nil
}

// richText returns the text of an si or is element: either its t child or
// the concatenated t of its r runs. Phonetic runs are skipped.
func richText(n *xmlcursor.Node) string {
	var b strings.Builder
	for _, child := range n.Elements() {
		switch child.Name.Local {
		case "t":
			b.WriteString(child.Text())
		case "r":
			if t := child.Child("t"); t != nil {
				b.WriteString(t.Text())
			}
		}
	}
	return xmlesc.UnescapeSpreadsheetML(b.String())
}

// Get returns the string at index.
func (s *sharedStrings) Get(index int) (string, error) {
	return s.cache.get(index)
}

// Close releases the cache and removes any cache files.
func (s *sharedStrings) Close() error {
	return s.cache.close()
}
