package xlsx

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/sheetstream/internal/xmlesc"
	"github.com/tsawler/sheetstream/model"
)

// countsReserve is the room left in the root element for the count
// attributes, which are only known at close.
const countsReserve = 64

// sstWriter streams the shared string table to its part as strings are
// first seen. Indexes are assigned in insertion order.
type sstWriter struct {
	f       *os.File
	w       *bufio.Writer
	index   map[string]int
	refs    int // total number of references, the sst count
	countAt int64
}

func newSSTWriter(path string) (*sstWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	s := &sstWriter{f: f, w: bufio.NewWriter(f), index: make(map[string]int)}
	head := xml.Header + `<sst xmlns="` + nsSpreadsheetML + `" `
	s.countAt = int64(len(head))
	s.w.WriteString(head)
	s.w.WriteString(strings.Repeat(" ", countsReserve))
	s.w.WriteString(">")
	return s, nil
}

// Add returns the index of s, writing it to the table if it is new.
func (s *sstWriter) Add(v string) (int, error) {
	s.refs++
	if i, ok := s.index[v]; ok {
		return i, nil
	}
	i := len(s.index)
	s.index[v] = i
	_, err := s.w.WriteString(`<si><t xml:space="preserve">` + xmlesc.EscapeSpreadsheetML(v) + `</t></si>`)
	if err != nil {
		return 0, fmt.Errorf("%w: writing shared strings: %v", model.ErrIO, err)
	}
	return i, nil
}

// Close ends the table and fills in the counts.
func (s *sstWriter) Close() error {
	if s.f == nil {
		return nil
	}
	defer func() { s.f = nil }()

	s.w.WriteString("</sst>")
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("%w: writing shared strings: %v", model.ErrIO, err)
	}
	counts := `count="` + strconv.Itoa(s.refs) + `" uniqueCount="` + strconv.Itoa(len(s.index)) + `"`
	if _, err := s.f.WriteAt([]byte(counts), s.countAt); err != nil {
		s.f.Close()
		return fmt.Errorf("%w: writing shared strings: %v", model.ErrIO, err)
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return nil
}

// Abort closes the file without finishing it.
func (s *sstWriter) Abort() {
	if s.f != nil {
		s.f.Close()
		s.f = nil
	}
}
