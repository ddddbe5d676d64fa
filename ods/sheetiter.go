package ods

import (
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/xmlcursor"
)

// tableDepth is the nesting depth of sheet tables:
// document-content > body > spreadsheet > table.
const tableDepth = 4

// sheetIterator walks the table elements of content.xml. Each Rewind
// reopens the part, so unlike row iterators it can be rewound any number
// of times.
type sheetIterator struct {
	r   *Reader
	cur *xmlcursor.Cursor

	hidden map[string]bool // table style names with display="false"
	state  model.IteratorState
	index  int
	sheet  *model.Sheet
	rows   *rowIterator
}

func (s *sheetIterator) Rewind() error {
	s.detach()
	s.closeStream()

	rc, err := s.r.archive.OpenEntry(partContent)
	if err != nil {
		s.state = model.IteratorExhausted
		return err
	}
	s.cur = xmlcursor.New(rc, partContent)
	s.hidden = make(map[string]bool)
	s.index = -1

	s.cur.OnNS(nsStyle, "style", xmlcursor.Start, s.onStyle)
	s.cur.OnNS(nsTable, "table", xmlcursor.Start, s.onTable)
	stopped, err := s.cur.Run()
	s.cur.Reset()
	if err != nil {
		s.finish()
		return model.IOError(err)
	}
	if !stopped {
		s.finish()
		return nil
	}
	s.position()
	return nil
}

func (s *sheetIterator) Next() error {
	switch s.state {
	case model.IteratorNotStarted:
		return s.Rewind()
	case model.IteratorExhausted:
		return nil
	}

	s.detach()
	for {
		found, err := s.cur.SkipTo("table")
		if err != nil {
			s.finish()
			return model.IOError(err)
		}
		if !found {
			s.finish()
			return nil
		}
		if s.cur.Name().Space == nsTable && s.cur.Depth() == tableDepth {
			break
		}
	}
	s.position()
	return nil
}

func (s *sheetIterator) Valid() bool {
	return s.state == model.IteratorPositioned
}

func (s *sheetIterator) Current() *model.Sheet {
	if s.state != model.IteratorPositioned {
		return nil
	}
	return s.sheet
}

func (s *sheetIterator) Key() int {
	return s.index
}

// position builds the sheet for the table start tag under the cursor.
func (s *sheetIterator) position() {
	s.index++
	name := s.cur.AttrNS(nsTable, "name")
	active := name == s.r.activeName || (s.r.activeName == "" && s.index == 0)
	visible := !s.hidden[s.cur.AttrNS(nsTable, "style-name")]

	s.rows = newRowIterator(s.cur, name, s.r.format, s.r.opts.PreserveEmptyRows)
	s.sheet = model.NewSheet(name, s.index, active, visible, s.rows)
	s.state = model.IteratorPositioned
}

// detach ends the row iterator of the current sheet; the stream is about
// to move past it.
func (s *sheetIterator) detach() {
	if s.rows != nil {
		s.rows.detach()
		s.rows = nil
	}
	if s.cur != nil {
		s.cur.Reset()
	}
}

func (s *sheetIterator) finish() {
	s.detach()
	s.closeStream()
	s.sheet = nil
	s.state = model.IteratorExhausted
}

func (s *sheetIterator) closeStream() {
	if s.cur != nil {
		s.cur.Close()
		s.cur = nil
	}
}

func (s *sheetIterator) onStyle(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	if c.AttrNS(nsStyle, "family") != "table" {
		return xmlcursor.Continue, nil
	}
	name := c.AttrNS(nsStyle, "name")
	n, err := c.Expand()
	if err != nil {
		return xmlcursor.Stop, err
	}
	if p := n.Child("table-properties"); p != nil && p.AttrValueNS(nsTable, "display") == "false" {
		s.hidden[name] = true
	}
	return xmlcursor.Continue, nil
}

func (s *sheetIterator) onTable(c *xmlcursor.Cursor) (xmlcursor.Action, error) {
	if c.Depth() != tableDepth {
		return xmlcursor.Continue, nil
	}
	return xmlcursor.Stop, nil
}
