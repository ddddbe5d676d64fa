package xmlcursor

import (
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/tsawler/sheetstream/model"
)

// Phase selects whether a handler runs on an element's start or end tag.
type Phase int

const (
	// Start runs the handler when the start tag is read.
	Start Phase = iota
	// End runs the handler when the end tag is read.
	End
)

// Action tells the cursor what to do after a handler returns.
type Action int

const (
	// Continue keeps pulling events.
	Continue Action = iota
	// Stop suspends pulling and returns control to the caller of Run.
	Stop
)

// Handler is called for a registered element. During a Start handler the
// cursor is positioned on the start tag, so Attr and Expand are available.
type Handler func(c *Cursor) (Action, error)

type key struct {
	space string // empty matches any namespace
	local string
	phase Phase
}

// Cursor is a pull reader over one XML part that dispatches start and end
// tags to registered handlers.
type Cursor struct {
	dec      *xml.Decoder
	part     string
	closer   io.Closer
	handlers map[key]Handler

	cur   xml.StartElement
	depth int
	err   error
}

// New returns a cursor reading r. part names the XML part in error
// messages. If r is an io.Closer, Close closes it.
//
// Non UTF-8 parts are decoded according to their XML declaration.
func New(r io.Reader, part string) *Cursor {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	c := &Cursor{
		dec:      dec,
		part:     part,
		handlers: make(map[key]Handler),
	}
	if cl, ok := r.(io.Closer); ok {
		c.closer = cl
	}
	return c
}

// On registers h for elements with the given local name in any namespace.
// A later registration for the same name and phase replaces the earlier one.
func (c *Cursor) On(local string, p Phase, h Handler) {
	c.handlers[key{local: local, phase: p}] = h
}

// OnNS registers h for elements in a specific namespace.
func (c *Cursor) OnNS(space, local string, p Phase, h Handler) {
	c.handlers[key{space: space, local: local, phase: p}] = h
}

// Reset removes all handlers.
func (c *Cursor) Reset() {
	clear(c.handlers)
}

func (c *Cursor) handler(name xml.Name, p Phase) Handler {
	if h, ok := c.handlers[key{space: name.Space, local: name.Local, phase: p}]; ok {
		return h
	}
	return c.handlers[key{local: name.Local, phase: p}]
}

// Run pulls events, invoking handlers in document order, until a handler
// returns Stop or the document ends. It reports whether it stopped because
// of a handler. Errors from the parser are returned as *model.XMLError;
// errors returned by handlers are passed through unchanged.
func (c *Cursor) Run() (stopped bool, err error) {
	for {
		tok, err := c.next()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		var h Handler
		switch t := tok.(type) {
		case xml.StartElement:
			c.cur = t
			h = c.handler(t.Name, Start)
		case xml.EndElement:
			c.cur = xml.StartElement{Name: t.Name}
			h = c.handler(t.Name, End)
		}
		if h == nil {
			continue
		}
		action, err := h(c)
		if err != nil {
			return false, err
		}
		if action == Stop {
			return true, nil
		}
	}
}

// SkipTo advances to the next start tag with the given local name without
// running handlers. It reports false if the document ends first.
func (c *Cursor) SkipTo(local string) (bool, error) {
	for {
		tok, err := c.next()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == local {
			c.cur = se
			return true, nil
		}
	}
}

// Expand reads the element the cursor is positioned on, including all of
// its descendants, into a Node. It must be called from a Start handler or
// after SkipTo. The element's end tag is consumed, so no End handler runs
// for it.
func (c *Cursor) Expand() (*Node, error) {
	root := &Node{Name: c.cur.Name, Attr: c.cur.Attr}
	stack := []*Node{root}
	for len(stack) > 0 {
		tok, err := c.next()
		if err == io.EOF {
			return nil, c.fail(io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, err
		}
		parent := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name, Attr: t.Attr}
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			parent.Children = append(parent.Children, &Node{Data: string(t)})
		}
	}
	return root, nil
}

// Name returns the name of the element the cursor is positioned on.
func (c *Cursor) Name() xml.Name {
	return c.cur.Name
}

// Depth returns the element nesting depth at the current position.
func (c *Cursor) Depth() int {
	return c.depth
}

// Attr returns the value of the first attribute of the current element with
// the given local name, in any namespace.
func (c *Cursor) Attr(local string) string {
	v, _ := lookup(c.cur.Attr, "", local)
	return v
}

// AttrNS returns the value of an attribute in a specific namespace.
func (c *Cursor) AttrNS(space, local string) string {
	v, _ := lookup(c.cur.Attr, space, local)
	return v
}

// LookupAttr is like Attr but reports whether the attribute is present.
func (c *Cursor) LookupAttr(local string) (string, bool) {
	return lookup(c.cur.Attr, "", local)
}

// Part returns the part name given to New.
func (c *Cursor) Part() string {
	return c.part
}

// Close closes the underlying reader if it is closable.
func (c *Cursor) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

func (c *Cursor) next() (xml.Token, error) {
	if c.err != nil {
		return nil, c.err
	}
	tok, err := c.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, c.fail(err)
	}
	switch tok.(type) {
	case xml.StartElement:
		c.depth++
	case xml.EndElement:
		c.depth--
	}
	return tok, nil
}

// fail records a sticky parse error.
func (c *Cursor) fail(err error) error {
	c.err = &model.XMLError{Part: c.part, Err: err}
	return c.err
}

func lookup(attrs []xml.Attr, space, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == local && (space == "" || a.Name.Space == space) {
			return a.Value, true
		}
	}
	return "", false
}
