package xmlcursor

import (
	"encoding/xml"
	"strings"
)

// Node is an expanded element. Text is held in child nodes with an empty
// Name, so mixed content keeps its document order.
type Node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Node
	Data     string // character data, for text nodes only
}

// IsText reports whether n is a character data node.
func (n *Node) IsText() bool {
	return n.Name.Local == ""
}

// AttrValue returns the value of the first attribute with the given local
// name, in any namespace.
func (n *Node) AttrValue(local string) string {
	v, _ := lookup(n.Attr, "", local)
	return v
}

// LookupAttr is like AttrValue but reports whether the attribute is present.
func (n *Node) LookupAttr(local string) (string, bool) {
	return lookup(n.Attr, "", local)
}

// AttrValueNS returns the value of an attribute in a specific namespace.
func (n *Node) AttrValueNS(space, local string) string {
	v, _ := lookup(n.Attr, space, local)
	return v
}

// Child returns the first child element with the given local name.
func (n *Node) Child(local string) *Node {
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// Elements returns the child elements, skipping text.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns every descendant element with the given local name in
// document order.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.Children {
			if c.IsText() {
				continue
			}
			if c.Name.Local == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Text returns the character data directly inside n.
func (n *Node) Text() string {
	var b strings.Builder
	for _, c := range n.Children {
		if c.IsText() {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// TextContent returns all character data inside n, recursively.
func (n *Node) TextContent() string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.Children {
			if c.IsText() {
				b.WriteString(c.Data)
			} else {
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}
