package xmlcursor

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/sheetstream/model"
)

const sheetXML = `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1"><v>1</v></c><c r="B1" t="inlineStr"><is><t>a &amp; b</t><r><t> c</t></r></is></c></row>
<row r="2"><c r="A2"><v>2</v></c></row>
</sheetData>
</worksheet>`

func TestCursor_StopsPerRow(t *testing.T) {
	c := New(strings.NewReader(sheetXML), "sheet1.xml")

	var rows []string
	var cells []string
	c.On("row", Start, func(c *Cursor) (Action, error) {
		rows = append(rows, c.Attr("r"))
		return Continue, nil
	})
	c.On("c", Start, func(c *Cursor) (Action, error) {
		cells = append(cells, c.Attr("r"))
		return Continue, nil
	})
	c.On("row", End, func(c *Cursor) (Action, error) {
		return Stop, nil
	})

	stopped, err := c.Run()
	if err != nil || !stopped {
		t.Fatalf("first Run() = %v, %v; want stopped", stopped, err)
	}
	if len(rows) != 1 || len(cells) != 2 {
		t.Fatalf("after first stop rows=%v cells=%v", rows, cells)
	}

	stopped, err = c.Run()
	if err != nil || !stopped {
		t.Fatalf("second Run() = %v, %v; want stopped", stopped, err)
	}
	if len(rows) != 2 || cells[2] != "A2" {
		t.Fatalf("after second stop rows=%v cells=%v", rows, cells)
	}

	stopped, err = c.Run()
	if err != nil || stopped {
		t.Fatalf("final Run() = %v, %v; want end of document", stopped, err)
	}
}

func TestCursor_Expand(t *testing.T) {
	c := New(strings.NewReader(sheetXML), "sheet1.xml")

	var nodes []*Node
	c.On("c", Start, func(c *Cursor) (Action, error) {
		n, err := c.Expand()
		if err != nil {
			return Continue, err
		}
		nodes = append(nodes, n)
		return Continue, nil
	})
	ends := 0
	c.On("c", End, func(c *Cursor) (Action, error) {
		ends++
		return Continue, nil
	})

	if _, err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("expanded %d cells, want 3", len(nodes))
	}
	if ends != 0 {
		t.Errorf("End handler ran %d times for expanded elements", ends)
	}

	inline := nodes[1]
	if inline.AttrValue("t") != "inlineStr" {
		t.Errorf("AttrValue(t) = %q", inline.AttrValue("t"))
	}
	if got := inline.Child("is").TextContent(); got != "a & b c" {
		t.Errorf("TextContent() = %q, want %q", got, "a & b c")
	}
	if got := len(inline.FindAll("t")); got != 2 {
		t.Errorf("FindAll(t) = %d nodes, want 2", got)
	}
	if got := nodes[0].Child("v").Text(); got != "1" {
		t.Errorf("Text() = %q, want 1", got)
	}
}

func TestCursor_SkipTo(t *testing.T) {
	c := New(strings.NewReader(`<sst count="2"><si><t>x</t></si><si><t>y</t></si></sst>`), "sharedStrings.xml")

	found, err := c.SkipTo("sst")
	if err != nil || !found {
		t.Fatalf("SkipTo(sst) = %v, %v", found, err)
	}
	if c.Attr("count") != "2" {
		t.Errorf("Attr(count) = %q", c.Attr("count"))
	}

	var got []string
	for {
		found, err := c.SkipTo("si")
		if err != nil {
			t.Fatalf("SkipTo(si) error = %v", err)
		}
		if !found {
			break
		}
		n, err := c.Expand()
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		got = append(got, n.TextContent())
	}
	if strings.Join(got, ",") != "x,y" {
		t.Errorf("strings = %v", got)
	}
}

func TestCursor_NamespaceHandlers(t *testing.T) {
	doc := `<root xmlns:a="urn:a" xmlns:b="urn:b"><a:item/><b:item/></root>`
	c := New(strings.NewReader(doc), "ns.xml")

	var all, onlyB int
	c.On("item", Start, func(*Cursor) (Action, error) { all++; return Continue, nil })
	c.OnNS("urn:b", "item", Start, func(*Cursor) (Action, error) { onlyB++; return Continue, nil })

	if _, err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if all != 1 || onlyB != 1 {
		t.Errorf("all=%d onlyB=%d, want 1 and 1", all, onlyB)
	}
}

func TestCursor_MalformedXML(t *testing.T) {
	c := New(strings.NewReader(`<a><b></a>`), "broken.xml")

	_, err := c.Run()
	var xerr *model.XMLError
	if !errors.As(err, &xerr) {
		t.Fatalf("Run() error = %v, want *model.XMLError", err)
	}
	if xerr.Part != "broken.xml" {
		t.Errorf("Part = %q", xerr.Part)
	}

	if _, err2 := c.Run(); err2 != err {
		t.Errorf("error is not sticky: %v", err2)
	}
}

func TestCursor_HandlerError(t *testing.T) {
	boom := errors.New("boom")
	c := New(strings.NewReader(sheetXML), "sheet1.xml")
	c.On("v", Start, func(*Cursor) (Action, error) { return Continue, boom })

	if _, err := c.Run(); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want handler error", err)
	}
}

func TestCursor_Latin1Declaration(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><t>caf\xe9</t>"
	c := New(strings.NewReader(doc), "latin1.xml")

	found, err := c.SkipTo("t")
	if err != nil || !found {
		t.Fatalf("SkipTo() = %v, %v", found, err)
	}
	n, err := c.Expand()
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if n.Text() != "café" {
		t.Errorf("Text() = %q, want café", n.Text())
	}
}
