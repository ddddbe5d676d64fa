// Package xmlcursor provides a pull-based XML reader that dispatches start
// and end tags to handlers registered per element name.
//
// A handler returns [Continue] to keep reading or [Stop] to suspend, which
// lets a row iterator parse exactly one row per call:
//
//	c := xmlcursor.New(r, "xl/worksheets/sheet1.xml")
//	c.On("row", xmlcursor.Start, startRow)
//	c.On("c", xmlcursor.Start, readCell)
//	c.On("row", xmlcursor.End, func(*xmlcursor.Cursor) (xmlcursor.Action, error) {
//		return xmlcursor.Stop, nil
//	})
//	for {
//		stopped, err := c.Run()
//		...
//	}
//
// Inside a start handler, [Cursor.Expand] materializes the current element
// and its descendants as a [Node] tree. [Cursor.SkipTo] jumps to the next
// element with a given name without dispatching.
//
// Parse failures are returned as *model.XMLError and are sticky: once the
// cursor fails every later call returns the same error.
package xmlcursor
