package sheetstream

import (
	"fmt"

	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/writer"
)

// Copy streams every sheet of src into the opened writer dst and returns
// the number of source rows copied. Multi-sheet writers get one sheet per
// source sheet, keeping its name, visibility and active flag; other
// writers receive all rows in sequence. Gaps between source rows are kept
// as empty rows.
//
// Copy does not close dst.
func Copy(dst Writer, src *Reader) (int, error) {
	sw, multi := dst.(SheetWriter)
	var active *writer.Sheet
	total := 0

	sheets := src.SheetIterator()
	for err := sheets.Rewind(); sheets.Valid(); err = sheets.Next() {
		if err != nil {
			return total, err
		}
		sheet := sheets.Current()
		if multi {
			target, err := targetSheet(sw, sheet)
			if err != nil {
				return total, err
			}
			if sheet.Active {
				active = target
			}
		}

		last := 0
		err := model.Each(sheet.Rows(), func(key int, row *model.Row) error {
			for ; last < key-1; last++ {
				if err := dst.AddRow(model.NewRow(nil, nil)); err != nil {
					return err
				}
			}
			last = key
			total++
			return dst.AddRow(row)
		})
		if err != nil {
			return total, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
	}

	if active != nil {
		if err := sw.SetCurrentSheet(active); err != nil {
			return total, err
		}
	}
	return total, nil
}

// targetSheet returns the destination sheet for src: the writer's first
// sheet while it is still unused, otherwise a new one.
func targetSheet(w SheetWriter, src *model.Sheet) (*writer.Sheet, error) {
	target := w.CurrentSheet()
	if src.Index > 0 || target.LastRowIndex() > 0 {
		var err error
		if target, err = w.AddNewSheetAndMakeItCurrent(); err != nil {
			return nil, err
		}
	}
	if src.Name != "" {
		if err := target.SetName(src.Name); err != nil {
			return nil, err
		}
	}
	target.SetVisible(src.Visible)
	return target, nil
}
