package sheetstream_test

import (
	"fmt"
	"log"

	"github.com/tsawler/sheetstream"
	"github.com/tsawler/sheetstream/format"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/reader"
	"github.com/tsawler/sheetstream/style"
	"github.com/tsawler/sheetstream/xlsx"
)

// These examples are compiled with the tests but not run:
// they read and write files in the working directory.

func Example_readRows() {
	r, err := sheetstream.OpenReader("report.xlsx", reader.WithPreserveEmptyRows(true))
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	sheets := r.SheetIterator()
	for err := sheets.Rewind(); sheets.Valid(); err = sheets.Next() {
		if err != nil {
			log.Fatal(err)
		}
		sheet := sheets.Current()
		fmt.Println("sheet:", sheet.Name)
		err := model.Each(sheet.Rows(), func(key int, row *model.Row) error {
			fmt.Println(key, row.Values())
			return nil
		})
		if err != nil {
			log.Fatal(err)
		}
	}
}

func Example_writeStyledWorkbook() {
	w := xlsx.NewWriter()
	w.SetShouldUseInlineStrings(true)
	if err := w.OpenToFile("out.xlsx"); err != nil {
		log.Fatal(err)
	}

	header, err := style.NewBuilder().Bold().Background(style.Yellow).Build()
	if err != nil {
		log.Fatal(err)
	}
	w.AddRow(model.NewRowFromValues([]any{"id", "name"}, header))
	w.AddRow(model.NewRowFromValues([]any{1, "Widget"}, nil))

	summary, _ := w.AddNewSheetAndMakeItCurrent()
	summary.SetName("Summary")
	w.AddRow(model.NewRowFromValues([]any{"total", 1}, nil))

	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
}

func Example_convert() {
	src, err := sheetstream.OpenReader("input.ods")
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	dst, err := sheetstream.NewWriterWithOptions(format.XLSX, sheetstream.WriterOptions{
		MaxRowsPerSheet: 500_000,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := dst.OpenToFile("output.xlsx"); err != nil {
		log.Fatal(err)
	}
	n, err := sheetstream.Copy(dst, src)
	if err != nil {
		log.Fatal(err)
	}
	if err := dst.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("rows copied:", n)
}
