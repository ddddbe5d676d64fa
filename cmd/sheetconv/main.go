// Command sheetconv lists, prints and converts XLSX, ODS and CSV files.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/tsawler/sheetstream"
	"github.com/tsawler/sheetstream/format"
	"github.com/tsawler/sheetstream/model"
	"github.com/tsawler/sheetstream/reader"
)

var version = "dev"

type globalFlags struct {
	verbose           bool
	delimiter         string
	encoding          string
	preserveEmptyRows bool
	tempDir           string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:          "sheetconv",
		Short:        "Inspect and convert spreadsheets",
		Long:         "sheetconv reads and writes XLSX, ODS and CSV files as streams of rows.",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Log progress to stderr")
	pf.StringVarP(&g.delimiter, "delimiter", "d", ",", `CSV field delimiter, a single character or "tab"`)
	pf.StringVar(&g.encoding, "encoding", "", "Encoding of CSV input without a byte order mark (default UTF-8)")
	pf.BoolVar(&g.preserveEmptyRows, "preserve-empty-rows", false, "Keep rows without values")
	pf.StringVar(&g.tempDir, "temp-dir", "", "Folder for temporary files (default: system temp)")

	root.AddCommand(newSheetsCmd(g), newDumpCmd(g), newConvertCmd(g))
	return root
}

func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func parseDelimiter(s string) (rune, error) {
	if strings.EqualFold(s, "tab") || s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r, nil
}

func (g *globalFlags) readerOptions() ([]reader.Option, error) {
	delim, err := parseDelimiter(g.delimiter)
	if err != nil {
		return nil, err
	}
	opts := []reader.Option{
		reader.WithPreserveEmptyRows(g.preserveEmptyRows),
		reader.WithFieldDelimiter(delim),
		reader.WithEncoding(g.encoding),
	}
	if g.tempDir != "" {
		opts = append(opts, reader.WithTempFolder(g.tempDir))
	}
	return opts, nil
}

func (g *globalFlags) open(cmd *cobra.Command, path string, extra ...reader.Option) (*sheetstream.Reader, error) {
	opts, err := g.readerOptions()
	if err != nil {
		return nil, err
	}
	r, err := sheetstream.OpenReader(path, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	g.logger(cmd).Debug("opened", "path", path, "format", r.Format())
	return r, nil
}

func newSheetsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets FILE",
		Short: "List the sheets of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			sheets := r.SheetIterator()
			for err := sheets.Rewind(); sheets.Valid(); err = sheets.Next() {
				if err != nil {
					return err
				}
				s := sheets.Current()
				var flags []string
				if s.Active {
					flags = append(flags, "active")
				}
				if !s.Visible {
					flags = append(flags, "hidden")
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", s.Index, s.Name, strings.Join(flags, ","))
			}
			return nil
		},
	}
}

func newDumpCmd(g *globalFlags) *cobra.Command {
	var (
		sheetName   string
		showKeys    bool
		formatDates bool
	)
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the rows of a sheet as tab-separated values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.open(cmd, args[0], reader.WithFormatDates(formatDates))
			if err != nil {
				return err
			}
			defer r.Close()

			sheet, err := findSheet(r, sheetName, cmd.Flags().Changed("sheet"))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return model.Each(sheet.Rows(), func(key int, row *model.Row) error {
				fields := make([]string, 0, len(row.Cells)+1)
				if showKeys {
					fields = append(fields, fmt.Sprint(key))
				}
				for _, c := range row.Cells {
					fields = append(fields, c.String())
				}
				_, err := fmt.Fprintln(out, strings.Join(fields, "\t"))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet to print (default: the active sheet)")
	cmd.Flags().BoolVarP(&showKeys, "keys", "k", false, "Prefix each row with its row number")
	cmd.Flags().BoolVar(&formatDates, "format-dates", false, "Print dates with the cell's number format")
	return cmd
}

// findSheet returns the sheet called name, or the active sheet when byName
// is false. Rows of earlier sheets are not read.
func findSheet(r *sheetstream.Reader, name string, byName bool) (*model.Sheet, error) {
	sheets := r.SheetIterator()
	for err := sheets.Rewind(); sheets.Valid(); err = sheets.Next() {
		if err != nil {
			return nil, err
		}
		s := sheets.Current()
		if (byName && s.Name == name) || (!byName && s.Active) {
			return s, nil
		}
	}
	if byName {
		return nil, fmt.Errorf("no sheet named %q", name)
	}
	return nil, errors.New("no active sheet")
}

func newConvertCmd(g *globalFlags) *cobra.Command {
	var (
		outFormat     string
		inlineStrings bool
		maxRows       int
		noAutoSheets  bool
		noBOM         bool
	)
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a file to the format named by OUT's extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, outPath := args[0], args[1]
			log := g.logger(cmd)

			f := format.Detect(outPath)
			if outFormat != "" {
				var err error
				if f, err = format.FromType(outFormat); err != nil {
					return err
				}
			}
			delim, err := parseDelimiter(g.delimiter)
			if err != nil {
				return err
			}

			src, err := g.open(cmd, in)
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := sheetstream.NewWriterWithOptions(f, sheetstream.WriterOptions{
				TempFolder:      g.tempDir,
				InlineStrings:   inlineStrings,
				MaxRowsPerSheet: maxRows,
				NoAutoSheets:    noAutoSheets,
				FieldDelimiter:  delim,
				NoBOM:           noBOM,
				Logger:          log,
			})
			if err != nil {
				return err
			}
			if err := dst.OpenToFile(outPath); err != nil {
				return err
			}
			n, err := sheetstream.Copy(dst, src)
			if err != nil {
				dst.Abort()
				return err
			}
			if err := dst.Close(); err != nil {
				return err
			}
			log.Debug("converted", "in", in, "out", outPath, "format", f, "rows", n)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&outFormat, "to", "t", "", "Output format (csv, xlsx, ods); default from OUT's extension")
	fl.BoolVar(&inlineStrings, "inline-strings", false, "XLSX: store strings in the cells instead of a shared table")
	fl.IntVar(&maxRows, "max-rows", 0, "Rows per sheet before a new sheet is started (default: format maximum)")
	fl.BoolVar(&noAutoSheets, "no-auto-sheets", false, "Keep writing to the current sheet past --max-rows")
	fl.BoolVar(&noBOM, "no-bom", false, "CSV: do not start the output with a byte order mark")
	return cmd
}
