package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tsawler/sheetstream/model"
)

// Output is the destination of a finished document. When writing to a
// path, data goes to a scratch file next to the target and replaces the
// target only on Commit, so a failed write never leaves a partial file.
type Output struct {
	w       io.Writer
	file    *os.File
	scratch string
	final   string
}

// CreateOutput prepares a scratch file for path. The target itself is not
// touched until Commit.
func CreateOutput(path string) (*Output, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", model.ErrIO, path, err)
	}
	return &Output{w: f, file: f, scratch: f.Name(), final: path}, nil
}

// WrapOutput uses w as the destination. Commit and Discard leave w open.
func WrapOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Path returns the final path, or "" for a wrapped writer.
func (o *Output) Path() string {
	return o.final
}

// Commit moves the scratch file into place.
func (o *Output) Commit() error {
	if o.file == nil {
		return nil
	}
	f := o.file
	o.file = nil
	if err := f.Close(); err != nil {
		os.Remove(o.scratch)
		return fmt.Errorf("%w: closing %s: %v", model.ErrIO, o.final, err)
	}
	if err := os.Rename(o.scratch, o.final); err != nil {
		os.Remove(o.scratch)
		return fmt.Errorf("%w: replacing %s: %v", model.ErrIO, o.final, err)
	}
	return nil
}

// Discard removes the scratch file.
func (o *Output) Discard() error {
	if o.file == nil {
		return nil
	}
	o.file.Close()
	o.file = nil
	if err := os.Remove(o.scratch); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
