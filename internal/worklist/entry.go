package worklist

import (
	"errors"
	"fmt"
)

var ErrInvalidEntry = errors.New("worklist: invalid entry")

// Entry is one capture file and the directory that receives its analysis output.
type Entry struct {
	SourcePath string
	OutputDir  string
}

func NewEntry(filename, dirname string) (Entry, error) {
	e := Entry{SourcePath: filename, OutputDir: dirname}
	if err := e.check(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (e Entry) check() error {
	if e.SourcePath == "" {
		return fmt.Errorf("%w: missing filename", ErrInvalidEntry)
	}
	if e.OutputDir == "" {
		return fmt.Errorf("%w: missing dirname", ErrInvalidEntry)
	}
	return nil
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s)", e.SourcePath, e.OutputDir)
}
