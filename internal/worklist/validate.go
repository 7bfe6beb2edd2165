package worklist

import (
	"errors"
	"fmt"
	"os"

	"github.com/danmuck/pcapctl/internal/capture"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

var (
	ErrSourceUnreadable = errors.New("worklist: unable to access file")
	ErrOutputDirMissing = errors.New("worklist: unable to access dir")
	ErrOutputNotDir     = errors.New("worklist: not a directory")
	ErrNotCapture       = errors.New("worklist: not a capture file")
)

// Validator checks the local preconditions of an entry. Probe additionally
// requires the source to parse as a pcap or pcapng capture.
type Validator struct {
	Probe bool
}

func (v Validator) Validate(e Entry) error {
	if err := e.check(); err != nil {
		return err
	}

	// Opening a FIFO or device can block, so only regular files are opened.
	info, err := os.Stat(e.SourcePath)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrSourceUnreadable, e.SourcePath, unwrapPathError(err))
	}
	switch {
	case info.IsDir():
		return fmt.Errorf("%w '%s': is a directory", ErrSourceUnreadable, e.SourcePath)
	case !info.Mode().IsRegular():
		return fmt.Errorf("%w '%s': not a regular file (%s)", ErrSourceUnreadable, e.SourcePath, info.Mode().Type())
	}
	f, err := os.Open(e.SourcePath)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrSourceUnreadable, e.SourcePath, unwrapPathError(err))
	}
	defer f.Close()

	if v.Probe {
		format, err := capture.Probe(f)
		if err != nil {
			return fmt.Errorf("%w '%s': %w", ErrNotCapture, e.SourcePath, err)
		}
		log.Debug().
			Str("filename", e.SourcePath).
			Str("format", format.Kind.String()).
			Str("link_type", format.LinkType).
			Str("size", humanize.Bytes(uint64(info.Size()))).
			Msg("worklist: capture probed")
	}

	dirInfo, err := os.Stat(e.OutputDir)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrOutputDirMissing, e.OutputDir, unwrapPathError(err))
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("%w: '%s'", ErrOutputNotDir, e.OutputDir)
	}
	return nil
}

// ValidateAll stops at the first invalid entry so nothing is submitted from a
// partially valid worklist.
func (v Validator) ValidateAll(entries []Entry) error {
	for i, e := range entries {
		if err := v.Validate(e); err != nil {
			return fmt.Errorf("entry[%d]: %w", i, err)
		}
	}
	return nil
}

func unwrapPathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
