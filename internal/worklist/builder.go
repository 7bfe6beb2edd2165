package worklist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	Separator           = ';'
	DefaultMaxLineBytes = 64 * 1024
)

var (
	ErrListFile = errors.New("worklist: list file unreadable")
	ErrResource = errors.New("worklist: resource limit exceeded")
)

// ParseOptions bounds the memory a list file may claim.
type ParseOptions struct {
	MaxLineBytes int

	// MaxEntries of zero means unlimited.
	MaxEntries int
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{MaxLineBytes: DefaultMaxLineBytes}
}

func (o ParseOptions) WithDefaults() ParseOptions {
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = DefaultMaxLineBytes
	}
	if o.MaxEntries < 0 {
		o.MaxEntries = 0
	}
	return o
}

// FromPair builds the single-entry worklist for explicit CLI arguments.
func FromPair(filename, dirname string) ([]Entry, error) {
	e, err := NewEntry(filename, dirname)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("filename", e.SourcePath).Str("dirname", e.OutputDir).Msg("worklist: entry created")
	return []Entry{e}, nil
}

func ReadListFile(path string, opts ParseOptions) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListFile, path, err)
	}
	defer f.Close()

	entries, err := Parse(f, opts)
	if err != nil {
		if errors.Is(err, ErrResource) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrListFile, path, err)
	}
	return entries, nil
}

// Parse reads "filename;dirname" lines in order. Malformed lines are logged and
// skipped; they never shift the position of well-formed ones.
func Parse(r io.Reader, opts ParseOptions) ([]Entry, error) {
	opts = opts.WithDefaults()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(4096, opts.MaxLineBytes)), opts.MaxLineBytes)

	entries := []Entry{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		e, ok := parseLine(line)
		if !ok {
			log.Warn().Int("line", lineNo).Str("text", line).Msg("worklist: invalid line, skipping")
			continue
		}
		if opts.MaxEntries > 0 && len(entries) >= opts.MaxEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrResource, opts.MaxEntries)
		}
		log.Debug().Int("line", lineNo).Str("filename", e.SourcePath).Str("dirname", e.OutputDir).Msg("worklist: entry created")
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d longer than %d bytes", ErrResource, lineNo+1, opts.MaxLineBytes)
		}
		return nil, err
	}
	return entries, nil
}

func parseLine(line string) (Entry, bool) {
	filename, dirname, found := strings.Cut(line, string(Separator))
	if !found {
		return Entry{}, false
	}
	e, err := NewEntry(filename, dirname)
	if err != nil {
		return Entry{}, false
	}
	return e, true
}
