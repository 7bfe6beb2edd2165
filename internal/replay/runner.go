// Package replay drives one pcapctl run: build and validate the worklist, then
// submit it over a single control session.
package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/pcapctl/internal/protocol/control"
	"github.com/danmuck/pcapctl/internal/worklist"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is everything a run needs beyond the request itself.
type Config struct {
	Session control.Config
	Parse   worklist.ParseOptions

	// Probe requires every source to carry a pcap or pcapng header.
	Probe bool

	// FailOnSubmitError turns any per-entry failure into a failed run once the
	// whole worklist has been attempted.
	FailOnSubmitError bool
}

func DefaultConfig() Config {
	return Config{
		Session: control.DefaultConfig(),
		Parse:   worklist.DefaultParseOptions(),
	}
}

// Request selects the worklist source. Exactly one of Pair or ListFile is set.
type Request struct {
	Pair     []string
	ListFile string
}

// Result is the outcome of one submitted entry.
type Result struct {
	Entry worklist.Entry
	Reply []byte
	Err   error
}

// Summary counts entries whose command was attempted; an attempt that failed
// before anything reached the daemon still counts, and is also in Failed.
type Summary struct {
	RunID     string
	Attempted int
	Failed    int
	Results   []Result
}

// Conn is the part of a control session a run drives.
type Conn interface {
	Handshake(ctx context.Context) ([]byte, error)
	Submit(ctx context.Context, entry worklist.Entry) ([]byte, error)
	Close() error
}

type DialFunc func(ctx context.Context, cfg control.Config) (Conn, error)

func dialControl(ctx context.Context, cfg control.Config) (Conn, error) {
	return control.Dial(ctx, cfg)
}

type Runner struct {
	cfg  Config
	out  io.Writer
	dial DialFunc
}

func NewRunner(cfg Config, out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	cfg.Session = cfg.Session.WithDefaults()
	cfg.Parse = cfg.Parse.WithDefaults()
	return &Runner{cfg: cfg, out: out, dial: dialControl}
}

// WithDial replaces the transport, mainly for tests.
func (r *Runner) WithDial(dial DialFunc) *Runner {
	r.dial = dial
	return r
}

// Build resolves the request into an ordered worklist.
func (r *Runner) Build(req Request) ([]worklist.Entry, error) {
	hasList := strings.TrimSpace(req.ListFile) != ""
	switch {
	case hasList && len(req.Pair) > 0:
		return nil, fmt.Errorf("%w: file and command entry are exclusive", ErrUsage)
	case hasList:
		entries, err := worklist.ReadListFile(req.ListFile, r.cfg.Parse)
		if err != nil {
			return nil, wrap(err)
		}
		return entries, nil
	case len(req.Pair) == 2:
		entries, err := worklist.FromPair(req.Pair[0], req.Pair[1])
		if err != nil {
			return nil, wrap(err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("%w: invalid number of arguments", ErrUsage)
	}
}

// Run executes the whole request. Abort-class failures are returned before
// or instead of submitting; per-entry failures are only recorded in the
// summary unless FailOnSubmitError is set.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", summary.RunID).Logger()

	entries, err := r.Build(req)
	if err != nil {
		return summary, err
	}
	logger.Info().Int("entries", len(entries)).Msg("replay: worklist built")

	if err := (worklist.Validator{Probe: r.cfg.Probe}).ValidateAll(entries); err != nil {
		return summary, wrap(err)
	}
	if len(entries) == 0 {
		logger.Warn().Msg("replay: worklist is empty")
	}

	conn, err := r.dial(ctx, r.cfg.Session)
	if err != nil {
		return summary, wrap(err)
	}
	defer conn.Close()

	hello, err := conn.Handshake(ctx)
	if err != nil {
		return summary, wrap(err)
	}
	fmt.Fprintf(r.out, "reply: %s\n", strings.TrimRight(string(hello), "\r\n\x00"))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, interrupted(logger, summary, len(entries), err)
		}
		result := r.submit(ctx, logger, conn, entry)
		summary.Results = append(summary.Results, result)
		summary.Attempted++
		if result.Err == nil {
			continue
		}
		summary.Failed++
		if err := ctx.Err(); err != nil {
			return summary, interrupted(logger, summary, len(entries), err)
		}
	}
	logger.Info().
		Int("attempted", summary.Attempted).
		Int("failed", summary.Failed).
		Msg("replay: run complete")

	if summary.Failed > 0 && r.cfg.FailOnSubmitError {
		return summary, fmt.Errorf("%w: %d of %d entries failed", ErrSubmission, summary.Failed, summary.Attempted)
	}
	return summary, nil
}

func (r *Runner) submit(ctx context.Context, logger zerolog.Logger, conn Conn, entry worklist.Entry) Result {
	reply, err := conn.Submit(ctx, entry)
	if len(reply) > 0 {
		fmt.Fprintf(r.out, "reply: %s\n", strings.TrimRight(string(reply), "\r\n\x00"))
	}
	if err != nil {
		err = wrap(err)
		logger.Error().
			Err(err).
			Str("kind", Kind(err)).
			Str("filename", entry.SourcePath).
			Msg("replay: unable to process entry")
		return Result{Entry: entry, Reply: reply, Err: err}
	}
	logger.Debug().Str("filename", entry.SourcePath).Str("dirname", entry.OutputDir).Msg("replay: entry submitted")
	return Result{Entry: entry, Reply: reply}
}

func interrupted(logger zerolog.Logger, summary Summary, total int, cause error) error {
	logger.Warn().
		Int("attempted", summary.Attempted).
		Int("total", total).
		Msg("replay: run interrupted")
	return fmt.Errorf("%w: stopped after %d of %d entries: %w", ErrInterrupted, summary.Attempted, total, cause)
}

func wrap(err error) error {
	class := classify(err)
	if class == nil {
		return err
	}
	return fmt.Errorf("%w: %w", class, err)
}
