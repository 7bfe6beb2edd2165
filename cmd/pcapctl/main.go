package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/danmuck/pcapctl/internal/logging"
	"github.com/danmuck/pcapctl/internal/replay"
	"github.com/rs/zerolog/log"
)

var version = "0.1"

type cli struct {
	File              string           `short:"f" name:"file" placeholder:"LISTFILE" help:"Read filename;dirname pairs from LISTFILE, one per line."`
	Config            string           `short:"c" name:"config" placeholder:"PATH" help:"TOML config file."`
	Strict            bool             `name:"strict" help:"Treat daemon replies other than OK as failures."`
	Probe             bool             `name:"probe" help:"Require every source to carry a pcap or pcapng header."`
	FailOnSubmitError bool             `name:"fail-on-submit-error" help:"Exit non-zero when any entry fails to submit."`
	LogLevel          string           `name:"log-level" placeholder:"LEVEL" help:"trace, debug, info, warn, error or off."`
	Version           kong.VersionFlag `name:"version" help:"Print version and exit."`

	Filename string `arg:"" optional:"" help:"Capture file to replay."`
	Dirname  string `arg:"" optional:"" help:"Directory receiving the analysis output."`
}

// Validate enforces that exactly one worklist source is given.
func (c *cli) Validate() error {
	hasPair := c.Filename != "" || c.Dirname != ""
	switch {
	case c.File != "" && hasPair:
		return fmt.Errorf("file and command entry are exclusive")
	case c.File == "" && (c.Filename == "" || c.Dirname == ""):
		return fmt.Errorf("invalid number of arguments")
	}
	return nil
}

func (c *cli) request() replay.Request {
	if c.File != "" {
		return replay.Request{ListFile: c.File}
	}
	return replay.Request{Pair: []string{c.Filename, c.Dirname}}
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("pcapctl"),
		kong.Description("Submit capture files to a running detection daemon over its control socket."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	logging.ConfigureRuntime()
	if args.LogLevel != "" {
		if err := logging.SetLevel(args.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "pcapctl: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(&args); err != nil {
		log.Error().Err(err).Str("kind", replay.Kind(err)).Msg("pcapctl: run aborted")
		fmt.Fprintf(os.Stderr, "pcapctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args *cli) error {
	cfg, err := loadRunConfig(args.Config)
	if err != nil {
		return err
	}
	if args.Strict {
		cfg.Session.Strict = true
	}
	if args.Probe {
		cfg.Probe = true
	}
	if args.FailOnSubmitError {
		cfg.FailOnSubmitError = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = replay.NewRunner(cfg, os.Stdout).Run(ctx, args.request())
	return err
}
