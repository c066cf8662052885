// Package main is the entry point for linereplay, which loads a document,
// replays an edit script against its line index, and prints the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/lineindex/internal/config"
	"github.com/dshills/lineindex/internal/engine"
	"github.com/dshills/lineindex/internal/logging"
	"github.com/dshills/lineindex/internal/replay"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	inputPath  string
	scriptPath string
	format     string
	logLevel   string
	verify     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, code, done := parseFlags(args, stdout, stderr)
	if done {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := replayOnce(ctx, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (opts options, code int, done bool) {
	fs := flag.NewFlagSet("linereplay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion bool
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.inputPath, "input", "", "Initial document file")
	fs.StringVar(&opts.inputPath, "i", "", "Initial document file (shorthand)")
	fs.StringVar(&opts.scriptPath, "script", "", "Replay script (.yaml, .yml or .lua)")
	fs.StringVar(&opts.scriptPath, "s", "", "Replay script (shorthand)")
	fs.StringVar(&opts.format, "format", "text", "Output format (text, json)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	fs.BoolVar(&opts.verify, "verify", false, "Verify the line index against the document after the replay")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "linereplay - replay edits against a line index\n\n")
		fmt.Fprintf(stderr, "Usage: linereplay [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  linereplay -i notes.txt                 Print the line table of a file\n")
		fmt.Fprintf(stderr, "  linereplay -s edits.yaml -verify        Replay a script and check the index\n")
		fmt.Fprintf(stderr, "  linereplay -i a.txt -s fuzz.lua -format json\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, true
		}
		return opts, 2, true
	}

	if showVersion {
		fmt.Fprintf(stdout, "linereplay %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, true
	}

	switch opts.format {
	case "text", "json":
	default:
		fmt.Fprintf(stderr, "Error: invalid format %q (must be text or json)\n", opts.format)
		return opts, 2, true
	}
	if opts.logLevel != "" {
		if _, ok := logging.ParseLevel(opts.logLevel); !ok {
			fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.logLevel)
			return opts, 2, true
		}
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments %v\n", fs.Args())
		return opts, 2, true
	}
	return opts, 0, false
}

func replayOnce(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level := cfg.LogLevel()
	if opts.logLevel != "" {
		level, _ = logging.ParseLevel(opts.logLevel)
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Output = stderr
	log := logging.New(logCfg)

	engineOpts := []engine.Option{engine.FromConfig(cfg), engine.WithLogger(log)}
	e, err := openEngine(opts.inputPath, engineOpts)
	if err != nil {
		return err
	}
	defer e.Close()
	log.Info("loaded %d lines, %d characters", e.LineCount(), e.Length())

	if opts.scriptPath != "" {
		script, err := replay.Load(opts.scriptPath)
		if err != nil {
			return err
		}
		st, err := replay.Run(ctx, e, script)
		if err != nil {
			return err
		}
		log.WithFields(map[string]any{
			"inserts":      st.Inserts,
			"deletes":      st.Deletes,
			"fold_changes": st.FoldChanges,
		}).Info("replayed %s: +%d/-%d lines", script.Name(), st.LinesAdded, st.LinesMerged)
	}

	if opts.verify {
		if err := e.Verify(); err != nil {
			return err
		}
		log.Info("line index verified")
	}

	if opts.format == "json" {
		data, err := replay.DumpJSON(e)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%s\n", data)
		return err
	}
	return replay.WriteText(stdout, e)
}

func openEngine(path string, opts []engine.Option) (*engine.Engine, error) {
	if path == "" {
		return engine.New(opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	return engine.NewFromReader(f, opts...)
}
