// Command colundi-gen renders the Colundi frequency table as loopable WAV files.
//
// Usage:
//
//	colundi-gen                                   # sine, saw and square at 44.1 kHz
//	colundi-gen -kinds sine -rate 96000 -out samples
//	colundi-gen -kinds triangle -bits 24 -jobs 8
//	colundi-gen -table my_hertz.txt -check -v     # custom table, log signal checks
//
// The exit status is non-zero if any file could not be written.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	colundi "github.com/tphakala/go-colundi"
)

const exitFailure = 1

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "colundi-gen: %v\n", err)
		os.Exit(exitFailure)
	}
}

// options holds parsed command-line flags.
type options struct {
	cfg       *colundi.Config
	tablePath string
	verbose   bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	defaults := colundi.DefaultConfig()

	fs := flag.NewFlagSet("colundi-gen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	out := fs.String("out", defaults.OutputDir, "Output directory")
	rate := fs.Int("rate", defaults.SampleRate, "Sample rate in Hz")
	kinds := fs.String("kinds", strings.Join(defaults.Kinds, ","), "Comma-separated waveforms: sine, saw, square, triangle")
	amplitude := fs.Float64("amplitude", defaults.Amplitude, "Peak amplitude in (0, 1]")
	duration := fs.Float64("duration", defaults.MinDuration, "Minimum file duration in seconds")
	bits := fs.Int("bits", defaults.BitDepth, "PCM bit depth: 16, 24 or 32")
	jobs := fs.Int("jobs", defaults.Jobs, "Number of files rendered concurrently")
	table := fs.String("table", "", "Frequency list to render instead of the built-in placeholder table (one Hz value per line)")
	check := fs.Bool("check", false, "Analyse every buffer and log level, frequency and loop seam")
	verbose := fs.Bool("v", false, "Verbose output")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: colundi-gen [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg := defaults
	cfg.OutputDir = *out
	cfg.SampleRate = *rate
	cfg.Kinds = parseKinds(*kinds)
	cfg.Amplitude = *amplitude
	cfg.MinDuration = *duration
	cfg.BitDepth = *bits
	cfg.Jobs = *jobs
	cfg.Check = *check

	return &options{cfg: cfg, tablePath: *table, verbose: *verbose}, nil
}

// parseKinds splits a comma-separated list, dropping empty items.
func parseKinds(s string) []string {
	var kinds []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func loadTable(path string) ([]colundi.FrequencyEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frequency table: %w", err)
	}
	defer func() { _ = f.Close() }()

	return colundi.LoadTable(f)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.tablePath != "" {
		table, err := loadTable(opts.tablePath)
		if err != nil {
			return err
		}
		opts.cfg.Table = table
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	opts.cfg.Logger = logger

	report, err := colundi.Run(ctx, opts.cfg)
	if report == nil {
		return err
	}

	printSummary(stdout, opts.cfg, report)
	if err != nil {
		if len(report.Failures) > 0 {
			return fmt.Errorf("%d of %d files failed", len(report.Failures), len(report.Failures)+len(report.Written))
		}
		return err
	}
	return nil
}

func printSummary(w io.Writer, cfg *colundi.Config, report *colundi.Report) {
	fmt.Fprintf(w, "Wrote %d files to %s in %.2fs\n", len(report.Written), cfg.OutputDir, report.Elapsed.Seconds())
	if len(report.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "%d failures:\n", len(report.Failures))
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  %s %s: %v\n", f.Label, f.Kind, f.Err)
	}
}
