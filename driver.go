package colundi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-colundi/internal/analysis"
)

// Config controls a batch run.
type Config struct {
	// OutputDir is the root directory for generated files.
	OutputDir string

	// SampleRate is the output sample rate in Hz.
	SampleRate int

	// Kinds lists waveform names to render, in output order.
	Kinds []string

	// Amplitude scales every rendered buffer. Must be in (0, 1].
	Amplitude float64

	// MinDuration is the shortest allowed buffer length in seconds.
	MinDuration float64

	// BitDepth is the PCM bit depth: 16, 24 or 32.
	BitDepth int

	// Jobs bounds how many pairs are rendered at once. 1 renders
	// sequentially in table order.
	Jobs int

	// Check runs signal analysis on every buffer and logs the result.
	Check bool

	// Table overrides the compiled Colundi table when non-nil.
	Table []FrequencyEntry

	// Registry resolves Kinds. Nil uses DefaultRegistry.
	Registry *Registry

	// Logger receives progress and failures. Nil discards them.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used by the command-line tool
// when no flags are given.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:   DefaultOutputDir,
		SampleRate:  DefaultSampleRate,
		Kinds:       append([]string(nil), DefaultKinds...),
		Amplitude:   DefaultAmplitude,
		MinDuration: DefaultMinDuration,
		BitDepth:    DefaultBitDepth,
		Jobs:        DefaultJobs,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output directory must be set", ErrInvalidConfig)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: %w: %d Hz", ErrInvalidConfig, ErrInvalidSampleRate, c.SampleRate)
	}
	if math.IsNaN(c.Amplitude) || c.Amplitude <= 0 || c.Amplitude > 1 {
		return fmt.Errorf("%w: amplitude must be in (0, 1], got %v", ErrInvalidConfig, c.Amplitude)
	}
	if math.IsNaN(c.MinDuration) || math.IsInf(c.MinDuration, 0) || c.MinDuration <= 0 {
		return fmt.Errorf("%w: %w: %v s", ErrInvalidConfig, ErrInvalidDuration, c.MinDuration)
	}
	if _, err := maxValueFor(c.BitDepth); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1", ErrInvalidConfig)
	}
	if len(c.Kinds) == 0 {
		return fmt.Errorf("%w: no waveform kinds selected", ErrInvalidConfig)
	}
	if _, err := c.registry().Resolve(c.Kinds); err != nil {
		return err
	}
	if c.Table != nil {
		if err := ValidateTable(c.Table); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) registry() *Registry {
	if c.Registry == nil {
		return DefaultRegistry()
	}
	return c.Registry
}

func (c *Config) table() []FrequencyEntry {
	if c.Table == nil {
		return Table()
	}
	return c.Table
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Failure records one pair that could not be rendered.
type Failure struct {
	Label string
	Kind  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Label, f.Kind, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarises a batch run.
type Report struct {
	// Written lists output files in table order, then kind order.
	Written []string

	// Failures lists pairs that failed, in the same order.
	Failures []Failure

	// Elapsed is the wall-clock time of the run.
	Elapsed time.Duration
}

// pair is one unit of work: a table entry rendered as one waveform.
type pair struct {
	entry    FrequencyEntry
	waveform Waveform
}

type pairResult struct {
	path string
	err  error
	done bool
}

// Run renders every table entry as every requested waveform and writes the
// results under cfg.OutputDir.
//
// A failed pair does not stop the run: Run carries on with the remaining
// pairs and reports every failure. The returned error joins all failures and
// is nil only when every file was written. If ctx is cancelled no new pairs
// are started and the context error is returned alongside the partial report.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	waveforms, err := cfg.registry().Resolve(cfg.Kinds)
	if err != nil {
		return nil, err
	}
	table := cfg.table()
	logger := cfg.logger()
	if cfg.Table == nil {
		logger.Warn("using placeholder frequency table",
			zap.Int("frequencies", len(table)),
			zap.String("hint", "load the published Colundi list with -table or Config.Table"))
	}

	pairs := make([]pair, 0, len(table)*len(waveforms))
	for _, entry := range table {
		for _, w := range waveforms {
			pairs = append(pairs, pair{entry: entry, waveform: w})
		}
	}

	logger.Info("generating waveforms",
		zap.Int("frequencies", len(table)),
		zap.Strings("kinds", cfg.Kinds),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.String("outputDir", cfg.OutputDir),
		zap.Int("jobs", cfg.Jobs),
	)

	r := &renderer{
		cfg:      cfg,
		exporter: &Exporter{Dir: cfg.OutputDir, BitDepth: cfg.BitDepth},
		logger:   logger,
		progress: newProgressTracker(len(pairs), logger),
	}

	start := time.Now()
	results := make([]pairResult, len(pairs))
	if cfg.Jobs == 1 {
		for i, p := range pairs {
			if ctx.Err() != nil {
				break
			}
			results[i] = r.render(p)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(cfg.Jobs)
		for i, p := range pairs {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				results[i] = r.render(p)
				return nil
			})
		}
		_ = g.Wait()
	}

	report := &Report{Elapsed: time.Since(start)}
	var errs []error
	for i, res := range results {
		if !res.done {
			continue
		}
		if res.err != nil {
			f := Failure{Label: pairs[i].entry.Label, Kind: pairs[i].waveform.Name, Err: res.err}
			report.Failures = append(report.Failures, f)
			errs = append(errs, f)
			continue
		}
		report.Written = append(report.Written, res.path)
	}

	logger.Info("generation finished",
		zap.Int("written", len(report.Written)),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("elapsed", report.Elapsed),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, errors.Join(errs...)
}

// renderer carries the shared, read-only state for rendering pairs.
type renderer struct {
	cfg      *Config
	exporter *Exporter
	logger   *zap.Logger
	progress *progressTracker
}

func (r *renderer) render(p pair) pairResult {
	defer r.progress.step()

	fields := []zap.Field{
		zap.String("label", p.entry.Label),
		zap.String("kind", p.waveform.Name),
	}

	buf, err := GenerateDuration(p.waveform, p.entry.Hz, r.cfg.SampleRate, r.cfg.MinDuration)
	if err != nil {
		r.logger.Error("failed to generate waveform", append(fields, zap.Error(err))...)
		return pairResult{err: err, done: true}
	}
	buf = buf.Scaled(r.cfg.Amplitude)

	if r.cfg.Check {
		r.check(buf, fields)
	}

	path, err := r.exporter.Export(p.entry, p.waveform, buf)
	if err != nil {
		r.logger.Error("failed to write waveform", append(fields, zap.Error(err))...)
		return pairResult{err: err, done: true}
	}

	r.logger.Debug("wrote waveform", append(fields,
		zap.String("path", path),
		zap.Int("samples", buf.Len()),
		zap.Int("cycles", buf.Cycles),
	)...)
	return pairResult{path: path, done: true}
}

func (r *renderer) check(buf *SampleBuffer, fields []zap.Field) {
	rep, err := analysis.Analyze(buf.Samples, buf.Format(), buf.Streamer())
	if err != nil {
		r.logger.Warn("signal check failed", append(fields, zap.Error(err))...)
		return
	}
	r.logger.Info("signal check", append(fields,
		zap.Float64("peak", rep.Peak),
		zap.Float64("rms", rep.RMS),
		zap.Float64("dcOffset", rep.DCOffset),
		zap.Float64("zeroCrossingHz", rep.ZeroCrossingHz),
		zap.Float64("spectralHz", rep.SpectralHz),
		zap.Float64("seamStep", rep.SeamStep),
		zap.Float64("maxStep", rep.MaxStep),
	)...)
}
