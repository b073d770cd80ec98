// Package colundi renders the Colundi frequency table as loopable WAV samples.
//
// Each of the 128 table frequencies is rendered as one or more waveforms
// (sine, saw, square, triangle, or any registered custom shape) and written
// as a mono PCM WAV file. Every file holds the smallest whole number of
// cycles that lasts at least one second, so a sampler can loop it without
// a click at the wrap point.
//
// # Quick Start
//
// Render the whole table with the default settings:
//
//	report, err := colundi.Run(ctx, colundi.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %d files\n", len(report.Written))
//
// Render a single buffer without touching the disk:
//
//	buf, err := colundi.Generate(colundi.Sine(), 440, 44100)
//
// # Output Layout
//
// Files are named after the waveform and the frequency label:
//
//	colundi_waveforms/colundi_waveforms_sine/colundi_440.0.wav
//	colundi_waveforms/colundi_waveforms_sawtooth/colundi_440.0.wav
//
// A sampler instrument mapping can refer to files by this scheme.
//
// # Frequency Table
//
// The compiled table from [Table] is a placeholder of 128 ascending values,
// not the published Colundi list. [Run] logs a warning when it renders the
// placeholder. Load the real list with [LoadTable] and set [Config.Table]:
//
//	f, _ := os.Open("colundi_hertz.txt")
//	cfg.Table, err = colundi.LoadTable(f)
//
// # Loop Length
//
// For a frequency f and minimum duration d the generator starts at
// n = ceil(f*d) cycles and counts upward until n*rate/f lands on a whole
// sample, to within [WholeCycleTolerance] cycles. The buffer is therefore
// the shortest one that lasts at least d seconds and loops on a cycle
// boundary. When no such length exists within 10*max(d, 1) seconds, the generator
// uses ceil(f*d) cycles rounded to the nearest sample. [LoopLength] exposes
// the rule.
//
// # Custom Waveforms
//
// Any function from phase in [0, 1) to amplitude in [-1, 1] can be registered:
//
//	reg := colundi.DefaultRegistry()
//	err := reg.Register(colundi.Waveform{
//	    Name:  "pulse",
//	    Shape: func(p float64) float64 { if p < 0.25 { return 1 }; return -1 },
//	})
//	cfg := colundi.DefaultConfig()
//	cfg.Registry = reg
//	cfg.Kinds = []string{"pulse"}
//
// # Failure Policy
//
// [Run] keeps going when a file cannot be written and reports every failure
// in [Report.Failures]. Generation is deterministic, so rerunning after a
// failure rewrites identical files.
package colundi
