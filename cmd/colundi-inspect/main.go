// Command colundi-inspect checks generated WAV files.
//
// For each file it prints the format, the measured fundamental and whether
// the file loops without a seam. When the file name follows the
// colundi_<hz>.wav convention the measured frequency is compared with it.
//
// Usage:
//
//	colundi-inspect colundi_waveforms/colundi_waveforms_sine/*.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep"

	colundi "github.com/tphakala/go-colundi"
	"github.com/tphakala/go-colundi/internal/analysis"
)

const (
	minRequiredArgs = 1

	// seamFactor is how much larger than the largest interior step the loop
	// seam may be. Quantisation moves each stored sample by up to one step
	// of the integer format, which matters for quiet low-frequency files.
	seamFactor = 1.5

	// maxDeviation is the relative frequency error tolerated before a file
	// is flagged.
	maxDeviation = 0.001
)

var errInspectFailed = errors.New("one or more files failed inspection")

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s file.wav [file.wav ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < minRequiredArgs {
		flag.Usage()
		return fmt.Errorf("insufficient arguments")
	}

	failed := false
	for _, path := range flag.Args() {
		res, err := inspectFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
			continue
		}
		printResult(os.Stdout, res)
		if !res.ok() {
			failed = true
		}
	}
	if failed {
		return errInspectFailed
	}
	return nil
}

// inspection holds the measurements for one file.
type inspection struct {
	path       string
	sampleRate int
	bitDepth   int
	channels   int
	samples    int
	expectedHz float64 // zero when the name carries no frequency
	report     analysis.Report
}

// deviation returns the relative error of the zero-crossing estimate, or
// zero when no expected frequency is known.
func (r *inspection) deviation() float64 {
	if r.expectedHz == 0 {
		return 0
	}
	d := (r.report.ZeroCrossingHz - r.expectedHz) / r.expectedHz
	if d < 0 {
		d = -d
	}
	return d
}

func (r *inspection) seamless() bool {
	return r.report.SeamStep <= seamFactor*r.report.MaxStep
}

func (r *inspection) ok() bool {
	return r.channels == 1 && r.seamless() && r.deviation() <= maxDeviation
}

func inspectFile(path string) (*inspection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	res := &inspection{
		path:       path,
		sampleRate: int(dec.SampleRate),
		bitDepth:   int(dec.BitDepth),
		channels:   int(dec.NumChans),
		samples:    len(pcm.Data),
		expectedHz: hzFromName(path),
	}
	if res.channels != 1 {
		return res, nil
	}

	buf := &colundi.SampleBuffer{
		Samples:    normalize(pcm.Data, res.bitDepth),
		SampleRate: res.sampleRate,
	}
	res.report, err = analysis.Analyze(buf.Samples, buf.Format(), buf.Streamer())
	if err != nil {
		return nil, err
	}
	return res, nil
}

// hzFromName extracts the frequency from a colundi_<hz>.wav file name.
func hzFromName(path string) float64 {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	label, ok := strings.CutPrefix(name, "colundi_")
	if !ok {
		return 0
	}
	hz, err := strconv.ParseFloat(label, 64)
	if err != nil || hz <= 0 {
		return 0
	}
	return hz
}

func normalize(data []int, bitDepth int) []float64 {
	maxVal := float64(int(1)<<(bitDepth-1)) - 1
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v) / maxVal
	}
	return out
}

func printResult(w io.Writer, r *inspection) {
	status := "OK"
	if !r.ok() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s  %s\n", status, r.path)
	fmt.Fprintf(w, "  %d Hz, %d-bit, %d channel(s), %d samples (%v)\n",
		r.sampleRate, r.bitDepth, r.channels, r.samples, beep.SampleRate(r.sampleRate).D(r.samples))
	if r.channels != 1 {
		fmt.Fprintf(w, "  expected mono\n")
		return
	}
	fmt.Fprintf(w, "  peak %.4f, rms %.4f, dc %.6f\n", r.report.Peak, r.report.RMS, r.report.DCOffset)
	fmt.Fprintf(w, "  zero-crossing %.3f Hz, spectral %.3f Hz", r.report.ZeroCrossingHz, r.report.SpectralHz)
	if r.expectedHz > 0 {
		fmt.Fprintf(w, ", expected %g Hz (%.4f%%)", r.expectedHz, r.deviation()*100)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  loop seam %.4f vs max step %.4f\n", r.report.SeamStep, r.report.MaxStep)
}
