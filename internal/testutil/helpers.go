// Package testutil provides reusable test helpers for waveform and WAV file tests.
package testutil

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance    = 1e-10
	SineTolerance       = 1e-3
	WholeCycleTolerance = 1e-6
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertMonotonic verifies that a slice is monotonically increasing.
func AssertMonotonic(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] < s[i-1] {
			return assert.Fail(t, "not monotonic",
				"s[%d]=%f < s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertWholeCycles verifies that n samples at sampleRate hold a whole number
// of periods of hz, to within WholeCycleTolerance of the cycle count.
func AssertWholeCycles(t *testing.T, n, sampleRate int, hz float64) bool {
	t.Helper()
	cycles := float64(n) * hz / float64(sampleRate)
	whole := math.Round(cycles)
	if whole < 1 {
		return assert.Fail(t, "less than one cycle",
			"%d samples at %d Hz hold %f cycles of %f Hz", n, sampleRate, cycles, hz)
	}
	relError := math.Abs(cycles-whole) / whole
	return assert.LessOrEqual(t, relError, WholeCycleTolerance,
		"%d samples at %d Hz hold %f cycles of %f Hz", n, sampleRate, cycles, hz)
}

// WAVFile is a decoded mono or multichannel WAV file.
type WAVFile struct {
	SampleRate  int
	BitDepth    int
	NumChannels int
	Data        []int
}

// Normalized returns the samples scaled to [-1, 1].
func (w *WAVFile) Normalized() []float64 {
	maxVal := float64(int(1)<<(w.BitDepth-1)) - 1
	out := make([]float64, len(w.Data))
	for i, v := range w.Data {
		out[i] = float64(v) / maxVal
	}
	return out
}

// ReadWAV decodes the WAV file at path, failing the test on any error.
func ReadWAV(t *testing.T, path string) *WAVFile {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile(), "invalid WAV file: %s", path)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	return &WAVFile{
		SampleRate:  int(dec.SampleRate),
		BitDepth:    int(dec.BitDepth),
		NumChannels: int(dec.NumChans),
		Data:        buf.Data,
	}
}
