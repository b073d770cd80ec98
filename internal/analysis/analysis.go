// Package analysis measures rendered waveforms: level, DC offset,
// fundamental frequency and continuity across the loop point.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/gopxl/beep"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-colundi/internal/simdops"
)

// Analysis constants
const (
	// maxFFTSize caps the spectral estimate. Longer buffers are truncated
	// to the largest power of two not exceeding this.
	maxFFTSize = 1 << 16

	// minFFTSize is the shortest buffer the spectral estimate accepts.
	minFFTSize = 16

	// loopPasses is how many times the buffer is played to measure the seam.
	loopPasses = 2

	streamChunk = 512
)

// Analysis errors
var (
	// ErrTooShort indicates a buffer too short to analyse.
	ErrTooShort = errors.New("buffer too short for analysis")

	// ErrFormat indicates a stream format the analysis cannot measure.
	ErrFormat = errors.New("unsupported stream format")
)

// Report holds the measurements for one buffer.
type Report struct {
	// Peak is the largest absolute sample value.
	Peak float64

	// RMS is the root-mean-square level.
	RMS float64

	// DCOffset is the mean sample value.
	DCOffset float64

	// ZeroCrossingHz estimates the fundamental from upward zero crossings.
	ZeroCrossingHz float64

	// SpectralHz estimates the fundamental from the strongest FFT bin.
	SpectralHz float64

	// SeamStep is the jump between the last and first sample when looped.
	SeamStep float64

	// MaxStep is the largest jump between adjacent samples inside the buffer.
	MaxStep float64
}

// Analyze measures mono samples described by format. s must stream the same
// samples; it is looped to measure the seam.
func Analyze(samples []float64, format beep.Format, s beep.StreamSeeker) (Report, error) {
	if format.SampleRate <= 0 || format.NumChannels != 1 {
		return Report{}, fmt.Errorf("%w: %d Hz, %d channel(s)", ErrFormat, format.SampleRate, format.NumChannels)
	}
	sampleRate := int(format.SampleRate)
	if len(samples) < minFFTSize {
		return Report{}, fmt.Errorf("%w: %d samples", ErrTooShort, len(samples))
	}

	spectral, err := SpectralPeak(samples, sampleRate)
	if err != nil {
		return Report{}, err
	}
	seam, maxStep, err := LoopSeam(s)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Peak:           Peak(samples),
		RMS:            RMS(samples),
		DCOffset:       simdops.Mean(samples),
		ZeroCrossingHz: ZeroCrossingFrequency(samples, sampleRate),
		SpectralHz:     spectral,
		SeamStep:       seam,
		MaxStep:        maxStep,
	}, nil
}

// Peak returns the largest absolute value in samples.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(samples)), math.Abs(floats.Min(samples)))
}

// RMS returns the root-mean-square level of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(simdops.Energy(samples) / float64(len(samples)))
}

// ZeroCrossings counts upward zero crossings, treating the buffer as a loop
// so the wrap from the last sample to the first is included. A sample that
// is exactly zero counts as non-negative.
func ZeroCrossings(samples []float64) int {
	n := len(samples)
	if n < 2 {
		return 0
	}
	count := 0
	for i := range n {
		prev := samples[(i+n-1)%n]
		if prev < 0 && samples[i] >= 0 {
			count++
		}
	}
	return count
}

// ZeroCrossingFrequency estimates the fundamental as upward crossings per second.
func ZeroCrossingFrequency(samples []float64, sampleRate int) float64 {
	if len(samples) == 0 || sampleRate <= 0 {
		return 0
	}
	seconds := float64(len(samples)) / float64(sampleRate)
	return float64(ZeroCrossings(samples)) / seconds
}

// SpectralPeak estimates the dominant frequency with a Hann-windowed FFT and
// quadratic interpolation around the strongest bin.
func SpectralPeak(samples []float64, sampleRate int) (float64, error) {
	if len(samples) < minFFTSize {
		return 0, fmt.Errorf("%w: %d samples", ErrTooShort, len(samples))
	}

	n := 1 << (bits.Len(uint(len(samples))) - 1)
	n = min(n, maxFFTSize)
	windowed := make([]float64, n)
	for i := range n {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = samples[i] * w
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	// Skip DC.
	best, bestMag := 1, 0.0
	mags := make([]float64, len(coeffs))
	for k := range coeffs {
		re, im := real(coeffs[k]), imag(coeffs[k])
		mags[k] = math.Hypot(re, im)
		if k > 0 && mags[k] > bestMag {
			best, bestMag = k, mags[k]
		}
	}

	offset := 0.0
	if best > 0 && best < len(mags)-1 {
		alpha, beta, gamma := mags[best-1], mags[best], mags[best+1]
		if denom := alpha - 2*beta + gamma; denom != 0 {
			offset = 0.5 * (alpha - gamma) / denom
		}
	}
	return (float64(best) + offset) * float64(sampleRate) / float64(n), nil
}

// LoopSeam plays s twice back to back and reports the jump across the loop
// point alongside the largest jump between adjacent samples within one pass.
// A seamless buffer has seam no larger than maxStep.
func LoopSeam(s beep.StreamSeeker) (seam, maxStep float64, err error) {
	length := s.Len()
	if length < 2 {
		return 0, 0, fmt.Errorf("%w: %d samples", ErrTooShort, length)
	}
	if err := s.Seek(0); err != nil {
		return 0, 0, fmt.Errorf("failed to rewind stream: %w", err)
	}

	looped := beep.Loop(loopPasses, s)
	played := make([]float64, 0, length*loopPasses)
	chunk := make([][2]float64, streamChunk)
	for {
		n, ok := looped.Stream(chunk)
		for i := range n {
			played = append(played, chunk[i][0])
		}
		if !ok {
			break
		}
	}
	if err := looped.Err(); err != nil {
		return 0, 0, fmt.Errorf("failed to stream buffer: %w", err)
	}
	if len(played) != length*loopPasses {
		return 0, 0, fmt.Errorf("looped stream returned %d samples, want %d", len(played), length*loopPasses)
	}

	for i := 1; i < length; i++ {
		maxStep = math.Max(maxStep, math.Abs(played[i]-played[i-1]))
	}
	seam = math.Abs(played[length] - played[length-1])
	return seam, maxStep, nil
}
