package colundi

import (
	"fmt"
	"math"
)

// Loop length search limits
const (
	// WholeCycleTolerance is the largest distance, in cycles, between the end
	// of a buffer and a cycle boundary for the buffer to count as loopable.
	WholeCycleTolerance = 1e-6

	// maxLoopSeconds caps the loop search, in multiples of the minimum
	// duration or one second, whichever is longer. Past it the buffer falls
	// back to the shortest cycle count.
	maxLoopSeconds = 10

	// maxLoopSearch caps the number of cycle counts tried, which bounds the
	// search for frequencies far above the sample rate.
	maxLoopSearch = 1 << 20

	// durationEpsilon absorbs floating point error in hz*minDuration and
	// sampleRate*minDuration, so 100 Hz over 0.07 s is 7 cycles, not 8.
	durationEpsilon = 1e-9
)

// CycleCount returns the smallest whole number of cycles of hz that lasts at
// least minDuration seconds. It is never less than one.
func CycleCount(hz, minDuration float64) int {
	x := hz * minDuration
	n := int(math.Ceil(x - x*durationEpsilon))
	return max(n, 1)
}

// SampleCount returns the number of samples that hold cycles periods of hz
// at sampleRate, rounded to the nearest sample.
func SampleCount(hz float64, sampleRate, cycles int) int {
	return int(math.Round(float64(cycles) * float64(sampleRate) / hz))
}

// MinSamples returns the fewest samples at sampleRate lasting at least
// minDuration seconds.
func MinSamples(sampleRate int, minDuration float64) int {
	x := float64(sampleRate) * minDuration
	return max(int(math.Ceil(x-x*durationEpsilon)), 1)
}

// LoopLength returns the cycle and sample counts of the shortest buffer of hz
// at sampleRate that lasts at least minDuration seconds and holds a whole
// number of cycles, ending within WholeCycleTolerance of a cycle boundary.
//
// The search starts at CycleCount(hz, minDuration) and walks upward. When no
// cycle count within maxLoopSeconds*max(minDuration, 1) seconds lands on a sample,
// LoopLength returns CycleCount cycles rounded to the nearest sample, and the
// loop point is then off the cycle boundary by up to half a sample.
func LoopLength(hz float64, sampleRate int, minDuration float64) (cycles, samples int) {
	rate := float64(sampleRate)
	first := CycleCount(hz, minDuration)
	minSamples := MinSamples(sampleRate, minDuration)
	limit := maxLoopSeconds * rate * math.Max(minDuration, 1)

	for n := first; n-first < maxLoopSearch; n++ {
		exact := float64(n) * rate / hz
		if exact > limit {
			break
		}
		whole := math.Round(exact)
		if whole < float64(minSamples) {
			continue
		}
		held := whole * hz / rate
		if math.Abs(held-float64(n)) <= WholeCycleTolerance {
			return n, int(whole)
		}
	}

	return first, max(SampleCount(hz, sampleRate, first), minSamples)
}

// Generate renders w at hz for the shortest whole-cycle loop lasting at least
// one second.
func Generate(w Waveform, hz float64, sampleRate int) (*SampleBuffer, error) {
	return GenerateDuration(w, hz, sampleRate, DefaultMinDuration)
}

// GenerateDuration renders w at hz for the shortest whole-cycle loop lasting
// at least minDuration seconds. See [LoopLength] for how the length is chosen.
func GenerateDuration(w Waveform, hz float64, sampleRate int, minDuration float64) (*SampleBuffer, error) {
	if w.Shape == nil {
		return nil, fmt.Errorf("%w: %s has no shape function", ErrInvalidWaveform, w.Name)
	}
	if err := checkFrequency(hz); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrInvalidSampleRate, sampleRate)
	}
	if math.IsNaN(minDuration) || math.IsInf(minDuration, 0) || minDuration <= 0 {
		return nil, fmt.Errorf("%w: %v s", ErrInvalidDuration, minDuration)
	}

	cycles, total := LoopLength(hz, sampleRate, minDuration)
	rate := float64(sampleRate)

	samples := make([]float64, total)
	for i := range samples {
		_, phase := math.Modf(float64(i) / rate * hz)
		samples[i] = w.Shape(phase)
	}

	return &SampleBuffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Frequency:  hz,
		Cycles:     cycles,
	}, nil
}
