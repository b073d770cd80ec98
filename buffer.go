package colundi

import (
	"github.com/tphakala/go-colundi/internal/simdops"
)

// SampleBuffer is one rendered mono waveform.
type SampleBuffer struct {
	// Samples holds amplitudes, nominally in [-1, 1].
	Samples []float64

	// SampleRate is the rate in Hz the samples were rendered at.
	SampleRate int

	// Frequency is the rendered frequency in Hz.
	Frequency float64

	// Cycles is the whole number of periods the buffer spans.
	Cycles int
}

// Len returns the number of samples.
func (b *SampleBuffer) Len() int {
	return len(b.Samples)
}

// Seconds returns the buffer duration in seconds.
func (b *SampleBuffer) Seconds() float64 {
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Scaled returns a copy of the buffer with every sample multiplied by amplitude.
func (b *SampleBuffer) Scaled(amplitude float64) *SampleBuffer {
	out := *b
	out.Samples = simdops.Scaled(b.Samples, amplitude)
	return &out
}
