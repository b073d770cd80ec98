package colundi

import (
	"fmt"

	"github.com/gopxl/beep"
)

const beepPrecision = 2 // bytes per sample when beep encodes

// Format describes the buffer in beep terms.
func (b *SampleBuffer) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(b.SampleRate),
		NumChannels: monoChannels,
		Precision:   beepPrecision,
	}
}

// Streamer returns a seekable beep stream over the buffer. The mono signal is
// copied to both beep channels. Each call returns an independent stream
// positioned at the start.
func (b *SampleBuffer) Streamer() beep.StreamSeeker {
	return &bufferStreamer{samples: b.Samples}
}

type bufferStreamer struct {
	samples []float64
	pos     int
}

func (s *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n = copyMono(samples, s.samples[s.pos:])
	s.pos += n
	return n, true
}

func copyMono(dst [][2]float64, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

func (s *bufferStreamer) Err() error {
	return nil
}

func (s *bufferStreamer) Len() int {
	return len(s.samples)
}

func (s *bufferStreamer) Position() int {
	return s.pos
}

func (s *bufferStreamer) Seek(p int) error {
	if p < 0 || p > len(s.samples) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(s.samples))
	}
	s.pos = p
	return nil
}
