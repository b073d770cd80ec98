package colundi

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-colundi/internal/analysis"
	"github.com/tphakala/go-colundi/internal/testutil"
)

func TestCycleCount(t *testing.T) {
	tests := []struct {
		hz, duration float64
		want         int
	}{
		{440, 1, 440},
		{440.5, 1, 441},
		{20.25, 1, 21},
		{0.25, 1, 1},
		{20, 0.5, 10},
		{13.3, 2, 27},
		{100, 0.07, 7},
		{1000, 0.001, 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%gHz_%gs", tt.hz, tt.duration), func(t *testing.T) {
			assert.Equal(t, tt.want, CycleCount(tt.hz, tt.duration))
		})
	}
}

func TestSampleCount(t *testing.T) {
	assert.Equal(t, 44100, SampleCount(440, 44100, 440))
	assert.Equal(t, 44100, SampleCount(220, 44100, 220))
	// 21 cycles of 20.25 Hz is 45733.33 samples.
	assert.Equal(t, 45733, SampleCount(20.25, 44100, 21))
}

func TestMinSamples(t *testing.T) {
	assert.Equal(t, 44100, MinSamples(44100, 1))
	assert.Equal(t, 44101, MinSamples(44100, 1.00001))
	assert.Equal(t, 3087, MinSamples(44100, 0.07))
	assert.Equal(t, 1, MinSamples(44100, 1e-9))
}

func TestLoopLength(t *testing.T) {
	tests := []struct {
		name       string
		hz         float64
		rate       int
		duration   float64
		wantCycles int
		wantLen    int
	}{
		{"divides the rate", 440, 44100, 1, 440, 44100},
		{"quarter hertz", 22.25, 44100, 1, 89, 176400},
		{"half hertz", 14481.5, 44100, 1, 28963, 88200},
		{"fractional minimum", 100, 44100, 0.07, 7, 3087},
		{"half second", 440, 44100, 0.5, 220, 22050},
		{"whole hertz coprime", 13, 44100, 1, 13, 44100},
		{"longer minimum", 100, 44100, 2.5, 250, 110250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycles, n := LoopLength(tt.hz, tt.rate, tt.duration)
			assert.Equal(t, tt.wantCycles, cycles)
			assert.Equal(t, tt.wantLen, n)
		})
	}
}

func TestLoopLength_FallsBackPastSearchLimit(t *testing.T) {
	// 1234.5678 Hz needs 685871 cycles to land on a sample at 44.1 kHz,
	// far past the search window, so the shortest cycle count is used.
	const hz = 1234.5678
	cycles, n := LoopLength(hz, 44100, 1)
	assert.Equal(t, 1235, cycles)
	assert.Equal(t, 44115, n)
	assert.Equal(t, SampleCount(hz, 44100, cycles), n)
}

func TestGenerateDuration_FractionalMinimum(t *testing.T) {
	const rate = 44100
	tests := []struct {
		hz, duration float64
	}{
		{439.9955, 1.00001},
		{440, 0.5},
		{1234.5678, 1.00001},
		{100, 0.07},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%gHz_%gs", tt.hz, tt.duration), func(t *testing.T) {
			buf, err := GenerateDuration(Sine(), tt.hz, rate, tt.duration)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, buf.Len(), MinSamples(rate, tt.duration))
			assert.GreaterOrEqual(t, float64(buf.Len()), rate*tt.duration*(1-1e-9))
		})
	}
}

// TestGenerate_WholeCyclesOverTable checks the loop invariant for every
// table frequency at common sample rates.
func TestGenerate_WholeCyclesOverTable(t *testing.T) {
	for _, rate := range []int{44100, 48000, 96000} {
		t.Run(fmt.Sprintf("%dHz", rate), func(t *testing.T) {
			for _, e := range Table() {
				buf, err := Generate(Square(), e.Hz, rate)
				require.NoError(t, err, e.Label)

				assert.GreaterOrEqual(t, buf.Len(), rate, "%s shorter than one second", e.Label)
				assert.GreaterOrEqual(t, buf.Seconds(), 1.0, e.Label)
				assert.GreaterOrEqual(t, buf.Cycles, CycleCount(e.Hz, 1), e.Label)
				assert.LessOrEqual(t, buf.Len(), 10*rate, e.Label)
				testutil.AssertWholeCycles(t, buf.Len(), rate, e.Hz)

				// No shorter cycle count reaching one second lands on a sample.
				for n := CycleCount(e.Hz, 1); n < buf.Cycles; n++ {
					exact := float64(n) * float64(rate) / e.Hz
					held := math.Round(exact) * e.Hz / float64(rate)
					require.Greater(t, math.Abs(held-float64(n)), WholeCycleTolerance,
						"%s: %d cycles already loop", e.Label, n)
				}
			}
		})
	}
}

func TestGenerateDuration_Longer(t *testing.T) {
	buf, err := GenerateDuration(Sine(), 100, 44100, 2.5)
	require.NoError(t, err)

	assert.Equal(t, 250, buf.Cycles)
	assert.Equal(t, 110250, buf.Len())
	assert.InDelta(t, 2.5, buf.Seconds(), 1e-12)
}

func TestGenerate_Idempotent(t *testing.T) {
	for _, w := range []Waveform{Sine(), Saw(), Square(), Triangle()} {
		t.Run(w.Name, func(t *testing.T) {
			a, err := Generate(w, 1141.5, 44100)
			require.NoError(t, err)
			b, err := Generate(w, 1141.5, 44100)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		})
	}
}

func TestGenerate_SquareIsBipolar(t *testing.T) {
	entries := Table()
	for i := 0; i < len(entries); i += 16 {
		buf, err := Generate(Square(), entries[i].Hz, 44100)
		require.NoError(t, err)
		for j, v := range buf.Samples {
			if v != 1 && v != -1 {
				require.Failf(t, "square sample not bipolar", "%s: sample %d = %v", entries[i].Label, j, v)
			}
		}
	}
}

func TestGenerate_Sine(t *testing.T) {
	buf, err := Generate(Sine(), 440, 44100)
	require.NoError(t, err)

	assert.Equal(t, 0.0, buf.Samples[0])
	assert.InDelta(t, 1.0, analysis.Peak(buf.Samples), testutil.SineTolerance)
	testutil.AssertAllInRange(t, buf.Samples, -1, 1)
	testutil.AssertNoNaNOrInf(t, buf.Samples)
}

func TestGenerate_SineZeroCrossingFrequency(t *testing.T) {
	const rate = 44100
	buf, err := Generate(Sine(), 440, rate)
	require.NoError(t, err)

	got := analysis.ZeroCrossingFrequency(buf.Samples, rate)
	testutil.AssertRelativeError(t, 440.0, got, 0.001)
}

func TestGenerate_Saw(t *testing.T) {
	buf, err := Generate(Saw(), 100, 44100)
	require.NoError(t, err)

	assert.Equal(t, 0.0, buf.Samples[0])
	testutil.AssertAllInRange(t, buf.Samples, -1, 1)
	// 441 samples per cycle: the first 220 rise from 0 towards +1.
	testutil.AssertMonotonic(t, buf.Samples[:221])
	assert.Less(t, buf.Samples[221], 0.0)
}

func TestGenerate_Triangle(t *testing.T) {
	buf, err := Generate(Triangle(), 100, 44100)
	require.NoError(t, err)

	assert.Equal(t, -1.0, buf.Samples[0])
	testutil.AssertAllInRange(t, buf.Samples, -1, 1)
	testutil.AssertMonotonic(t, buf.Samples[:221])
}

func TestGenerate_Custom(t *testing.T) {
	dc := Waveform{Name: "dc", Shape: func(float64) float64 { return 0.25 }}
	buf, err := Generate(dc, 50, 8000)
	require.NoError(t, err)

	require.Equal(t, 8000, buf.Len())
	for _, v := range buf.Samples {
		require.Equal(t, 0.25, v)
	}
}

func TestGenerate_LoopsWithoutSeam(t *testing.T) {
	entries := Table()
	for i := 0; i < len(entries); i += 9 {
		e := entries[i]
		t.Run(e.Label, func(t *testing.T) {
			buf, err := Generate(Sine(), e.Hz, 44100)
			require.NoError(t, err)

			seam, maxStep, err := analysis.LoopSeam(buf.Streamer())
			require.NoError(t, err)
			// The buffer ends on a cycle boundary, so the step across the
			// loop point is an ordinary step.
			assert.LessOrEqual(t, seam, maxStep*(1+1e-3)+1e-9)
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		w        Waveform
		hz       float64
		rate     int
		duration float64
		wantErr  error
	}{
		{"zero frequency", Sine(), 0, 44100, 1, ErrInvalidFrequency},
		{"negative frequency", Sine(), -440, 44100, 1, ErrInvalidFrequency},
		{"NaN frequency", Sine(), math.NaN(), 44100, 1, ErrInvalidFrequency},
		{"infinite frequency", Sine(), math.Inf(1), 44100, 1, ErrInvalidFrequency},
		{"zero sample rate", Sine(), 440, 0, 1, ErrInvalidSampleRate},
		{"negative sample rate", Sine(), 440, -1, 1, ErrInvalidSampleRate},
		{"zero duration", Sine(), 440, 44100, 0, ErrInvalidDuration},
		{"NaN duration", Sine(), 440, 44100, math.NaN(), ErrInvalidDuration},
		{"nil shape", Waveform{Name: "empty"}, 440, 44100, 1, ErrInvalidWaveform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := GenerateDuration(tt.w, tt.hz, tt.rate, tt.duration)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, buf)
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Generate(Sine(), 440, 44100)
	}
}
