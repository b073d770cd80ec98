package colundi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapes(t *testing.T) {
	tests := []struct {
		name  string
		shape ShapeFunc
		phase float64
		want  float64
	}{
		{"sine start", sineShape, 0, 0},
		{"sine quarter", sineShape, 0.25, 1},
		{"sine three quarters", sineShape, 0.75, -1},
		{"saw start", sawShape, 0, 0},
		{"saw quarter", sawShape, 0.25, 0.5},
		{"saw half", sawShape, 0.5, -1},
		{"saw three quarters", sawShape, 0.75, -0.5},
		{"square start", squareShape, 0, 1},
		{"square before half", squareShape, 0.49, 1},
		{"square half", squareShape, 0.5, -1},
		{"square end", squareShape, 0.99, -1},
		{"triangle start", triangleShape, 0, -1},
		{"triangle quarter", triangleShape, 0.25, 0},
		{"triangle half", triangleShape, 0.5, 1},
		{"triangle three quarters", triangleShape, 0.75, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.shape(tt.phase), 1e-12)
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{KindSine, KindSaw, KindSquare, KindTriangle}, r.Names())

	for _, name := range []string{"sine", "SINE", " saw ", "sawtooth", "square", "triangle"} {
		_, err := r.Lookup(name)
		assert.NoError(t, err, name)
	}

	saw, err := r.Lookup("sawtooth")
	require.NoError(t, err)
	assert.Equal(t, KindSaw, saw.Name)
	assert.Equal(t, "sawtooth", saw.DirTag())
}

func TestDefaultRegistry_Independent(t *testing.T) {
	a := DefaultRegistry()
	require.NoError(t, a.Register(Waveform{Name: "flat", Shape: func(float64) float64 { return 0 }}))

	_, err := DefaultRegistry().Lookup("flat")
	assert.ErrorIs(t, err, ErrUnknownWaveform)
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	_, err := DefaultRegistry().Lookup("noise")
	assert.ErrorIs(t, err, ErrUnknownWaveform)
}

func TestRegistry_RegisterCustom(t *testing.T) {
	r := DefaultRegistry()
	pulse := Waveform{
		Name: "pulse25",
		Shape: func(phase float64) float64 {
			if phase < 0.25 {
				return 1
			}
			return -1
		},
	}
	require.NoError(t, r.Register(pulse, "pwm"))

	got, err := r.Lookup("PWM")
	require.NoError(t, err)
	assert.Equal(t, "pulse25", got.Name)
	assert.Equal(t, "pulse25", got.DirTag())
	assert.Equal(t, 1.0, got.Shape(0.1))
	assert.Equal(t, -1.0, got.Shape(0.3))
}

func TestRegistry_RegisterErrors(t *testing.T) {
	flat := func(float64) float64 { return 0 }
	tests := []struct {
		name    string
		w       Waveform
		aliases []string
	}{
		{"empty name", Waveform{Shape: flat}, nil},
		{"nil shape", Waveform{Name: "nothing"}, nil},
		{"duplicate name", Waveform{Name: "Sine", Shape: flat}, nil},
		{"alias taken by name", Waveform{Name: "other", Shape: flat}, []string{"square"}},
		{"alias taken by alias", Waveform{Name: "other", Shape: flat}, []string{"sawtooth"}},
		{"tag collision", Waveform{Name: "ramp", Tag: "sawtooth", Shape: flat}, nil},
		{"tag with separator", Waveform{Name: "bad", Tag: "a/b", Shape: flat}, nil},
		{"tag dot dot", Waveform{Name: "..", Shape: flat}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DefaultRegistry().Register(tt.w, tt.aliases...)
			assert.ErrorIs(t, err, ErrInvalidWaveform)
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry()

	ws, err := r.Resolve([]string{"square", "sawtooth", "sine"})
	require.NoError(t, err)
	require.Len(t, ws, 3)
	assert.Equal(t, KindSquare, ws[0].Name)
	assert.Equal(t, KindSaw, ws[1].Name)
	assert.Equal(t, KindSine, ws[2].Name)

	_, err = r.Resolve([]string{"saw", "sawtooth"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = r.Resolve([]string{"sine", "noise"})
	assert.ErrorIs(t, err, ErrUnknownWaveform)
}
