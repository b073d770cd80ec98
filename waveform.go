package colundi

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
)

// ShapeFunc maps a phase in [0, 1) to an amplitude in [-1, 1].
// It must be pure: the same phase always yields the same amplitude.
type ShapeFunc func(phase float64) float64

// Waveform is a named periodic shape.
type Waveform struct {
	// Name identifies the waveform on the command line and in reports.
	Name string

	// Tag is the token used in output directory names. Empty means Name.
	Tag string

	// Shape evaluates one cycle of the waveform.
	Shape ShapeFunc
}

// Built-in waveform names.
const (
	KindSine     = "sine"
	KindSaw      = "saw"
	KindSquare   = "square"
	KindTriangle = "triangle"
)

// DefaultKinds are the waveforms rendered when none are requested.
var DefaultKinds = []string{KindSine, KindSaw, KindSquare}

// Sine returns the sine waveform.
func Sine() Waveform {
	return Waveform{Name: KindSine, Shape: sineShape}
}

// Saw returns the sawtooth waveform. It starts at zero, rises to +1 at
// mid-cycle, jumps to -1 and rises back towards zero.
func Saw() Waveform {
	return Waveform{Name: KindSaw, Tag: "sawtooth", Shape: sawShape}
}

// Square returns the square waveform with a 50% duty cycle.
func Square() Waveform {
	return Waveform{Name: KindSquare, Shape: squareShape}
}

// Triangle returns the triangle waveform. It starts at -1 and peaks at +1 at mid-cycle.
func Triangle() Waveform {
	return Waveform{Name: KindTriangle, Shape: triangleShape}
}

func sineShape(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func sawShape(phase float64) float64 {
	return 2 * (phase - math.Floor(phase+0.5))
}

func squareShape(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func triangleShape(phase float64) float64 {
	return 2*math.Abs(2*(phase-math.Floor(phase+0.5))) - 1
}

// DirTag returns the directory token for the waveform.
func (w Waveform) DirTag() string {
	if w.Tag != "" {
		return w.Tag
	}
	return w.Name
}

// Validate checks that the waveform can be rendered and written to disk.
func (w Waveform) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidWaveform)
	}
	if w.Shape == nil {
		return fmt.Errorf("%w: %s has no shape function", ErrInvalidWaveform, w.Name)
	}
	tag := w.DirTag()
	if strings.ContainsAny(tag, `/\`) || tag == "." || tag == ".." {
		return fmt.Errorf("%w: %s has unusable tag %q", ErrInvalidWaveform, w.Name, tag)
	}
	return nil
}

// Registry maps waveform names and aliases to waveforms.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	waveforms map[string]Waveform
	aliases   map[string]string
	order     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		waveforms: make(map[string]Waveform),
		aliases:   make(map[string]string),
	}
}

// DefaultRegistry returns a new registry holding the built-in waveforms.
// "sawtooth" is accepted as an alias for "saw".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(Sine())
	r.mustRegister(Saw(), "sawtooth")
	r.mustRegister(Square())
	r.mustRegister(Triangle())
	return r
}

func (r *Registry) mustRegister(w Waveform, aliases ...string) {
	if err := r.Register(w, aliases...); err != nil {
		panic(err)
	}
}

// Register adds a waveform under its name and any aliases. Names are
// case-insensitive. Registering a name or alias that is already taken fails.
func (r *Registry) Register(w Waveform, aliases ...string) error {
	if err := w.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(w.Name)
	keys := append([]string{name}, aliases...)
	for i, k := range keys {
		k = strings.ToLower(k)
		keys[i] = k
		if _, ok := r.waveforms[k]; ok {
			return fmt.Errorf("%w: %q is already registered", ErrInvalidWaveform, k)
		}
		if _, ok := r.aliases[k]; ok {
			return fmt.Errorf("%w: %q is already registered", ErrInvalidWaveform, k)
		}
	}
	// Tags name output directories, so two waveforms must never share one.
	for _, existing := range r.waveforms {
		if strings.EqualFold(existing.DirTag(), w.DirTag()) {
			return fmt.Errorf("%w: tag %q is used by %s", ErrInvalidWaveform, w.DirTag(), existing.Name)
		}
	}

	w.Name = name
	r.waveforms[name] = w
	for _, a := range keys[1:] {
		r.aliases[a] = name
	}
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the waveform registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (Waveform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	w, ok := r.waveforms[key]
	if !ok {
		return Waveform{}, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
	}
	return w, nil
}

// Resolve looks up every name in order. Naming the same waveform twice,
// directly or through an alias, is an error.
func (r *Registry) Resolve(names []string) ([]Waveform, error) {
	waveforms := make([]Waveform, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		w, err := r.Lookup(n)
		if err != nil {
			return nil, err
		}
		if seen[w.Name] {
			return nil, fmt.Errorf("%w: waveform %s requested more than once", ErrInvalidConfig, w.Name)
		}
		seen[w.Name] = true
		waveforms = append(waveforms, w)
	}
	return waveforms, nil
}

// Names returns the canonical names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}
