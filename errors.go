package colundi

import (
	"errors"
	"fmt"
)

// Common errors returned by the generator, exporter and driver.
var (
	// ErrInvalidFrequency indicates a frequency that is not positive and finite.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidSampleRate indicates a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidDuration indicates a minimum duration that is not positive and finite.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidWaveform indicates a waveform definition that cannot be used.
	ErrInvalidWaveform = errors.New("invalid waveform")

	// ErrUnknownWaveform indicates a waveform name that is not registered.
	ErrUnknownWaveform = errors.New("unknown waveform kind")

	// ErrDuplicateLabel indicates two table entries sharing a label.
	ErrDuplicateLabel = errors.New("duplicate frequency label")

	// ErrInvalidConfig indicates invalid driver configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrWrite indicates a failure while writing an output file.
	ErrWrite = errors.New("write failed")
)

// WriteError describes a failed export. It matches ErrWrite with errors.Is
// and unwraps to the underlying I/O error.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}
