package colundi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Exporter writes sample buffers as mono PCM WAV files.
//
// Files are laid out as
//
//	<Dir>/colundi_waveforms_<tag>/colundi_<label>.wav
//
// which is the layout the sampler mapping expects.
type Exporter struct {
	// Dir is the root output directory. It is created if missing.
	Dir string

	// BitDepth is 16, 24 or 32. Zero selects DefaultBitDepth.
	BitDepth int
}

// Path returns the file an entry and waveform are written to.
func (e *Exporter) Path(entry FrequencyEntry, w Waveform) string {
	return filepath.Join(e.Dir, dirPrefix+w.DirTag(), filePrefix+entry.Label+fileExt)
}

// Export writes buf to the path for entry and w, replacing any existing file.
// The data goes to a temporary file in the same directory that is renamed
// into place once complete; on failure the temporary file is removed.
// Every failure is a *WriteError.
func (e *Exporter) Export(entry FrequencyEntry, w Waveform, buf *SampleBuffer) (path string, err error) {
	path = e.Path(entry, w)

	bitDepth := e.BitDepth
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}
	maxVal, err := maxValueFor(bitDepth)
	if err != nil {
		return "", &WriteError{Path: path, Op: "encode", Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", &WriteError{Path: dir, Op: "mkdir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", &WriteError{Path: dir, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	enc := wav.NewEncoder(tmp, buf.SampleRate, bitDepth, monoChannels, wavFormatPCM)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: monoChannels,
			SampleRate:  buf.SampleRate,
		},
		Data:           quantize(buf.Samples, maxVal),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(intBuf); err != nil {
		return "", &WriteError{Path: path, Op: "write", Err: err}
	}
	// Close patches the RIFF sizes into the header.
	if err := enc.Close(); err != nil {
		return "", &WriteError{Path: path, Op: "finalize", Err: err}
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return "", &WriteError{Path: path, Op: "chmod", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &WriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", &WriteError{Path: path, Op: "rename", Err: err}
	}

	return path, nil
}

var errUnsupportedBitDepth = errors.New("unsupported bit depth")

// maxValueFor returns the full-scale integer value for the given bit depth.
func maxValueFor(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d", errUnsupportedBitDepth, bitDepth)
	}
}

// quantize clamps samples to [-1, 1] and converts them to integer PCM.
func quantize(samples []float64, maxVal float64) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int(s * maxVal)
	}
	return out
}
