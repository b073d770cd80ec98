package colundi

// Defaults used by DefaultConfig and the command-line tool.
const (
	DefaultOutputDir   = "colundi_waveforms"
	DefaultSampleRate  = 44100 // CD quality
	DefaultAmplitude   = 0.5   // Headroom for summing voices in the sampler
	DefaultMinDuration = 1.0   // Seconds
	DefaultBitDepth    = 16
	DefaultJobs        = 1
)

// File naming. The sampler mapping depends on these exact patterns.
const (
	dirPrefix  = "colundi_waveforms_"
	filePrefix = "colundi_"
	fileExt    = ".wav"
)

// WAV encoding constants
const (
	monoChannels    = 1
	wavFormatPCM    = 1 // WAVE_FORMAT_PCM
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// File system permissions
const (
	dirPerm  = 0o755
	filePerm = 0o644

	tempPattern = ".colundi-*.wav.tmp"
)

// Progress reporting
const (
	progressInterval = 10 // Log progress every N%
	percentScale     = 100
)
