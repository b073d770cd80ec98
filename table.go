package colundi

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// TableSize is the number of entries in the compiled table.
const TableSize = 128

// FrequencyEntry is one row of a frequency table.
type FrequencyEntry struct {
	// Label is the canonical decimal form of Hz. It names the output file
	// and is unique within a table.
	Label string

	// Hz is the target frequency.
	Hz float64
}

// colundiHertz is a placeholder, not the published Colundi list: 128
// ascending values from 20 Hz to 14481.5 Hz on a quarter-hertz grid. Files
// rendered from it do not line up with a Colundi sampler mapping. Load the
// real list with [LoadTable] and pass it as [Config.Table].
var colundiHertz = [TableSize]float64{
	20.0, 21.0, 22.25, 23.25, 24.5, 26.0, 27.25, 28.75,
	30.25, 32.0, 33.5, 35.5, 37.25, 39.25, 41.25, 43.5,
	45.75, 48.25, 50.75, 53.5, 56.5, 59.5, 62.5, 66.0,
	69.5, 73.0, 77.0, 81.0, 85.5, 90.0, 94.75, 99.75,
	105.0, 110.75, 116.5, 122.75, 129.25, 136.25, 143.5, 151.0,
	159.25, 167.5, 176.5, 186.0, 195.75, 206.25, 217.25, 228.75,
	241.0, 253.75, 267.25, 281.5, 296.5, 312.25, 328.75, 346.25,
	364.75, 384.25, 404.75, 426.25, 448.75, 472.75, 498.0, 524.5,
	552.25, 581.75, 612.75, 645.25, 679.5, 715.75, 753.75, 794.0,
	836.25, 880.75, 927.5, 977.0, 1029.0, 1083.75, 1141.5, 1202.25,
	1266.0, 1333.5, 1404.5, 1479.25, 1558.0, 1640.75, 1728.25, 1820.0,
	1917.0, 2019.0, 2126.5, 2239.5, 2358.75, 2484.25, 2616.5, 2755.75,
	2902.5, 3056.75, 3219.5, 3390.75, 3571.25, 3761.5, 3961.5, 4172.25,
	4394.5, 4628.25, 4874.5, 5134.0, 5407.25, 5695.0, 5998.0, 6317.25,
	6653.5, 7007.5, 7380.5, 7773.25, 8186.75, 8622.5, 9081.5, 9564.75,
	10073.75, 10609.75, 11174.5, 11769.0, 12395.5, 13055.0, 13749.75, 14481.5,
}

// Table returns the compiled placeholder table in order. The returned slice
// is a fresh copy; callers may modify it freely.
func Table() []FrequencyEntry {
	entries := make([]FrequencyEntry, len(colundiHertz))
	for i, hz := range colundiHertz {
		entries[i] = NewEntry(hz)
	}
	return entries
}

// NewEntry builds a table entry whose label is the canonical form of hz.
func NewEntry(hz float64) FrequencyEntry {
	return FrequencyEntry{Label: FormatLabel(hz), Hz: hz}
}

// FormatLabel renders hz the way file names expect it: the shortest decimal
// that round-trips, with a trailing ".0" on integral values (440 -> "440.0").
func FormatLabel(hz float64) string {
	s := strconv.FormatFloat(hz, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// LoadTable reads a frequency list with one value in Hz per line.
// Blank lines and lines starting with '#' are skipped.
func LoadTable(r io.Reader) ([]FrequencyEntry, error) {
	var entries []FrequencyEntry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		hz, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidFrequency, lineNo, line)
		}
		entries = append(entries, NewEntry(hz))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frequency table: %w", err)
	}

	if err := ValidateTable(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ValidateTable checks that a table is non-empty, every frequency is
// positive and finite, and labels are unique.
func ValidateTable(entries []FrequencyEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: frequency table is empty", ErrInvalidConfig)
	}

	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if err := checkFrequency(e.Hz); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.Label, err)
		}
		if e.Label == "" {
			return fmt.Errorf("%w: entry %d has an empty label", ErrInvalidConfig, i)
		}
		if prev, ok := seen[e.Label]; ok {
			return fmt.Errorf("%w: %q at entries %d and %d", ErrDuplicateLabel, e.Label, prev, i)
		}
		seen[e.Label] = i
	}
	return nil
}

func checkFrequency(hz float64) error {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz <= 0 {
		return fmt.Errorf("%w: %v Hz", ErrInvalidFrequency, hz)
	}
	return nil
}
