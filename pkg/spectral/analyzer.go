package spectral

import (
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
)

// HistogramEntry counts how often one sample value occurs in a waveform
type HistogramEntry struct {
	Value             uint16  `json:"value" yaml:"value"`
	Count             int     `json:"count" yaml:"count"`
	RelativeFrequency float64 `json:"relative_frequency" yaml:"relative_frequency"`
}

// PeakEntry is one ranked spectrum bin
type PeakEntry struct {
	Bin                 int     `json:"bin" yaml:"bin"`
	Frequency           float64 `json:"frequency" yaml:"frequency"`
	Amplitude           float64 `json:"amplitude" yaml:"amplitude"`
	NormalizedAmplitude float64 `json:"normalized_amplitude" yaml:"normalized_amplitude"`
}

// PeakOptions controls which bins are ranked and how they are labelled
type PeakOptions struct {
	// OneSided ranks only bins 1..n/2, the non-redundant half of a real-input spectrum
	OneSided bool
	// SampleRate converts bins to Hz when positive; otherwise Frequency is the bin index
	SampleRate float64
}

// ValueHistogram groups the waveform's raw samples by value and returns the
// topK most frequent values, most frequent first, ties broken by ascending
// value. topK <= 0 returns every value.
func ValueHistogram(w frame.Waveform, topK int) []HistogramEntry {
	total := len(w.Raw)
	if total == 0 {
		return nil
	}

	counts := make(map[uint16]int)
	for _, v := range w.Raw {
		counts[v]++
	}

	entries := make([]HistogramEntry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, HistogramEntry{
			Value:             v,
			Count:             c,
			RelativeFrequency: float64(c) / float64(total),
		})
	}

	slices.SortFunc(entries, func(a, b HistogramEntry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return int(a.Value) - int(b.Value)
	})

	if topK > 0 && len(entries) > topK {
		entries = entries[:topK]
	}
	return entries
}

// PeakFrequencies ranks spectrum bins by magnitude, excluding the DC bin.
// Normalized amplitudes are relative to the largest ranked magnitude; an
// all-zero spectrum normalizes to zero. Ties are broken by ascending bin.
func PeakFrequencies(magnitudes []float64, topK int, opts PeakOptions) []PeakEntry {
	n := len(magnitudes)
	last := n - 1
	if opts.OneSided {
		last = n / 2
	}
	if last < 1 {
		return nil
	}

	ranked := magnitudes[1 : last+1]
	maxAmp := floats.Max(ranked)

	entries := make([]PeakEntry, len(ranked))
	for i, amp := range ranked {
		bin := i + 1
		entry := PeakEntry{
			Bin:       bin,
			Frequency: float64(bin),
			Amplitude: amp,
		}
		if opts.SampleRate > 0 {
			entry.Frequency = float64(bin) * opts.SampleRate / float64(n)
		}
		if maxAmp > 0 {
			entry.NormalizedAmplitude = amp / maxAmp
		}
		entries[i] = entry
	}

	slices.SortStableFunc(entries, func(a, b PeakEntry) int {
		switch {
		case a.Amplitude > b.Amplitude:
			return -1
		case a.Amplitude < b.Amplitude:
			return 1
		}
		return a.Bin - b.Bin
	})

	if topK > 0 && len(entries) > topK {
		entries = entries[:topK]
	}
	return entries
}
