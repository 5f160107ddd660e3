package spectral

import (
	sonar "github.com/RyanBlaney/sonido-sonar/algorithms/spectral"
	"gonum.org/v1/gonum/floats"
)

// RolloffFraction is the share of spectral energy below the rolloff frequency
const RolloffFraction = 0.85

// Features summarises the shape of a magnitude spectrum. Frequencies use the
// same labelling as PeakEntry.Frequency.
type Features struct {
	Centroid  float64 `json:"centroid" yaml:"centroid"`
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth"`
	Rolloff   float64 `json:"rolloff" yaml:"rolloff"`
	Flatness  float64 `json:"flatness" yaml:"flatness"`
	Crest     float64 `json:"crest" yaml:"crest"`
	Energy    float64 `json:"energy" yaml:"energy"`
}

// SpectralFeatures computes Features over the bins PeakFrequencies ranks with
// the same options. The DC bin is excluded. Too-short or all-zero spectra
// yield zero features.
func SpectralFeatures(magnitudes []float64, opts PeakOptions) Features {
	n := len(magnitudes)
	last := n - 1
	if opts.OneSided {
		last = n / 2
	}
	if last < 1 {
		return Features{}
	}

	// sonar labels bin i of an L-bin slice as i*rate/(2(L-1)). With L = last+1
	// and rate = 2*last every bin is labelled by its own index.
	bins := make([]float64, last+1)
	copy(bins[1:], magnitudes[1:last+1])
	spectrum := bins[1:]

	if floats.Sum(spectrum) == 0 {
		return Features{}
	}

	rate := 2 * last
	var f Features
	f.Centroid = sonar.NewSpectralCentroid(rate).Compute(bins)
	f.Bandwidth = sonar.NewSpectralBandwidth(rate).Compute(bins, f.Centroid)
	f.Rolloff = sonar.NewSpectralRolloff(rate).Compute(bins, RolloffFraction)
	f.Flatness = sonar.NewSpectralFlatness().Compute(spectrum)
	f.Crest = sonar.NewSpectralCrest().Compute(spectrum)
	f.Energy = floats.Dot(spectrum, spectrum)

	if opts.SampleRate > 0 {
		hz := opts.SampleRate / float64(n)
		f.Centroid *= hz
		f.Bandwidth *= hz
		f.Rolloff *= hz
	}
	return f
}
