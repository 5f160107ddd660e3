// Package display defines the boundary between the render tick and whatever
// draws the plots. A Render call is the redraw trigger.
package display

import (
	"errors"
	"time"

	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
	"github.com/Unknown6656/UDPOscilloscope/pkg/spectral"
)

// Bounds are the plot limits for one chart
type Bounds struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
}

// WaveformBounds pads the sample range and the full 16-bit scale (1 when
// normalized) by margin on both sides.
func WaveformBounds(length int, normalized bool, margin float64) Bounds {
	full := float64(frame.FullScale)
	if normalized {
		full = 1
	}
	return padded(float64(length), full, margin)
}

// SpectrumBounds pads the bin range and [0, peak] by margin
func SpectrumBounds(length int, peak, margin float64) Bounds {
	return padded(float64(length), peak, margin)
}

func padded(width, height, margin float64) Bounds {
	return Bounds{
		XMin: -width * margin,
		XMax: width * (1 + margin),
		YMin: -height * margin,
		YMax: height * (1 + margin),
	}
}

// Update is everything one processed frame produces
type Update struct {
	Sequence  uint64    `json:"sequence" yaml:"sequence"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	Waveform       frame.Waveform `json:"waveform" yaml:"waveform"`
	WaveformBounds Bounds         `json:"waveform_bounds" yaml:"waveform_bounds"`

	// Spectrum is nil when the spectrum is disabled or the analysis failed.
	// Its Index holds bin numbers and Amplitude the magnitudes.
	Spectrum       *frame.Waveform `json:"spectrum,omitempty" yaml:"spectrum,omitempty"`
	SpectrumBounds *Bounds         `json:"spectrum_bounds,omitempty" yaml:"spectrum_bounds,omitempty"`

	Histogram []spectral.HistogramEntry `json:"histogram,omitempty" yaml:"histogram,omitempty"`
	Peaks     []spectral.PeakEntry      `json:"peaks,omitempty" yaml:"peaks,omitempty"`
	Features  *spectral.Features        `json:"features,omitempty" yaml:"features,omitempty"`
	Summary   string                    `json:"summary,omitempty" yaml:"summary,omitempty"`

	AnalysisError string `json:"analysis_error,omitempty" yaml:"analysis_error,omitempty"`
}

// Sink receives updates from the render tick. Render is called from the
// scheduler goroutine only and must not block for long.
type Sink interface {
	Name() string
	Render(u *Update) error
	Close() error
}

// Multi fans each update out to several sinks
type Multi []Sink

func (m Multi) Name() string { return "multi" }

// Render forwards u to every sink and joins their errors
func (m Multi) Render(u *Update) error {
	var errs []error
	for _, s := range m {
		if err := s.Render(u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
