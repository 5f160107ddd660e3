package frame

import (
	"github.com/Unknown6656/UDPOscilloscope/internal/parallel"
	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
)

// FullScale is the largest 16-bit sample value
const FullScale = 65535

// Waveform is a decoded frame: Index[i] == i and Amplitude[i] is sample i,
// divided by FullScale when Normalized is set. Raw keeps the undivided samples.
type Waveform struct {
	Index      []float64 `json:"index"`
	Amplitude  []float64 `json:"amplitude"`
	Raw        []uint16  `json:"-"`
	Normalized bool      `json:"normalized"`
}

// Len returns the number of samples
func (w Waveform) Len() int {
	return len(w.Amplitude)
}

// Decoder turns raw frames into waveforms
type Decoder struct {
	Normalize bool
	Workers   int
}

// NewDecoder creates a decoder. workers < 1 means GOMAXPROCS.
func NewDecoder(normalize bool, workers int) *Decoder {
	return &Decoder{
		Normalize: normalize,
		Workers:   workers,
	}
}

// Decode reads consecutive big-endian sample pairs. Odd-length frames are
// rejected with common.ErrMalformedFrame.
func (d *Decoder) Decode(frame RawFrame) (Waveform, error) {
	if len(frame)%2 != 0 {
		return Waveform{}, common.MalformedFrame("decode", len(frame), "odd length")
	}

	n := frame.SampleCount()
	w := Waveform{
		Index:      make([]float64, n),
		Amplitude:  make([]float64, n),
		Raw:        make([]uint16, n),
		Normalized: d.Normalize,
	}

	parallel.For(n, d.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s := uint16(frame[2*i])<<8 | uint16(frame[2*i+1])
			w.Raw[i] = s
			w.Index[i] = float64(i)
			if d.Normalize {
				w.Amplitude[i] = float64(s) / FullScale
			} else {
				w.Amplitude[i] = float64(s)
			}
		}
	})

	return w, nil
}
