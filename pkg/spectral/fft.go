package spectral

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"

	"github.com/Unknown6656/UDPOscilloscope/internal/parallel"
	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
)

// Engine computes a forward complex DFT in place. Callers guarantee that
// len(buf) is a power of two.
type Engine interface {
	Name() string
	Transform(buf []complex128)
}

// Radix2 is the iterative in-place Cooley-Tukey transform
type Radix2 struct{}

// Name returns the engine identifier used in configuration
func (Radix2) Name() string { return EngineRadix2 }

// Transform runs the bit-reversal permutation followed by log2(n) butterfly stages
func (Radix2) Transform(buf []complex128) {
	n := len(buf)
	Permute(buf)

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		for i := 0; i < n; i += size {
			for k := 0; k < half; k++ {
				even := buf[i+k]
				odd := buf[i+k+half]

				twiddle := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(size)) * odd

				buf[i+k] = even + twiddle
				buf[i+k+half] = even - twiddle
			}
		}
	}
}

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func log2(n int) int {
	return bits.TrailingZeros(uint(n))
}

// Transform runs the radix-2 FFT over buf in place
func Transform(buf []complex128) error {
	if !IsPowerOfTwo(len(buf)) {
		return common.InvalidLength("fft", len(buf))
	}
	Radix2{}.Transform(buf)
	return nil
}

// FFT turns real sample blocks into magnitude spectra with a configurable engine
type FFT struct {
	engine  Engine
	workers int
}

// NewFFT creates an FFT backed by the named engine ("" selects radix2)
func NewFFT(engineName string, workers int) (*FFT, error) {
	engine, err := NewEngine(engineName)
	if err != nil {
		return nil, err
	}
	return &FFT{engine: engine, workers: workers}, nil
}

// EngineName returns the name of the active engine
func (f *FFT) EngineName() string {
	return f.engine.Name()
}

// Magnitude promotes samples to complex values, transforms them and returns
// |X[k]| for every bin. The result has the same length as samples.
func (f *FFT) Magnitude(samples []float64) ([]float64, error) {
	n := len(samples)
	if !IsPowerOfTwo(n) {
		return nil, common.InvalidLength("fft", n)
	}

	buf := make([]complex128, n)
	parallel.For(n, f.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			buf[i] = complex(samples[i], 0)
		}
	})

	f.engine.Transform(buf)

	magnitudes := make([]float64, n)
	parallel.For(n, f.workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			magnitudes[i] = cmplx.Abs(buf[i])
		}
	})
	return magnitudes, nil
}

// Magnitude runs the radix-2 engine on a single goroutine
func Magnitude(samples []float64) ([]float64, error) {
	f := &FFT{engine: Radix2{}, workers: 1}
	return f.Magnitude(samples)
}

// Engine identifiers
const (
	EngineRadix2 = "radix2"
	EngineDSP    = "dsp"
	EngineGonum  = "gonum"
)

// NewEngine resolves an engine by name
func NewEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineRadix2:
		return Radix2{}, nil
	case EngineDSP:
		return DSP{}, nil
	case EngineGonum:
		return NewGonum(), nil
	default:
		return nil, fmt.Errorf("unknown fft engine %q (want %s, %s or %s)",
			name, EngineRadix2, EngineDSP, EngineGonum)
	}
}
