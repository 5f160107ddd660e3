package spectral

import (
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// DSP delegates to github.com/mjibson/go-dsp
type DSP struct{}

// Name returns the engine identifier used in configuration
func (DSP) Name() string { return EngineDSP }

// Transform computes the DFT with go-dsp and copies it back into buf
func (DSP) Transform(buf []complex128) {
	copy(buf, fft.FFT(buf))
}

// Gonum delegates to gonum's complex FFT. Plans are cached per length.
type Gonum struct {
	mu    sync.Mutex
	plans map[int]*fourier.CmplxFFT
	work  []complex128
}

// NewGonum creates a gonum-backed engine
func NewGonum() *Gonum {
	return &Gonum{plans: make(map[int]*fourier.CmplxFFT)}
}

// Name returns the engine identifier used in configuration
func (g *Gonum) Name() string { return EngineGonum }

// Transform computes the DFT with gonum and copies it back into buf
func (g *Gonum) Transform(buf []complex128) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(buf)
	plan, ok := g.plans[n]
	if !ok {
		plan = fourier.NewCmplxFFT(n)
		g.plans[n] = plan
	}
	if cap(g.work) < n {
		g.work = make([]complex128, n)
	}
	work := g.work[:n]
	copy(work, buf)
	plan.Coefficients(buf, work)
}
