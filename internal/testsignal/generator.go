// Package testsignal produces synthetic frames and sends them over UDP so the
// scope can be exercised without real hardware.
package testsignal

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/Unknown6656/UDPOscilloscope/internal/parallel"
)

// DefaultFrameSize is the payload size in bytes of one generated frame
const DefaultFrameSize = 1024

// Pattern names
const (
	PatternWobble  = "wobble"
	PatternSine    = "sine"
	PatternSilence = "silence"
)

// Patterns lists every supported pattern
var Patterns = []string{PatternWobble, PatternSine, PatternSilence}

// Generator builds frames of one pattern
type Generator struct {
	Pattern   string
	FrameSize int
	// Cycles is the number of sine periods per frame for the sine pattern
	Cycles  float64
	Workers int
}

// NewGenerator validates the pattern and frame size
func NewGenerator(pattern string, frameSize int, cycles float64, workers int) (*Generator, error) {
	if !slices.Contains(Patterns, pattern) {
		return nil, fmt.Errorf("unknown pattern %q (want one of %v)", pattern, Patterns)
	}
	if frameSize < 2 || frameSize%2 != 0 {
		return nil, fmt.Errorf("frame size must be a positive even number of bytes, got %d", frameSize)
	}
	return &Generator{
		Pattern:   pattern,
		FrameSize: frameSize,
		Cycles:    cycles,
		Workers:   workers,
	}, nil
}

// Frame renders one frame at time now
func (g *Generator) Frame(now time.Time) []byte {
	frame := make([]byte, g.FrameSize)

	switch g.Pattern {
	case PatternWobble:
		// Every byte follows a sine whose rate drifts with the wall clock millisecond.
		ms := float64(now.Nanosecond() / int(time.Millisecond))
		rate := (1.2 + math.Sin(ms*math.Pi/1000)) * 0.03
		parallel.For(len(frame), g.Workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				frame[i] = byte(128 + 127*math.Sin(rate*float64(i)))
			}
		})

	case PatternSine:
		samples := len(frame) / 2
		half := float64(math.MaxUint16) / 2
		parallel.For(samples, g.Workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				v := uint16(math.Round(half + half*math.Sin(2*math.Pi*g.Cycles*float64(i)/float64(samples))))
				frame[2*i] = byte(v >> 8)
				frame[2*i+1] = byte(v)
			}
		})

	case PatternSilence:
	}

	return frame
}
