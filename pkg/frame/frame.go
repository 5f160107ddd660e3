// Package frame holds raw datagram frames, the FIFO between ingest and render,
// and the big-endian 16-bit sample decoder.
package frame

import (
	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
)

// RawFrame is one unit of raw bytes: pairs of bytes forming big-endian 16-bit
// samples. A frame is never modified after it is enqueued.
type RawFrame []byte

// SampleCount returns the number of whole samples in the frame
func (f RawFrame) SampleCount() int {
	return len(f) / 2
}

// Split copies data into 2^exponent equal sub-frames in order. Trailing bytes
// that do not fill a whole sub-frame are dropped.
func Split(data []byte, exponent int) ([]RawFrame, error) {
	if exponent < 0 {
		return nil, common.NewScopeError(common.KindMalformedFrame, "split", "negative split exponent", nil)
	}

	parts := 1 << exponent
	size := len(data) >> exponent
	if size == 0 {
		return nil, common.MalformedFrame("split", len(data),
			"too short to split into sub-frames")
	}

	frames := make([]RawFrame, parts)
	for i := range frames {
		sub := make(RawFrame, size)
		copy(sub, data[i*size:(i+1)*size])
		frames[i] = sub
	}
	return frames, nil
}
