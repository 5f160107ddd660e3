// Package metrics records pipeline counters for the session summary and,
// optionally, a StatsD agent.
package metrics

import (
	"sync/atomic"
	"time"
)

// Tick outcomes reported through FrameOutcome
const (
	OutcomeProcessed = "processed"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)

// Recorder receives pipeline events. Implementations must be safe for use by
// the ingest and render goroutines at the same time.
type Recorder interface {
	DatagramReceived(bytes int)
	FrameEnqueued(depth int)
	FrameRejected(reason string)
	FrameOutcome(outcome string, elapsed time.Duration)
	AnalysisFailed(reason string)
	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) DatagramReceived(int) {}
func (Nop) FrameEnqueued(int) {}
func (Nop) FrameRejected(string) {}
func (Nop) FrameOutcome(string, time.Duration) {}
func (Nop) AnalysisFailed(string) {}
func (Nop) Close() error { return nil }

// Snapshot is a point-in-time copy of the session counters
type Snapshot struct {
	Datagrams       int64         `json:"datagrams" yaml:"datagrams"`
	Bytes           int64         `json:"bytes" yaml:"bytes"`
	FramesEnqueued  int64         `json:"frames_enqueued" yaml:"frames_enqueued"`
	FramesRejected  int64         `json:"frames_rejected" yaml:"frames_rejected"`
	FramesProcessed int64         `json:"frames_processed" yaml:"frames_processed"`
	FramesDropped   int64         `json:"frames_dropped" yaml:"frames_dropped"`
	FramesFailed    int64         `json:"frames_failed" yaml:"frames_failed"`
	AnalysisFailed  int64         `json:"analysis_failed" yaml:"analysis_failed"`
	MaxQueueDepth   int64         `json:"max_queue_depth" yaml:"max_queue_depth"`
	MeanTickTime    time.Duration `json:"mean_tick_time" yaml:"mean_tick_time"`
}

// Session accumulates counters for the shutdown summary
type Session struct {
	datagrams      atomic.Int64
	bytes          atomic.Int64
	enqueued       atomic.Int64
	rejected       atomic.Int64
	processed      atomic.Int64
	dropped        atomic.Int64
	failed         atomic.Int64
	analysisFailed atomic.Int64
	maxDepth       atomic.Int64
	tickNanos      atomic.Int64
}

// NewSession creates an empty session recorder
func NewSession() *Session {
	return &Session{}
}

func (s *Session) DatagramReceived(bytes int) {
	s.datagrams.Add(1)
	s.bytes.Add(int64(bytes))
}

func (s *Session) FrameEnqueued(depth int) {
	s.enqueued.Add(1)
	for {
		cur := s.maxDepth.Load()
		if int64(depth) <= cur || s.maxDepth.CompareAndSwap(cur, int64(depth)) {
			return
		}
	}
}

func (s *Session) FrameRejected(string) {
	s.rejected.Add(1)
}

func (s *Session) FrameOutcome(outcome string, elapsed time.Duration) {
	switch outcome {
	case OutcomeProcessed:
		s.processed.Add(1)
		s.tickNanos.Add(int64(elapsed))
	case OutcomeDropped:
		s.dropped.Add(1)
	case OutcomeFailed:
		s.failed.Add(1)
	}
}

func (s *Session) AnalysisFailed(string) {
	s.analysisFailed.Add(1)
}

func (s *Session) Close() error { return nil }

// Snapshot returns the current counters
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Datagrams:       s.datagrams.Load(),
		Bytes:           s.bytes.Load(),
		FramesEnqueued:  s.enqueued.Load(),
		FramesRejected:  s.rejected.Load(),
		FramesProcessed: s.processed.Load(),
		FramesDropped:   s.dropped.Load(),
		FramesFailed:    s.failed.Load(),
		AnalysisFailed:  s.analysisFailed.Load(),
		MaxQueueDepth:   s.maxDepth.Load(),
	}
	if snap.FramesProcessed > 0 {
		snap.MeanTickTime = time.Duration(s.tickNanos.Load() / snap.FramesProcessed)
	}
	return snap
}

// Multi fans every event out to several recorders
type Multi []Recorder

func (m Multi) DatagramReceived(bytes int) {
	for _, r := range m {
		r.DatagramReceived(bytes)
	}
}

func (m Multi) FrameEnqueued(depth int) {
	for _, r := range m {
		r.FrameEnqueued(depth)
	}
}

func (m Multi) FrameRejected(reason string) {
	for _, r := range m {
		r.FrameRejected(reason)
	}
}

func (m Multi) FrameOutcome(outcome string, elapsed time.Duration) {
	for _, r := range m {
		r.FrameOutcome(outcome, elapsed)
	}
}

func (m Multi) AnalysisFailed(reason string) {
	for _, r := range m {
		r.AnalysisFailed(reason)
	}
}

// Close closes every recorder and returns the first error
func (m Multi) Close() error {
	var first error
	for _, r := range m {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
