package metrics

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// StatsD forwards pipeline events to a DogStatsD agent
type StatsD struct {
	client statsd.ClientInterface
}

// NewStatsD dials the agent at address. namespace is prefixed to every metric.
func NewStatsD(address, namespace string, tags []string) (*StatsD, error) {
	client, err := statsd.New(address,
		statsd.WithNamespace(namespace),
		statsd.WithTags(tags),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}
	return &StatsD{client: client}, nil
}

// NewStatsDWithClient wraps an existing client
func NewStatsDWithClient(client statsd.ClientInterface) *StatsD {
	return &StatsD{client: client}
}

func (s *StatsD) DatagramReceived(bytes int) {
	_ = s.client.Incr("ingest.datagrams", nil, 1)
	_ = s.client.Count("ingest.bytes", int64(bytes), nil, 1)
}

func (s *StatsD) FrameEnqueued(depth int) {
	_ = s.client.Gauge("queue.depth", float64(depth), nil, 1)
}

func (s *StatsD) FrameRejected(reason string) {
	_ = s.client.Incr("ingest.rejected", []string{"reason:" + reason}, 1)
}

func (s *StatsD) FrameOutcome(outcome string, elapsed time.Duration) {
	tags := []string{"outcome:" + outcome}
	_ = s.client.Incr("render.frames", tags, 1)
	if outcome == OutcomeProcessed {
		_ = s.client.Timing("render.tick_time", elapsed, nil, 1)
	}
}

func (s *StatsD) AnalysisFailed(reason string) {
	_ = s.client.Incr("render.analysis_failed", []string{"reason:" + reason}, 1)
}

// Close flushes and closes the client
func (s *StatsD) Close() error {
	return s.client.Close()
}
