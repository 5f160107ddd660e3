// Package pipeline holds the state shared by the ingest loop and the render
// tick. It is built once per run and handed to both.
package pipeline

import (
	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/metrics"
	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
)

// Pipeline is the only state that crosses goroutines. The queue is the sole
// mutable data path; settings are read-only snapshots swapped atomically.
type Pipeline struct {
	Queue    *frame.Queue
	Settings *configs.Live
	Logger   logging.Logger
	Metrics  metrics.Recorder
}

// New creates a pipeline with an empty queue. Nil logger and recorder fall
// back to the default logger and a no-op recorder.
func New(settings *configs.Live, logger logging.Logger, recorder metrics.Recorder) *Pipeline {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return &Pipeline{
		Queue:    frame.NewQueue(),
		Settings: settings,
		Logger:   logger,
		Metrics:  recorder,
	}
}
