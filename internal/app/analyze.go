package app

import (
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/display"
	"github.com/Unknown6656/UDPOscilloscope/internal/metrics"
	"github.com/Unknown6656/UDPOscilloscope/internal/pipeline"
	"github.com/Unknown6656/UDPOscilloscope/internal/render"
	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
)

// AnalyzeFile treats the file at path as one captured datagram, runs every
// sub-frame through the render tick and writes the results to out.
func AnalyzeFile(path string, config *configs.Config, out io.Writer, logger logging.Logger) (metrics.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("failed to read capture: %w", err)
	}

	return Analyze(data, config, out, logger)
}

// Analyze runs one datagram through the pipeline without a socket
func Analyze(data []byte, config *configs.Config, out io.Writer, logger logging.Logger) (metrics.Snapshot, error) {
	settings := config.Settings()
	frames, err := frame.Split(data, settings.SplitExponent)
	if err != nil {
		return metrics.Snapshot{}, err
	}

	session := metrics.NewSession()
	p := pipeline.New(configs.NewLive(settings), logger, session)
	session.DatagramReceived(len(data))
	for _, f := range frames {
		session.FrameEnqueued(p.Queue.Enqueue(f))
	}

	tick := render.NewTick(p, display.NewConsole(out, config.Display.Format))
	for tick.Run() != render.Idle {
	}

	return session.Snapshot(), nil
}
