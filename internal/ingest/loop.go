// Package ingest receives datagrams and feeds them to the frame queue.
package ingest

import (
	"context"
	"net"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/pipeline"
	"github.com/Unknown6656/UDPOscilloscope/pkg/common"
	"github.com/Unknown6656/UDPOscilloscope/pkg/frame"
)

// Loop is the blocking receive loop. It owns its goroutine and touches
// nothing shared except the pipeline queue.
type Loop struct {
	conn       net.PacketConn
	pipeline   *pipeline.Pipeline
	readBuffer int
	logger     logging.Logger
}

// NewLoop creates a loop reading from conn into p's queue. Buffers smaller
// than the largest UDP payload are raised to it so datagrams are never cut.
func NewLoop(conn net.PacketConn, p *pipeline.Pipeline, readBuffer int) *Loop {
	if readBuffer < configs.MaxDatagramSize {
		readBuffer = configs.MaxDatagramSize
	}
	return &Loop{
		conn:       conn,
		pipeline:   p,
		readBuffer: readBuffer,
		logger: p.Logger.WithFields(logging.Fields{
			"component": "ingest",
		}),
	}
}

// Run receives datagrams until ctx is cancelled or the socket fails. A
// receive failure is fatal and returned as a NetworkError; closing the socket
// is how callers stop a loop blocked in a receive. Run returns nil only when
// ctx was cancelled between receives.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("Ingest loop started", logging.Fields{
		"address":     l.conn.LocalAddr().String(),
		"read_buffer": l.readBuffer,
	})

	buf := make([]byte, l.readBuffer)
	for {
		if ctx.Err() != nil {
			l.logger.Info("Ingest loop stopped")
			return nil
		}

		l.logger.Debug("Waiting for datagram")

		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			netErr := common.NetworkError("ingest", err)
			fields := logging.Fields{
				"address":     l.conn.LocalAddr().String(),
				"cause_chain": common.ErrorChain(err),
			}
			if ctx.Err() != nil {
				l.logger.Info("Ingest loop stopped by socket close", fields)
			} else {
				l.logger.Error(netErr, "Ingest loop terminated", fields)
			}
			return netErr
		}

		if n == len(buf) {
			l.logger.Warn("Datagram filled the read buffer and may be truncated", logging.Fields{
				"bytes": n,
			})
		}

		l.handleDatagram(buf[:n], addr)
	}
}

// handleDatagram splits one datagram into sub-frames and enqueues them in order
func (l *Loop) handleDatagram(data []byte, source net.Addr) {
	l.pipeline.Metrics.DatagramReceived(len(data))

	from := "unknown"
	if source != nil {
		from = source.String()
	}
	l.logger.Info("Received datagram", logging.Fields{
		"source":    from,
		"bytes":     len(data),
		"size_kb":   float64(len(data)) / 1024,
		"queue_len": l.pipeline.Queue.Count(),
	})

	settings := l.pipeline.Settings.Load()
	frames, err := frame.Split(data, settings.SplitExponent)
	if err != nil {
		l.pipeline.Metrics.FrameRejected(string(common.KindOf(err)))
		l.logger.Warn("Rejected datagram", logging.Fields{
			"source":         from,
			"bytes":          len(data),
			"split_exponent": settings.SplitExponent,
			"error":          err.Error(),
		})
		return
	}

	for _, f := range frames {
		depth := l.pipeline.Queue.Enqueue(f)
		l.pipeline.Metrics.FrameEnqueued(depth)
	}
}
