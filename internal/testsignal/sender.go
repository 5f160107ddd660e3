package testsignal

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
)

// Sender writes generated frames to a UDP target at a fixed interval
type Sender struct {
	conn      net.Conn
	generator *Generator
	interval  time.Duration
	logger    logging.Logger
}

// NewSender dials target. The caller closes the sender.
func NewSender(target string, generator *Generator, interval time.Duration, logger logging.Logger) (*Sender, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("send interval must be positive")
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}

	return &Sender{
		conn:      conn,
		generator: generator,
		interval:  interval,
		logger: logger.WithFields(logging.Fields{
			"component": "sender",
			"target":    target,
			"pattern":   generator.Pattern,
		}),
	}, nil
}

// Run sends count frames, or until ctx is cancelled when count <= 0. It
// returns the number of frames sent.
func (s *Sender) Run(ctx context.Context, count int) (int, error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Sending test signal", logging.Fields{
		"frame_size":  s.generator.FrameSize,
		"interval_ms": s.interval.Milliseconds(),
		"count":       count,
	})

	sent := 0
	for {
		if _, err := s.conn.Write(s.generator.Frame(time.Now())); err != nil {
			return sent, fmt.Errorf("failed to send frame %d: %w", sent+1, err)
		}
		sent++
		s.logger.Debug("Sent frame", logging.Fields{"frame": sent})

		if count > 0 && sent == count {
			return sent, nil
		}

		select {
		case <-ctx.Done():
			return sent, nil
		case <-ticker.C:
		}
	}
}

// Close releases the socket
func (s *Sender) Close() error {
	return s.conn.Close()
}
