package render

import (
	"context"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/Unknown6656/UDPOscilloscope/configs"
)

// Scheduler invokes the tick periodically on a single goroutine
type Scheduler struct {
	tick     *Tick
	settings *configs.Live
	logger   logging.Logger

	intervals chan time.Duration
}

// NewScheduler creates a scheduler that follows tick interval changes in settings
func NewScheduler(tick *Tick, settings *configs.Live) *Scheduler {
	s := &Scheduler{
		tick:      tick,
		settings:  settings,
		logger:    tick.logger,
		intervals: make(chan time.Duration, 1),
	}

	settings.OnChange(func(old, updated configs.Settings) {
		if old.TickInterval == updated.TickInterval {
			return
		}
		// Latest interval wins
		select {
		case <-s.intervals:
		default:
		}
		select {
		case s.intervals <- updated.TickInterval:
		default:
		}
	})

	return s
}

// Run ticks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.settings.Load().TickInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Render scheduler started", logging.Fields{
		"tick_interval_ms": interval.Milliseconds(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Render scheduler stopped")
			return nil

		case interval = <-s.intervals:
			ticker.Reset(interval)
			s.logger.Info("Render tick interval changed", logging.Fields{
				"tick_interval_ms": interval.Milliseconds(),
			})

		case <-ticker.C:
			s.tick.Run()
		}
	}
}
