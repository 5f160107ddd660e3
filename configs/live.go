package configs

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings is the part of the configuration that may change while the
// pipeline runs. It is read once per datagram or per tick.
type Settings struct {
	SplitExponent       int
	Normalize           bool
	IncludeSpectrum     bool
	IncludeHistogram    bool
	TopK                int
	FFTEngine           string
	OneSided            bool
	SampleRate          float64
	Workers             int
	TickInterval        time.Duration
	ReentrancyThreshold int
	AxisMargin          float64
}

// Settings extracts the runtime-settable values
func (c *Config) Settings() Settings {
	return Settings{
		SplitExponent:       c.Pipeline.SplitExponent,
		Normalize:           c.Pipeline.Normalize,
		IncludeSpectrum:     c.Pipeline.IncludeSpectrum,
		IncludeHistogram:    c.Pipeline.IncludeHistogram,
		TopK:                c.Analysis.TopK,
		FFTEngine:           c.Analysis.FFTEngine,
		OneSided:            c.Analysis.OneSided,
		SampleRate:          c.Analysis.SampleRate,
		Workers:             c.Analysis.Workers,
		TickInterval:        c.Render.TickInterval,
		ReentrancyThreshold: c.Render.ReentrancyThreshold,
		AxisMargin:          c.Display.AxisMargin,
	}
}

// Live holds the current Settings. Readers never block writers.
type Live struct {
	current atomic.Pointer[Settings]

	mu        sync.Mutex
	listeners []func(old, updated Settings)
}

// NewLive creates a holder initialised with s
func NewLive(s Settings) *Live {
	l := &Live{}
	l.current.Store(&s)
	return l
}

// Load returns the current settings
func (l *Live) Load() Settings {
	return *l.current.Load()
}

// Store replaces the settings and notifies listeners
func (l *Live) Store(s Settings) {
	old := l.current.Swap(&s)

	l.mu.Lock()
	listeners := append([]func(old, updated Settings){}, l.listeners...)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(*old, s)
	}
}

// OnChange registers fn to run after every Store
func (l *Live) OnChange(fn func(old, updated Settings)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Reload re-reads v and stores the new settings if they validate
func (l *Live) Reload(v *viper.Viper) error {
	config, err := LoadConfigFrom(v)
	if err != nil {
		return err
	}
	if err := ValidateConfig(config); err != nil {
		return fmt.Errorf("rejected configuration change: %w", err)
	}
	l.Store(config.Settings())
	return nil
}

// Watch reloads settings whenever v's config file changes. It is a no-op
// when no config file is in use.
func (l *Live) Watch(v *viper.Viper, logger logging.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := l.Reload(v); err != nil {
			logger.Error(err, "Configuration reload failed", logging.Fields{
				"file": e.Name,
			})
			return
		}
		logger.Info("Configuration reloaded", logging.Fields{
			"file": e.Name,
		})
	})
	v.WatchConfig()
}
