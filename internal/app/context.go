package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/display"
	"github.com/Unknown6656/UDPOscilloscope/internal/ingest"
	"github.com/Unknown6656/UDPOscilloscope/internal/metrics"
	"github.com/Unknown6656/UDPOscilloscope/internal/pipeline"
	"github.com/Unknown6656/UDPOscilloscope/internal/render"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string // Application configuration file (optional)
	OutputFile   string // Session statistics destination; stdout when empty
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
	Viper  *viper.Viper
}

// ScopeApp handles the oscilloscope lifecycle
type ScopeApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewScopeApp creates a new oscilloscope application
func NewScopeApp(ctx *Context) (*ScopeApp, error) {
	// Set up logging
	logger := setupLogging(ctx)
	ctx.Logger = logger

	if ctx.Viper == nil {
		ctx.Viper = viper.GetViper()
	}

	// Load configuration
	config, err := loadAndValidateConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	logger.Debug("Oscilloscope application initialized", logging.Fields{
		"config_file":    ctx.Viper.ConfigFileUsed(),
		"listen_address": config.Network.ListenAddress(),
		"sinks":          config.Display.Sinks,
		"fft_engine":     config.Analysis.FFTEngine,
		"output_format":  ctx.OutputFormat,
	})

	return &ScopeApp{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run listens until ctx is cancelled or the socket fails, then prints the
// session statistics
func (app *ScopeApp) Run(ctx context.Context) error {
	live := configs.NewLive(app.config.Settings())
	live.Watch(app.ctx.Viper, app.logger)

	session := metrics.NewSession()
	recorder, err := app.buildRecorder(session)
	if err != nil {
		return err
	}
	defer recorder.Close()

	p := pipeline.New(live, app.logger, recorder)

	sink, servers := app.buildSinks()
	defer sink.Close()

	conn, err := ingest.Listen(ctx, app.config.Network.ListenAddress(), app.config.Network.ReuseAddr)
	if err != nil {
		return err
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := ingest.NewLoop(conn, p, app.config.Network.ReadBuffer).Run(gctx)
		if gctx.Err() != nil {
			// The socket was closed for shutdown
			return nil
		}
		return err
	})

	g.Go(func() error {
		return render.NewScheduler(render.NewTick(p, sink), live).Run(gctx)
	})

	for _, ws := range servers {
		g.Go(func() error {
			return ws.Serve(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return conn.Close()
	})

	runErr := g.Wait()

	drained := p.Queue.Drain()
	app.logger.Info("Oscilloscope stopped", logging.Fields{
		"uptime_seconds":   time.Since(start).Seconds(),
		"discarded_frames": drained,
	})

	if err := app.outputSessionStats(session.Snapshot(), time.Since(start), drained); err != nil {
		app.logger.Error(err, "Failed to write session statistics")
	}

	return runErr
}

func (app *ScopeApp) buildRecorder(session *metrics.Session) (metrics.Recorder, error) {
	if !app.config.Metrics.Enabled {
		return session, nil
	}

	sd, err := metrics.NewStatsD(app.config.Metrics.Address, app.config.Metrics.Namespace, app.config.Metrics.Tags)
	if err != nil {
		return nil, err
	}

	app.logger.Info("StatsD metrics enabled", logging.Fields{
		"address":   app.config.Metrics.Address,
		"namespace": app.config.Metrics.Namespace,
	})
	return metrics.Multi{session, sd}, nil
}

// buildSinks returns the fan-out sink and the websocket sinks that need serving
func (app *ScopeApp) buildSinks() (display.Multi, []*display.WebSocket) {
	var sinks display.Multi
	var servers []*display.WebSocket

	for _, name := range app.config.Display.Sinks {
		switch name {
		case "console":
			if app.ctx.Quiet {
				continue
			}
			sinks = append(sinks, display.NewConsole(os.Stdout, app.config.Display.Format))
		case "websocket":
			ws := display.NewWebSocket(app.config.Display.HTTPAddress, app.logger)
			sinks = append(sinks, ws)
			servers = append(servers, ws)
		}
	}

	return sinks, servers
}

// outputSessionStats writes the shutdown summary
func (app *ScopeApp) outputSessionStats(snapshot metrics.Snapshot, uptime time.Duration, discarded int) error {
	outputData := map[string]any{
		"session": map[string]any{
			"uptime_seconds":    uptime.Seconds(),
			"datagrams":         snapshot.Datagrams,
			"bytes":             snapshot.Bytes,
			"frames_enqueued":   snapshot.FramesEnqueued,
			"frames_rejected":   snapshot.FramesRejected,
			"frames_processed":  snapshot.FramesProcessed,
			"frames_dropped":    snapshot.FramesDropped,
			"frames_failed":     snapshot.FramesFailed,
			"frames_discarded":  discarded,
			"analysis_failed":   snapshot.AnalysisFailed,
			"max_queue_depth":   snapshot.MaxQueueDepth,
			"mean_tick_time_ms": float64(snapshot.MeanTickTime.Microseconds()) / 1000,
		},
		"timestamp": time.Now(),
	}

	formatted, err := display.NewFormatter(app.ctx.OutputFormat).Format(outputData, true)
	if err != nil {
		return fmt.Errorf("failed to format session statistics: %w", err)
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = os.Stdout.Write(formatted)
	return err
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	if ctx.Logger != nil {
		return ctx.Logger
	}
	return logging.NewDefaultLogger()
}

// loadAndValidateConfig loads configuration from viper and validates it
func loadAndValidateConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfigFrom(ctx.Viper)
	if err != nil {
		return nil, err
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// writeToFile writes data to the specified output file
func (app *ScopeApp) writeToFile(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}
