package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/app"
)

var (
	listenOutputFile string
	listenQuiet      bool
)

// listenCmd runs the oscilloscope
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Receive datagrams and render waveforms and spectra",
	Long: `Listen for UDP datagrams of big-endian 16-bit samples and render each frame.

The ingest loop never blocks on rendering: frames wait in a FIFO queue that a
periodic render tick drains one frame at a time. Press Ctrl+C to stop; the
session statistics are printed on exit.

Examples:
  # Listen on the default port 31488
  udpscope listen

  # Split every datagram into 4 frames and normalise amplitudes
  udpscope listen --split 2 --normalize

  # Stream updates to browsers and print JSON summaries
  udpscope listen --sink console,websocket --format json`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)

	flags := listenCmd.Flags()
	flags.String("address", "0.0.0.0", "address to listen on")
	flags.IntP("port", "p", 31488, "UDP port to listen on")
	flags.Int("split", 0, "split each datagram into 2^k equal frames")
	flags.Bool("normalize", false, "divide amplitudes by 65535")
	flags.Bool("spectrum", true, "compute the magnitude spectrum")
	flags.Bool("histogram", true, "compute the value histogram")
	flags.Int("top-k", 20, "number of histogram values and peaks to report")
	flags.String("engine", "radix2", "FFT engine (radix2, dsp, gonum)")
	flags.Float64("sample-rate", 0, "sample rate in Hz used to label peaks (0 labels bins)")
	flags.Bool("one-sided", false, "rank only bins 1..n/2 instead of every non-DC bin")
	flags.Duration("tick", configs.DefaultTickInterval, "render tick interval")
	flags.Int("threshold", 24, "re-entrancy depth at which the oldest frame is dropped")
	flags.StringSlice("sink", []string{"console"}, "display sinks (console, websocket)")
	flags.String("format", "text", "console display format (text, json, yaml, table)")
	flags.String("http", "127.0.0.1:8080", "websocket display address")
	flags.Bool("metrics", false, "send StatsD metrics")
	flags.StringVar(&listenOutputFile, "output-file", "", "write session statistics to a file")
	flags.BoolVarP(&listenQuiet, "quiet", "q", false, "suppress the console display")

	bindConfigFlag(listenCmd, "network.address", "address")
	bindConfigFlag(listenCmd, "network.port", "port")
	bindConfigFlag(listenCmd, "pipeline.split_exponent", "split")
	bindConfigFlag(listenCmd, "pipeline.normalize", "normalize")
	bindConfigFlag(listenCmd, "pipeline.include_spectrum", "spectrum")
	bindConfigFlag(listenCmd, "pipeline.include_histogram", "histogram")
	bindConfigFlag(listenCmd, "analysis.top_k", "top-k")
	bindConfigFlag(listenCmd, "analysis.fft_engine", "engine")
	bindConfigFlag(listenCmd, "analysis.sample_rate", "sample-rate")
	bindConfigFlag(listenCmd, "analysis.one_sided", "one-sided")
	bindConfigFlag(listenCmd, "render.tick_interval", "tick")
	bindConfigFlag(listenCmd, "render.reentrancy_threshold", "threshold")
	bindConfigFlag(listenCmd, "display.sinks", "sink")
	bindConfigFlag(listenCmd, "display.format", "format")
	bindConfigFlag(listenCmd, "display.http_address", "http")
	bindConfigFlag(listenCmd, "metrics.enabled", "metrics")
}

func runListen(cmd *cobra.Command, args []string) error {
	scope, err := app.NewScopeApp(&app.Context{
		ConfigFile:   configFile,
		OutputFile:   listenOutputFile,
		OutputFormat: viper.GetString("output_format"),
		Verbose:      verbose,
		Quiet:        listenQuiet,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return scope.Run(ctx)
}
