package configs

import (
	"time"

	"github.com/spf13/viper"
)

// Built-in defaults
const (
	DefaultPort                = 31488
	DefaultAxisMargin          = 0.03
	DefaultTopK                = 20
	DefaultReentrancyThreshold = 24
	DefaultTickInterval        = 20 * time.Millisecond
	DefaultReadBuffer          = 65535

	// MaxDatagramSize is the largest UDP payload over IPv4
	MaxDatagramSize = 65507
)

// SetDefaults registers default values for every configuration key on v
func SetDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	// Application defaults
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output_format", d.OutputFormat)

	// Network defaults
	v.SetDefault("network.address", d.Network.Address)
	v.SetDefault("network.port", d.Network.Port)
	v.SetDefault("network.read_buffer", d.Network.ReadBuffer)
	v.SetDefault("network.reuse_addr", d.Network.ReuseAddr)

	// Pipeline defaults
	v.SetDefault("pipeline.split_exponent", d.Pipeline.SplitExponent)
	v.SetDefault("pipeline.normalize", d.Pipeline.Normalize)
	v.SetDefault("pipeline.include_spectrum", d.Pipeline.IncludeSpectrum)
	v.SetDefault("pipeline.include_histogram", d.Pipeline.IncludeHistogram)

	// Analysis defaults
	v.SetDefault("analysis.top_k", d.Analysis.TopK)
	v.SetDefault("analysis.fft_engine", d.Analysis.FFTEngine)
	v.SetDefault("analysis.one_sided", d.Analysis.OneSided)
	v.SetDefault("analysis.sample_rate", d.Analysis.SampleRate)
	v.SetDefault("analysis.workers", d.Analysis.Workers)

	// Render defaults
	v.SetDefault("render.tick_interval", d.Render.TickInterval)
	v.SetDefault("render.reentrancy_threshold", d.Render.ReentrancyThreshold)

	// Display defaults
	v.SetDefault("display.sinks", d.Display.Sinks)
	v.SetDefault("display.format", d.Display.Format)
	v.SetDefault("display.axis_margin", d.Display.AxisMargin)
	v.SetDefault("display.http_address", d.Display.HTTPAddress)

	// Metrics defaults
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.address", d.Metrics.Address)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.tags", d.Metrics.Tags)
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",

		Network:  GetDefaultNetworkConfig(),
		Pipeline: GetDefaultPipelineConfig(),
		Analysis: GetDefaultAnalysisConfig(),
		Render:   GetDefaultRenderConfig(),
		Display:  GetDefaultDisplayConfig(),
		Metrics:  GetDefaultMetricsConfig(),
	}
}

// GetDefaultNetworkConfig returns default socket settings
func GetDefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Address:    "0.0.0.0",
		Port:       DefaultPort,
		ReadBuffer: DefaultReadBuffer,
		ReuseAddr:  true,
	}
}

// GetDefaultPipelineConfig returns the pipeline switches of the full-featured
// variant: no splitting, raw amplitudes, spectrum and histogram on
func GetDefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SplitExponent:    0,
		Normalize:        false,
		IncludeSpectrum:  true,
		IncludeHistogram: true,
	}
}

// GetDefaultAnalysisConfig returns default analysis settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		TopK:       DefaultTopK,
		FFTEngine:  "radix2",
		OneSided:   false,
		SampleRate: 0,
		Workers:    0,
	}
}

// GetDefaultRenderConfig returns default render settings
func GetDefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TickInterval:        DefaultTickInterval,
		ReentrancyThreshold: DefaultReentrancyThreshold,
	}
}

// GetDefaultDisplayConfig returns default display settings
func GetDefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Sinks:       []string{"console"},
		Format:      "text",
		AxisMargin:  DefaultAxisMargin,
		HTTPAddress: "127.0.0.1:8080",
	}
}

// GetDefaultMetricsConfig returns default StatsD settings
func GetDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Address:   "127.0.0.1:8125",
		Namespace: "udpscope.",
		Tags:      []string{},
	}
}
