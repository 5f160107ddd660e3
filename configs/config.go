package configs

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Socket the ingest loop listens on
	Network NetworkConfig `mapstructure:"network" yaml:"network"`

	// Frame handling between ingest and render
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`

	// Spectrum and histogram settings
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`

	// Render tick cadence and overrun guard
	Render RenderConfig `mapstructure:"render" yaml:"render"`

	// Display sinks
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// StatsD metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// NetworkConfig contains listening socket settings
type NetworkConfig struct {
	Address    string `mapstructure:"address" yaml:"address"`
	Port       int    `mapstructure:"port" yaml:"port"`
	ReadBuffer int    `mapstructure:"read_buffer" yaml:"read_buffer"`
	ReuseAddr  bool   `mapstructure:"reuse_addr" yaml:"reuse_addr"`
}

// ListenAddress returns host:port for the ingest socket
func (n NetworkConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", n.Address, n.Port)
}

// PipelineConfig contains the unified pipeline switches
type PipelineConfig struct {
	SplitExponent    int  `mapstructure:"split_exponent" yaml:"split_exponent"`
	Normalize        bool `mapstructure:"normalize" yaml:"normalize"`
	IncludeSpectrum  bool `mapstructure:"include_spectrum" yaml:"include_spectrum"`
	IncludeHistogram bool `mapstructure:"include_histogram" yaml:"include_histogram"`
}

// AnalysisConfig contains spectral analysis settings
type AnalysisConfig struct {
	TopK       int     `mapstructure:"top_k" yaml:"top_k"`
	FFTEngine  string  `mapstructure:"fft_engine" yaml:"fft_engine"`
	OneSided   bool    `mapstructure:"one_sided" yaml:"one_sided"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	Workers    int     `mapstructure:"workers" yaml:"workers"`
}

// RenderConfig contains render tick settings
type RenderConfig struct {
	TickInterval        time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	ReentrancyThreshold int           `mapstructure:"reentrancy_threshold" yaml:"reentrancy_threshold"`
}

// DisplayConfig contains display sink settings
type DisplayConfig struct {
	Sinks       []string `mapstructure:"sinks" yaml:"sinks"`
	Format      string   `mapstructure:"format" yaml:"format"`
	AxisMargin  float64  `mapstructure:"axis_margin" yaml:"axis_margin"`
	HTTPAddress string   `mapstructure:"http_address" yaml:"http_address"`
}

// MetricsConfig contains StatsD settings
type MetricsConfig struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	Address   string   `mapstructure:"address" yaml:"address"`
	Namespace string   `mapstructure:"namespace" yaml:"namespace"`
	Tags      []string `mapstructure:"tags" yaml:"tags"`
}

// Known option values
var (
	FFTEngines     = []string{"radix2", "dsp", "gonum"}
	DisplayFormats = []string{"text", "json", "yaml", "table"}
	DisplaySinks   = []string{"console", "websocket"}
)

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom loads configuration from v
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Network.Port < 1 || config.Network.Port > 65535 {
		return fmt.Errorf("network port must be between 1 and 65535, got %d", config.Network.Port)
	}

	if config.Network.ReadBuffer < MaxDatagramSize {
		return fmt.Errorf("network read buffer must be at least %d bytes, got %d",
			MaxDatagramSize, config.Network.ReadBuffer)
	}

	if config.Pipeline.SplitExponent < 0 || config.Pipeline.SplitExponent > 16 {
		return fmt.Errorf("split exponent must be between 0 and 16")
	}

	if config.Analysis.TopK < 0 {
		return fmt.Errorf("top-k cannot be negative")
	}

	if !slices.Contains(FFTEngines, strings.ToLower(config.Analysis.FFTEngine)) {
		return fmt.Errorf("unknown fft engine %q", config.Analysis.FFTEngine)
	}

	if config.Analysis.SampleRate < 0 {
		return fmt.Errorf("sample rate cannot be negative")
	}

	if config.Render.TickInterval <= 0 {
		return fmt.Errorf("render tick interval must be positive")
	}

	if config.Render.ReentrancyThreshold < 1 {
		return fmt.Errorf("re-entrancy threshold must be at least 1")
	}

	if config.Display.AxisMargin < 0 {
		return fmt.Errorf("axis margin cannot be negative")
	}

	if !slices.Contains(DisplayFormats, config.Display.Format) {
		return fmt.Errorf("unknown display format %q", config.Display.Format)
	}

	for _, sink := range config.Display.Sinks {
		if !slices.Contains(DisplaySinks, sink) {
			return fmt.Errorf("unknown display sink %q", sink)
		}
	}

	if config.Metrics.Enabled && config.Metrics.Address == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}

	return nil
}

// MarshalYAML writes the tick interval in duration notation so generated
// files stay readable
func (r RenderConfig) MarshalYAML() (any, error) {
	return struct {
		TickInterval        string `yaml:"tick_interval"`
		ReentrancyThreshold int    `yaml:"reentrancy_threshold"`
	}{
		TickInterval:        r.TickInterval.String(),
		ReentrancyThreshold: r.ReentrancyThreshold,
	}, nil
}
