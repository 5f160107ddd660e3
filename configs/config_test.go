package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDefaultConfig(t *testing.T) {
	config, err := LoadConfigFrom(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, 31488, config.Network.Port)
	assert.Equal(t, 0, config.Pipeline.SplitExponent)
	assert.Equal(t, 20, config.Analysis.TopK)
	assert.False(t, config.Analysis.OneSided)
	assert.Equal(t, 24, config.Render.ReentrancyThreshold)
	assert.Equal(t, 20*time.Millisecond, config.Render.TickInterval)
	assert.Equal(t, 0.03, config.Display.AxisMargin)
	assert.Equal(t, []string{"console"}, config.Display.Sinks)
	assert.NoError(t, ValidateConfig(config))
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "udpscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network:
  port: 4000
pipeline:
  split_exponent: 2
  normalize: true
analysis:
  top_k: 5
  fft_engine: dsp
render:
  tick_interval: 50ms
  reentrancy_threshold: 3
`), 0o644))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadConfigFrom(v)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(config))

	assert.Equal(t, 4000, config.Network.Port)
	assert.Equal(t, "0.0.0.0:4000", config.Network.ListenAddress())
	assert.Equal(t, 2, config.Pipeline.SplitExponent)
	assert.True(t, config.Pipeline.Normalize)
	assert.True(t, config.Pipeline.IncludeSpectrum)
	assert.Equal(t, 5, config.Analysis.TopK)
	assert.Equal(t, "dsp", config.Analysis.FFTEngine)
	assert.Equal(t, 50*time.Millisecond, config.Render.TickInterval)
	assert.Equal(t, 3, config.Render.ReentrancyThreshold)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port zero", func(c *Config) { c.Network.Port = 0 }},
		{"port too large", func(c *Config) { c.Network.Port = 70000 }},
		{"tiny read buffer", func(c *Config) { c.Network.ReadBuffer = 1 }},
		{"read buffer below max datagram", func(c *Config) { c.Network.ReadBuffer = MaxDatagramSize - 1 }},
		{"negative split", func(c *Config) { c.Pipeline.SplitExponent = -1 }},
		{"huge split", func(c *Config) { c.Pipeline.SplitExponent = 17 }},
		{"negative top-k", func(c *Config) { c.Analysis.TopK = -1 }},
		{"unknown engine", func(c *Config) { c.Analysis.FFTEngine = "fftw" }},
		{"negative sample rate", func(c *Config) { c.Analysis.SampleRate = -1 }},
		{"zero tick", func(c *Config) { c.Render.TickInterval = 0 }},
		{"zero threshold", func(c *Config) { c.Render.ReentrancyThreshold = 0 }},
		{"negative margin", func(c *Config) { c.Display.AxisMargin = -0.1 }},
		{"unknown format", func(c *Config) { c.Display.Format = "xml" }},
		{"unknown sink", func(c *Config) { c.Display.Sinks = []string{"window"} }},
		{"metrics without address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Address = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			assert.Error(t, ValidateConfig(config))
		})
	}
}

func TestLiveStoreNotifies(t *testing.T) {
	initial := GetDefaultConfig().Settings()
	live := NewLive(initial)

	var seenOld, seenNew Settings
	calls := 0
	live.OnChange(func(old, updated Settings) {
		calls++
		seenOld, seenNew = old, updated
	})

	next := initial
	next.TopK = 7
	live.Store(next)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 20, seenOld.TopK)
	assert.Equal(t, 7, seenNew.TopK)
	assert.Equal(t, 7, live.Load().TopK)
}

func TestLiveReload(t *testing.T) {
	v := newTestViper(t)
	config, err := LoadConfigFrom(v)
	require.NoError(t, err)
	live := NewLive(config.Settings())

	v.Set("render.reentrancy_threshold", 8)
	require.NoError(t, live.Reload(v))
	assert.Equal(t, 8, live.Load().ReentrancyThreshold)

	v.Set("render.reentrancy_threshold", 0)
	assert.Error(t, live.Reload(v))
	assert.Equal(t, 8, live.Load().ReentrancyThreshold)
}
