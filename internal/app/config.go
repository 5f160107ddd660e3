package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Unknown6656/UDPOscilloscope/configs"
)

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	data, err := yaml.Marshal(configs.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateConfigFile loads configFile on top of the defaults and validates the result
func ValidateConfigFile(configFile string) (*configs.Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", configFile)
	}

	v := viper.New()
	configs.SetDefaults(v)
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config, err := configs.LoadConfigFrom(v)
	if err != nil {
		return nil, err
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}
