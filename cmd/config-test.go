package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/app"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test [path]",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration, validates it and displays every value
to help verify that your YAML configuration is being parsed correctly.

Examples:
  # Test with the default config search path
  udpscope config-test

  # Test a specific file
  udpscope config-test /path/to/udpscope.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigTest,
}

var upper = cases.Upper(language.English)

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("UDP OSCILLOSCOPE CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	var (
		config *configs.Config
		err    error
		source = viper.ConfigFileUsed()
	)
	if len(args) == 1 {
		source = args[0]
		config, err = app.ValidateConfigFile(source)
	} else {
		config, err = configs.LoadConfig()
		if err == nil {
			err = configs.ValidateConfig(config)
		}
	}
	if err != nil {
		return fmt.Errorf("configuration check failed: %w", err)
	}
	if source == "" {
		source = "(defaults only)"
	}

	printSection("application settings")
	printKeyValue("Config File", source)
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)

	printSection("network")
	printKeyValue("Listen Address", config.Network.ListenAddress())
	printKeyValue("Read Buffer", fmt.Sprintf("%d bytes", config.Network.ReadBuffer))
	printKeyValue("Reuse Address", fmt.Sprintf("%t", config.Network.ReuseAddr))

	printSection("pipeline")
	printKeyValue("Split Exponent", fmt.Sprintf("%d (%d frames per datagram)", config.Pipeline.SplitExponent, 1<<config.Pipeline.SplitExponent))
	printKeyValue("Normalize", fmt.Sprintf("%t", config.Pipeline.Normalize))
	printKeyValue("Include Spectrum", fmt.Sprintf("%t", config.Pipeline.IncludeSpectrum))
	printKeyValue("Include Histogram", fmt.Sprintf("%t", config.Pipeline.IncludeHistogram))

	printSection("analysis")
	printKeyValue("Top K", fmt.Sprintf("%d", config.Analysis.TopK))
	printKeyValue("FFT Engine", config.Analysis.FFTEngine)
	printKeyValue("One Sided", fmt.Sprintf("%t", config.Analysis.OneSided))
	if config.Analysis.SampleRate > 0 {
		printKeyValue("Sample Rate", fmt.Sprintf("%.0f Hz", config.Analysis.SampleRate))
	} else {
		printKeyValue("Sample Rate", "unset (peaks labelled by bin)")
	}
	printKeyValue("Workers", workersLabel(config.Analysis.Workers))

	printSection("render")
	printKeyValue("Tick Interval", config.Render.TickInterval.String())
	printKeyValue("Re-entrancy Threshold", fmt.Sprintf("%d", config.Render.ReentrancyThreshold))

	printSection("display")
	printKeyValue("Sinks", strings.Join(config.Display.Sinks, ", "))
	printKeyValue("Format", config.Display.Format)
	printKeyValue("Axis Margin", fmt.Sprintf("%.3f", config.Display.AxisMargin))
	printKeyValue("HTTP Address", config.Display.HTTPAddress)

	printSection("metrics")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	if config.Metrics.Enabled {
		printKeyValue("Address", config.Metrics.Address)
		printKeyValue("Namespace", config.Metrics.Namespace)
		printKeyValue("Tags", fmt.Sprintf("(%d) %v", len(config.Metrics.Tags), config.Metrics.Tags))
	}

	fmt.Println()
	fmt.Println("Configuration is valid")
	return nil
}

func workersLabel(workers int) string {
	if workers < 1 {
		return "GOMAXPROCS"
	}
	return fmt.Sprintf("%d", workers)
}

func printSection(title string) {
	title = upper.String(title)
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}
