package cmd

import (
	"fmt"
	"os"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Unknown6656/UDPOscilloscope/configs"
	"github.com/Unknown6656/UDPOscilloscope/internal/app"
	"github.com/Unknown6656/UDPOscilloscope/internal/display"
)

var analyzeStats bool

// analyzeCmd runs a captured datagram through the pipeline offline
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a captured datagram file",
	Long: `Decode and analyze a file holding the raw bytes of one datagram.

The file goes through the same split, decode, histogram and spectrum steps as
live traffic and every resulting frame is written in the display format.

Examples:
  # Print the text summary for a capture
  udpscope analyze capture.bin

  # Split into 8 frames and emit YAML
  udpscope analyze --split 3 --format yaml capture.bin`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int("split", 0, "split the capture into 2^k equal frames")
	analyzeCmd.Flags().String("format", "text", "display format (text, json, yaml, table)")
	analyzeCmd.Flags().Bool("normalize", false, "divide amplitudes by 65535")
	analyzeCmd.Flags().BoolVar(&analyzeStats, "stats", false, "print frame counters after the analysis")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("split") {
		config.Pipeline.SplitExponent, _ = cmd.Flags().GetInt("split")
	}
	if cmd.Flags().Changed("format") {
		config.Display.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("normalize") {
		config.Pipeline.Normalize, _ = cmd.Flags().GetBool("normalize")
	}

	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	snapshot, err := app.AnalyzeFile(args[0], config, os.Stdout, logging.NewDefaultLogger())
	if err != nil {
		return err
	}

	if !analyzeStats {
		return nil
	}

	formatted, err := display.NewFormatter(viper.GetString("output_format")).Format(snapshot, true)
	if err != nil {
		return fmt.Errorf("failed to format statistics: %w", err)
	}
	_, err = os.Stdout.Write(formatted)
	return err
}
