package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Unknown6656/UDPOscilloscope/internal/app"
)

var configInitForce bool

// configInitCmd writes an example configuration file
var configInitCmd = &cobra.Command{
	Use:   "config-init [path]",
	Short: "Write an example configuration file",
	Long: `Write the default configuration as YAML.

Without a path the file is written to $HOME/.config/udpscope/udpscope.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := getConfigFilePath()
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := app.GenerateExampleConfig(path); err != nil {
		return err
	}

	fmt.Printf("Example configuration written to: %s\n", path)
	return nil
}

func getConfigFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "udpscope", "udpscope.yaml")
}
