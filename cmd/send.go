package cmd

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Unknown6656/UDPOscilloscope/internal/testsignal"
)

var (
	sendTarget    string
	sendPattern   string
	sendFrameSize int
	sendCycles    float64
	sendInterval  time.Duration
	sendCount     int
)

// sendCmd emits a synthetic signal to a running scope
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a synthetic test signal",
	Long: `Send generated frames to an oscilloscope over UDP.

Patterns:
  wobble   every byte follows a sine whose rate drifts with the clock
  sine     big-endian 16-bit sine with --cycles periods per frame
  silence  all-zero frames

Examples:
  # Feed a local scope with the wobble pattern
  udpscope send

  # Send 100 sine frames with 8 periods each
  udpscope send --pattern sine --cycles 8 --count 100`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVar(&sendTarget, "target", "", "destination host:port (default 127.0.0.1:<network.port>)")
	sendCmd.Flags().StringVar(&sendPattern, "pattern", testsignal.PatternWobble, "signal pattern (wobble, sine, silence)")
	sendCmd.Flags().IntVar(&sendFrameSize, "frame-size", testsignal.DefaultFrameSize, "frame size in bytes")
	sendCmd.Flags().Float64Var(&sendCycles, "cycles", 4, "sine periods per frame")
	sendCmd.Flags().DurationVar(&sendInterval, "interval", 20*time.Millisecond, "delay between frames")
	sendCmd.Flags().IntVar(&sendCount, "count", 0, "number of frames to send (0 sends until interrupted)")
}

func runSend(cmd *cobra.Command, args []string) error {
	logger := logging.NewDefaultLogger()

	target := sendTarget
	if target == "" {
		target = net.JoinHostPort("127.0.0.1", strconv.Itoa(viper.GetInt("network.port")))
	}

	generator, err := testsignal.NewGenerator(sendPattern, sendFrameSize, sendCycles, viper.GetInt("analysis.workers"))
	if err != nil {
		return err
	}

	sender, err := testsignal.NewSender(target, generator, sendInterval, logger)
	if err != nil {
		return err
	}
	defer sender.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sent, err := sender.Run(ctx, sendCount)
	if err != nil {
		return err
	}

	fmt.Printf("Sent %d frames to %s\n", sent, target)
	return nil
}
