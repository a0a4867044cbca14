// cmd/quattro-bridge/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamzrod/quattro-bridge/internal/config"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quattro-bridge",
	Short: "Stream a Quattrocento amplifier to live and recorded sinks",
	Long: `quattro-bridge arms a Quattrocento amplifier over TCP, rescales every
block to microvolts and publishes the selected channels as one multiplexed
float32 stream.

Commands:
  run    acquire until interrupted
  frame  print the configuration frame a config would send`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(frameCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig runs the load -> validate -> normalize pipeline.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}
