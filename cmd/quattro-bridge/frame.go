// cmd/quattro-bridge/frame.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/quattro-bridge/internal/acquirer"
	"github.com/tamzrod/quattro-bridge/internal/amplifier"
)

var showTeardown bool

var frameCmd = &cobra.Command{
	Use:   "frame <config.yaml>",
	Short: "Print the configuration frame one byte per row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if showTeardown {
			fmt.Fprint(out, amplifier.TeardownFrame().String())
			return nil
		}

		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		acq, err := acquirer.AcquisitionFromConfig(cfg.Bridge.Acquisition)
		if err != nil {
			return err
		}
		g, err := amplifier.ResolveGeometry(acq.Inputs())
		if err != nil {
			return err
		}
		f, err := amplifier.EncodeFrame(acq, g)
		if err != nil {
			return err
		}

		plan := amplifier.BuildPlan(acq, g)
		fmt.Fprintf(out, "tier=%d raw_channels=%d samples_per_block=%d block_bytes=%d channels=%d\n",
			g.Tier, g.RawChannels, g.SamplesPerBlock, g.BlockBytes(), plan.Len())
		fmt.Fprint(out, f.String())
		return nil
	},
}

func init() {
	frameCmd.Flags().BoolVar(&showTeardown, "teardown", false, "print the disarm frame instead")
}
