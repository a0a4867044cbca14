// cmd/quattro-bridge/run.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/quattro-bridge/internal/acquirer"
	"github.com/tamzrod/quattro-bridge/internal/config"
	"github.com/tamzrod/quattro-bridge/internal/sink"
	"github.com/tamzrod/quattro-bridge/internal/status"
	smodbus "github.com/tamzrod/quattro-bridge/internal/status/modbus"
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Acquire and stream until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runBridge(ctx, cfg.Bridge)
	},
}

// statusPublisher writes tracker transitions when the status block is enabled.
type statusPublisher struct {
	w *status.Writer
}

func (p statusPublisher) publish(s status.Snapshot, changed bool) {
	if p.w == nil || !changed {
		return
	}
	if err := p.w.WriteStatus(s); err != nil {
		log.Printf("status write failed: %v", err)
	}
}

func runBridge(ctx context.Context, b config.BridgeConfig) error {
	// --------------------
	// Sinks
	// --------------------

	out, closeSinks, err := sink.Build(b.Sinks)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSinks(); err != nil {
			log.Printf("sink close failed: %v", err)
		}
	}()

	// --------------------
	// Status block (optional)
	// --------------------

	var pub statusPublisher
	if st := b.Status; st != nil {
		cli, err := smodbus.NewEndpointClient(smodbus.Config{
			Endpoint: st.Endpoint,
			Timeout:  time.Duration(st.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			return err
		}
		defer cli.Close()

		pub.w = status.NewWriter(status.Plan{
			UnitID:     st.UnitID,
			BaseSlot:   st.Slot,
			DeviceName: st.DeviceName,
		}, cli)
	}

	// --------------------
	// Acquirer
	// --------------------

	streaming := make(chan struct{}, 1)
	a, err := acquirer.Build(b, out, func() {
		select {
		case streaming <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	tracker := status.NewTracker()

	// Full block write on start (identity re-assert) if enabled.
	pub.publish(tracker.Snapshot(), true)

	var ctl acquirer.Controller
	w, err := ctl.Start(a)
	if err != nil {
		return err
	}
	done := w.Done()

	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	var restart <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			log.Printf("shutdown requested (stream=%s)", b.StreamName)
			err := ctl.Stop()
			pub.publish(tracker.Stopped())
			return err

		case <-streaming:
			pub.publish(tracker.Streaming())

		case <-done:
			done = nil

			runErr := w.Err()
			if runErr == nil {
				pub.publish(tracker.Stopped())
				return nil
			}

			log.Printf("acquisition failed (stream=%s): %v", b.StreamName, runErr)
			pub.publish(tracker.Failed(status.ErrorCode(runErr)))

			if b.RestartDelayMs == 0 {
				return runErr
			}
			restart = time.After(b.RestartDelay())

		case <-restart:
			restart = nil

			w, err = ctl.Start(a)
			if err != nil {
				return err
			}
			done = w.Done()
			pub.publish(tracker.Restarted())
			log.Printf("acquisition restarted (stream=%s restarts=%d)", b.StreamName, tracker.Snapshot().Restarts)

		case <-secTicker.C:
			// NOTE: seconds_in_error increments on the 1Hz ticker only.
			pub.publish(tracker.Tick())
		}
	}
}
