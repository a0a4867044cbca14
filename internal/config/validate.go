// internal/config/validate.go
package config

import (
	"errors"
	"fmt"

	"github.com/tamzrod/quattro-bridge/internal/amplifier"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	b := cfg.Bridge

	if b.StreamName == "" {
		return errors.New("stream_name must not be empty")
	}
	if b.RestartDelayMs < 0 {
		return fmt.Errorf("restart_delay_ms must be >= 0 (got %d)", b.RestartDelayMs)
	}

	// ------------------------------------------------------------
	// AMPLIFIER ENDPOINT
	// ------------------------------------------------------------

	if b.Amplifier.Host == "" {
		return errors.New("amplifier: host must not be empty")
	}
	if b.Amplifier.Port < 1 || b.Amplifier.Port > 65535 {
		return fmt.Errorf("amplifier: port %d out of range", b.Amplifier.Port)
	}
	if b.Amplifier.ConnectTimeoutMs < 0 || b.Amplifier.ReadTimeoutMs < 0 {
		return errors.New("amplifier: timeouts must be >= 0")
	}

	// ------------------------------------------------------------
	// ACQUISITION
	// ------------------------------------------------------------

	if err := validateAcquisition(b.Acquisition); err != nil {
		return fmt.Errorf("acquisition: %w", err)
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	if ws := b.Sinks.Websocket; ws != nil {
		if ws.Listen == "" {
			return errors.New("sinks.websocket: listen must not be empty")
		}
		if ws.ClientBuffer < 0 {
			return fmt.Errorf("sinks.websocket: client_buffer must be >= 0 (got %d)", ws.ClientBuffer)
		}
	}
	if rec := b.Sinks.Record; rec != nil && rec.Dir == "" {
		return errors.New("sinks.record: dir must not be empty")
	}

	// ------------------------------------------------------------
	// BRIDGE STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if st := b.Status; st != nil {
		if st.Endpoint == "" {
			return errors.New("status: endpoint must not be empty")
		}
		if st.TimeoutMs < 0 {
			return fmt.Errorf("status: timeout_ms must be >= 0 (got %d)", st.TimeoutMs)
		}
		// device_name sanity (ASCII only)
		for i := 0; i < len(st.DeviceName); i++ {
			if st.DeviceName[i] > 0x7F {
				return errors.New("status: device_name must contain ASCII characters only")
			}
		}
	}

	return nil
}

func validateAcquisition(a AcquisitionConfig) error {
	if _, err := amplifier.IndexOf("sample_rate", a.SampleRate, amplifier.SampleRates); err != nil {
		return err
	}

	if len(a.In) > amplifier.NumInBlocks {
		return fmt.Errorf("at most %d in blocks (got %d)", amplifier.NumInBlocks, len(a.In))
	}
	if len(a.Multin) > amplifier.NumMultinBlocks {
		return fmt.Errorf("at most %d multin blocks (got %d)", amplifier.NumMultinBlocks, len(a.Multin))
	}

	for i, blk := range a.In {
		if err := validateBlock(blk); err != nil {
			return fmt.Errorf("in%d: %w", i+1, err)
		}
	}
	for i, blk := range a.Multin {
		if err := validateBlock(blk); err != nil {
			return fmt.Errorf("multin%d: %w", i+1, err)
		}
	}

	conn, err := amplifier.ParseConnector(a.AnalogOut.Connector)
	if err != nil {
		return fmt.Errorf("analog_out: %w", err)
	}
	if a.AnalogOut.Channel < 1 || int(a.AnalogOut.Channel) > conn.Channels() {
		return fmt.Errorf(
			"analog_out: channel %d out of range 1-%d for %s",
			a.AnalogOut.Channel, conn.Channels(), conn,
		)
	}
	if _, err := amplifier.IndexOf("analog_out gain", a.AnalogOut.Gain, amplifier.OutputGains); err != nil {
		return fmt.Errorf("analog_out: %w", err)
	}

	return nil
}

func validateBlock(b BlockConfig) error {
	mode, err := amplifier.ParseInputMode(b.Mode)
	if err != nil {
		return err
	}
	// Bipolar needs adapter hardware the bridge cannot detect.
	if mode == amplifier.Bipolar {
		return fmt.Errorf("mode %q not supported", b.Mode)
	}
	if _, err := amplifier.IndexOf("high_pass", b.HighPass, amplifier.HighPasses); err != nil {
		return err
	}
	if _, err := amplifier.IndexOf("low_pass", b.LowPass, amplifier.LowPasses); err != nil {
		return err
	}
	return nil
}
