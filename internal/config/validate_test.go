// internal/config/validate_test.go
package config

import "testing"

// helper to build a valid config quickly
func bridge(blocks ...BlockConfig) *Config {
	cfg := &Config{
		Bridge: BridgeConfig{
			Acquisition: AcquisitionConfig{In: blocks},
			Sinks: SinksConfig{
				Websocket: &WebsocketConfig{Listen: ":8765"},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func active() BlockConfig {
	return BlockConfig{Active: true}
}

// ---- tests ----

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Validate(bridge(active())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_SampleRateRejected(t *testing.T) {
	cfg := bridge(active())
	cfg.Bridge.Acquisition.SampleRate = 4096

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected sample rate error, got nil")
	}
}

func TestValidate_BipolarRejected(t *testing.T) {
	cfg := bridge(BlockConfig{Active: true, Mode: "bipolar"})

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected mode error, got nil")
	}
}

func TestValidate_DifferentialAllowed(t *testing.T) {
	cfg := bridge(BlockConfig{Active: true, Mode: "differential"})

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FilterValuesRejected(t *testing.T) {
	hp := bridge(BlockConfig{Active: true, HighPass: 50})
	if err := Validate(hp); err == nil {
		t.Fatalf("expected high_pass error, got nil")
	}

	lp := bridge(BlockConfig{Active: true, LowPass: 1000})
	if err := Validate(lp); err == nil {
		t.Fatalf("expected low_pass error, got nil")
	}
}

func TestValidate_TooManyBlocks(t *testing.T) {
	in := make([]BlockConfig, 9)
	if err := Validate(bridge(in...)); err == nil {
		t.Fatalf("expected in block count error, got nil")
	}

	cfg := bridge(active())
	cfg.Bridge.Acquisition.Multin = make([]BlockConfig, 5)
	ApplyDefaults(cfg)
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected multin block count error, got nil")
	}
}

func TestValidate_AnalogOutChannelRange(t *testing.T) {
	cfg := bridge(active())

	cfg.Bridge.Acquisition.AnalogOut.Connector = "in3"
	cfg.Bridge.Acquisition.AnalogOut.Channel = 17
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected channel range error for in3, got nil")
	}

	cfg.Bridge.Acquisition.AnalogOut.Connector = "multin2"
	cfg.Bridge.Acquisition.AnalogOut.Channel = 64
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Bridge.Acquisition.AnalogOut.Connector = "aux"
	cfg.Bridge.Acquisition.AnalogOut.Channel = 16
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_AnalogOutGainAndConnector(t *testing.T) {
	cfg := bridge(active())
	cfg.Bridge.Acquisition.AnalogOut.Gain = 8
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected gain error, got nil")
	}

	cfg = bridge(active())
	cfg.Bridge.Acquisition.AnalogOut.Connector = "multin5"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected connector error, got nil")
	}
}

func TestValidate_StatusDeviceNameASCII(t *testing.T) {
	cfg := bridge(active())
	cfg.Bridge.Status = &StatusConfig{Endpoint: "127.0.0.1:502", DeviceName: "QUATTRO-µ"}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected device_name error, got nil")
	}
}

func TestValidate_StatusRequiresEndpoint(t *testing.T) {
	cfg := bridge(active())
	cfg.Bridge.Status = &StatusConfig{DeviceName: "QUATTRO"}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected endpoint error, got nil")
	}
}

func TestValidate_SinkSettings(t *testing.T) {
	cfg := bridge(active())
	cfg.Bridge.Sinks.Websocket.Listen = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected listen error, got nil")
	}

	cfg = bridge(active())
	cfg.Bridge.Sinks.Record = &RecordConfig{}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected record dir error, got nil")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := bridge(BlockConfig{Active: true, LowPass: 4400})
	cfg.Bridge.Acquisition.SampleRate = 512

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bridge.Acquisition.In[0].LowPass != 4400 {
		t.Fatalf("validate mutated low_pass: %d", cfg.Bridge.Acquisition.In[0].LowPass)
	}
}
