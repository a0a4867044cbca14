// internal/config/load.go
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---- defaults ----

const (
	DefaultStreamName       = "quattrocento"
	DefaultHost             = "169.254.1.10"
	DefaultPort             = 23456
	DefaultConnectTimeoutMs = 1000
	DefaultReadTimeoutMs    = 10000
	DefaultSampleRate       = 2048
	DefaultMode             = "monopolar"
	DefaultLowPass          = 900
	DefaultConnector        = "in1"
)

// Load reads a YAML file, rejects unknown keys and applies defaults.
// It does not validate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes and applies defaults.
func Parse(raw []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills every unset field with the amplifier's factory setting.
func ApplyDefaults(cfg *Config) {
	b := &cfg.Bridge

	if b.StreamName == "" {
		b.StreamName = DefaultStreamName
	}

	if b.Amplifier.Host == "" {
		b.Amplifier.Host = DefaultHost
	}
	if b.Amplifier.Port == 0 {
		b.Amplifier.Port = DefaultPort
	}
	if b.Amplifier.ConnectTimeoutMs == 0 {
		b.Amplifier.ConnectTimeoutMs = DefaultConnectTimeoutMs
	}
	if b.Amplifier.ReadTimeoutMs == 0 {
		b.Amplifier.ReadTimeoutMs = DefaultReadTimeoutMs
	}

	a := &b.Acquisition
	if a.SampleRate == 0 {
		a.SampleRate = DefaultSampleRate
	}
	defaultBlocks(a.In)
	defaultBlocks(a.Multin)

	if a.AnalogOut.Connector == "" {
		a.AnalogOut.Connector = DefaultConnector
	}
	if a.AnalogOut.Channel == 0 {
		a.AnalogOut.Channel = 1
	}
	if a.AnalogOut.Gain == 0 {
		a.AnalogOut.Gain = 1
	}
}

// high_pass 0 is itself the default (0.7 Hz); low_pass 0 is never valid.
func defaultBlocks(blocks []BlockConfig) {
	for i := range blocks {
		if blocks[i].Mode == "" {
			blocks[i].Mode = DefaultMode
		}
		if blocks[i].LowPass == 0 {
			blocks[i].LowPass = DefaultLowPass
		}
	}
}
