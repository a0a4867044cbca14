// internal/acquirer/builder.go
package acquirer

import (
	"fmt"

	"github.com/tamzrod/quattro-bridge/internal/amplifier"
	"github.com/tamzrod/quattro-bridge/internal/amplifier/tcp"
	cfg "github.com/tamzrod/quattro-bridge/internal/config"
	"github.com/tamzrod/quattro-bridge/internal/stream"
)

// Build constructs an Acquirer wired to the TCP session.
// Config must already be validated and normalized.
func Build(b cfg.BridgeConfig, sink stream.Sink, onStreaming func()) (*Acquirer, error) {
	acq, err := AcquisitionFromConfig(b.Acquisition)
	if err != nil {
		return nil, err
	}

	endpoint := b.Amplifier.Endpoint()
	connectTimeout := b.Amplifier.ConnectTimeout()
	readTimeout := b.Amplifier.ReadTimeout()

	// opener: ONE connect attempt per session
	open := func(frame amplifier.Frame, g amplifier.Geometry) (Session, error) {
		return tcp.Open(tcp.Options{
			Endpoint:       endpoint,
			ConnectTimeout: connectTimeout,
			ReadTimeout:    readTimeout,
			BlockBytes:     g.BlockBytes(),
		}, frame)
	}

	return New(Config{
		StreamName:  b.StreamName,
		Acquisition: acq,
		OnStreaming: onStreaming,
	}, open, sink)
}

// AcquisitionFromConfig maps the YAML acquisition section onto the
// amplifier's value type. Blocks not listed keep the factory setting
// and stay inactive.
func AcquisitionFromConfig(c cfg.AcquisitionConfig) (amplifier.AcquisitionConfig, error) {
	acq := amplifier.DefaultAcquisitionConfig()
	acq.SampleRate = c.SampleRate
	acq.Aux = c.Aux.Active

	if len(c.In) > amplifier.NumInBlocks || len(c.Multin) > amplifier.NumMultinBlocks {
		return acq, fmt.Errorf("acquirer: too many blocks (in=%d multin=%d)", len(c.In), len(c.Multin))
	}

	for i, blk := range c.In {
		s, err := blockSetting(blk)
		if err != nil {
			return acq, fmt.Errorf("in%d: %w", i+1, err)
		}
		acq.In[i] = s
	}
	for i, blk := range c.Multin {
		s, err := blockSetting(blk)
		if err != nil {
			return acq, fmt.Errorf("multin%d: %w", i+1, err)
		}
		acq.Multin[i] = s
	}

	conn, err := amplifier.ParseConnector(c.AnalogOut.Connector)
	if err != nil {
		return acq, fmt.Errorf("analog_out: %w", err)
	}
	acq.AnalogOut = amplifier.AnalogOut{
		Connector: conn,
		Channel:   c.AnalogOut.Channel,
		Gain:      c.AnalogOut.Gain,
	}

	return acq, nil
}

func blockSetting(b cfg.BlockConfig) (amplifier.BlockSetting, error) {
	mode, err := amplifier.ParseInputMode(b.Mode)
	if err != nil {
		return amplifier.BlockSetting{}, err
	}
	return amplifier.BlockSetting{
		Active:   b.Active,
		Mode:     mode,
		HighPass: b.HighPass,
		LowPass:  b.LowPass,
	}, nil
}
