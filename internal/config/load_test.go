// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `
bridge:
  amplifier:
    host: 10.0.0.5
  acquisition:
    sample_rate: 5120
    in:
      - {active: false}
      - {active: true, mode: differential, high_pass: 10, low_pass: 500}
    multin:
      - {active: true}
    aux: {active: true}
    analog_out: {connector: multin1, channel: 40, gain: 4}
  restart_delay_ms: 2000
  sinks:
    websocket: {listen: ":8765"}
    record: {dir: /tmp/rec}
  status:
    endpoint: 127.0.0.1:502
    unit_id: 3
    slot: 1
    device_name: QUATTRO-01
`

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	b := cfg.Bridge
	require.Equal(t, DefaultStreamName, b.StreamName)
	require.Equal(t, "10.0.0.5:23456", b.Amplifier.Endpoint())
	require.Equal(t, DefaultConnectTimeoutMs, b.Amplifier.ConnectTimeoutMs)
	require.Equal(t, DefaultReadTimeoutMs, b.Amplifier.ReadTimeoutMs)
	require.Equal(t, 2000, b.RestartDelayMs)

	require.Len(t, b.Acquisition.In, 2)
	require.Equal(t, BlockConfig{Active: false, Mode: "monopolar", HighPass: 0, LowPass: 900}, b.Acquisition.In[0])
	require.Equal(t, BlockConfig{Active: true, Mode: "differential", HighPass: 10, LowPass: 500}, b.Acquisition.In[1])
	require.True(t, b.Acquisition.Multin[0].Active)
	require.Equal(t, "monopolar", b.Acquisition.Multin[0].Mode)
	require.True(t, b.Acquisition.Aux.Active)
	require.Equal(t, AnalogOutConfig{Connector: "multin1", Channel: 40, Gain: 4}, b.Acquisition.AnalogOut)

	require.NotNil(t, b.Sinks.Websocket)
	require.Equal(t, "/tmp/rec", b.Sinks.Record.Dir)

	require.NotNil(t, b.Status)
	require.Equal(t, uint8(3), b.Status.UnitID)
	require.Equal(t, uint16(1), b.Status.Slot)

	require.NoError(t, Validate(cfg))
}

func TestParse_EmptyDocumentGetsFactoryDefaults(t *testing.T) {
	cfg, err := Parse([]byte("bridge: {}\n"))
	require.NoError(t, err)

	require.Equal(t, DefaultHost, cfg.Bridge.Amplifier.Host)
	require.Equal(t, DefaultPort, cfg.Bridge.Amplifier.Port)
	require.Equal(t, uint16(DefaultSampleRate), cfg.Bridge.Acquisition.SampleRate)
	require.Equal(t, AnalogOutConfig{Connector: "in1", Channel: 1, Gain: 1}, cfg.Bridge.Acquisition.AnalogOut)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("bridge:\n  stream: x\n"))
	require.Error(t, err)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint16(5120), cfg.Bridge.Acquisition.SampleRate)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
