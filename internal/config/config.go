// internal/config/config.go
package config

import (
	"net"
	"strconv"
	"time"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	StreamName     string            `yaml:"stream_name"`
	Amplifier      AmplifierConfig   `yaml:"amplifier"`
	Acquisition    AcquisitionConfig `yaml:"acquisition"`
	RestartDelayMs int               `yaml:"restart_delay_ms"` // 0 = stop on fault
	Sinks          SinksConfig       `yaml:"sinks"`

	// Bridge status block (optional, opt-in)
	Status *StatusConfig `yaml:"status"`
}

// ---- AMPLIFIER ----

type AmplifierConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms"`
}

// Endpoint returns host:port.
func (a AmplifierConfig) Endpoint() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

func (a AmplifierConfig) ConnectTimeout() time.Duration {
	return time.Duration(a.ConnectTimeoutMs) * time.Millisecond
}

func (a AmplifierConfig) ReadTimeout() time.Duration {
	return time.Duration(a.ReadTimeoutMs) * time.Millisecond
}

// ---- ACQUISITION ----

type AcquisitionConfig struct {
	SampleRate uint16          `yaml:"sample_rate"`
	In         []BlockConfig   `yaml:"in"`     // up to 8, position = connector
	Multin     []BlockConfig   `yaml:"multin"` // up to 4, position = connector
	Aux        AuxConfig       `yaml:"aux"`
	AnalogOut  AnalogOutConfig `yaml:"analog_out"`
}

type BlockConfig struct {
	Active   bool   `yaml:"active"`
	Mode     string `yaml:"mode"`
	HighPass uint16 `yaml:"high_pass"` // 0 = 0.7 Hz
	LowPass  uint16 `yaml:"low_pass"`
}

type AuxConfig struct {
	Active bool `yaml:"active"`
}

type AnalogOutConfig struct {
	Connector string `yaml:"connector"`
	Channel   uint16 `yaml:"channel"`
	Gain      uint16 `yaml:"gain"`
}

// ---- SINKS ----

type SinksConfig struct {
	Websocket *WebsocketConfig `yaml:"websocket"`
	Record    *RecordConfig    `yaml:"record"`
}

type WebsocketConfig struct {
	Listen       string `yaml:"listen"`
	Path         string `yaml:"path"`
	ClientBuffer int    `yaml:"client_buffer"`
}

type RecordConfig struct {
	Dir string `yaml:"dir"`
}

// ---- STATUS ----

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

func (b BridgeConfig) RestartDelay() time.Duration {
	return time.Duration(b.RestartDelayMs) * time.Millisecond
}
