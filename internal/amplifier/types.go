// internal/amplifier/types.go
package amplifier

import "fmt"

// ---- BLOCK GEOMETRY (hardware, not configurable) ----

const (
	NumInBlocks     = 8
	NumMultinBlocks = 4

	InBlockChannels     = 16
	MultinBlockChannels = 64
	AuxBlockChannels    = 16

	// AccessoryChannels are the sample counter and trigger, always appended.
	AccessoryChannels = 2

	// DefaultPort is the amplifier's fixed TCP port.
	DefaultPort = 23456
)

// InputMode is the front-end wiring of an IN/MULTIN block.
type InputMode uint8

const (
	Monopolar InputMode = iota
	Differential
	// Bipolar is encodable but never produced by the config layer.
	Bipolar
)

func (m InputMode) String() string {
	switch m {
	case Monopolar:
		return "monopolar"
	case Differential:
		return "differential"
	case Bipolar:
		return "bipolar"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseInputMode maps a config string to an InputMode.
func ParseInputMode(s string) (InputMode, error) {
	switch s {
	case "monopolar":
		return Monopolar, nil
	case "differential":
		return Differential, nil
	case "bipolar":
		return Bipolar, nil
	}
	return 0, newError(KindUnsupportedValue, "input mode %q", s)
}

// Connector selects the analog output source.
type Connector uint8

const (
	In1 Connector = iota
	In2
	In3
	In4
	In5
	In6
	In7
	In8
	Multin1
	Multin2
	Multin3
	Multin4
	AuxIn
)

func (c Connector) String() string {
	switch {
	case c <= In8:
		return fmt.Sprintf("in%d", int(c)+1)
	case c <= Multin4:
		return fmt.Sprintf("multin%d", int(c-Multin1)+1)
	case c == AuxIn:
		return "aux"
	default:
		return fmt.Sprintf("connector(%d)", uint8(c))
	}
}

// Channels returns how many source channels the connector carries.
func (c Connector) Channels() int {
	switch {
	case c <= In8:
		return InBlockChannels
	case c <= Multin4:
		return MultinBlockChannels
	case c == AuxIn:
		return AuxBlockChannels
	default:
		return 0
	}
}

// ParseConnector maps "in1".."in8", "multin1".."multin4" and "aux".
func ParseConnector(s string) (Connector, error) {
	for c := In1; c <= AuxIn; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, newError(KindUnsupportedValue, "connector %q", s)
}

// BlockSetting is the per-block front-end configuration.
type BlockSetting struct {
	Active   bool
	Mode     InputMode
	HighPass uint16 // 0 (=0.7 Hz), 10, 100, 200
	LowPass  uint16 // 130, 500, 900, 4400
}

// AnalogOut routes one input channel to the amplifier's analog output.
type AnalogOut struct {
	Connector Connector
	Channel   uint16 // 1-based
	Gain      uint16 // 1, 2, 4, 16
}

// AcquisitionConfig is built once per session start and never mutated
// during acquisition.
type AcquisitionConfig struct {
	SampleRate uint16 // 512, 2048, 5120, 10240

	In     [NumInBlocks]BlockSetting
	Multin [NumMultinBlocks]BlockSetting
	Aux    bool

	AnalogOut AnalogOut
}

// Inputs is the enabled-block view consumed by ResolveGeometry.
type Inputs struct {
	In     [NumInBlocks]bool
	Multin [NumMultinBlocks]bool
	Aux    bool
}

// Inputs extracts which blocks are enabled.
func (c AcquisitionConfig) Inputs() Inputs {
	var in Inputs
	for i := range c.In {
		in.In[i] = c.In[i].Active
	}
	for i := range c.Multin {
		in.Multin[i] = c.Multin[i].Active
	}
	in.Aux = c.Aux
	return in
}

// DefaultBlockSetting is the front-end setting for an unconfigured block:
// monopolar, 0.7 Hz high pass, 900 Hz low pass, inactive.
func DefaultBlockSetting() BlockSetting {
	return BlockSetting{Mode: Monopolar, HighPass: 0, LowPass: 900}
}

// DefaultAcquisitionConfig is 2048 Hz with no block enabled and the
// analog output on IN1 channel 1 at gain 1.
func DefaultAcquisitionConfig() AcquisitionConfig {
	c := AcquisitionConfig{
		SampleRate: 2048,
		AnalogOut:  AnalogOut{Connector: In1, Channel: 1, Gain: 1},
	}
	for i := range c.In {
		c.In[i] = DefaultBlockSetting()
	}
	for i := range c.Multin {
		c.Multin[i] = DefaultBlockSetting()
	}
	return c
}
