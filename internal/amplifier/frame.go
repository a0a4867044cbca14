// internal/amplifier/frame.go
package amplifier

import (
	"fmt"
	"strings"
)

// FrameSize is the fixed length of a configuration frame.
const FrameSize = 40

// Frame is one configuration message.
//
// Layout (bit 7 = MSB):
//
//	0      ACQ_SETT       7:fixed 1  6:DECIM  5:REC_ON  4-3:FSAMP  2-1:NCH  0:ACQ_ON
//	1      AN_OUT_IN_SEL  7-4:ANOUT_GAIN  3-0:INSEL
//	2      AN_OUT_CH_SEL  source channel - 1
//	3..26  INx_CONF0..2   CONF2: 5-4:HPF  3-2:LPF  1-0:MODE
//	27..38 MULTINx_CONF0..2 (same layout)
//	39     CRC
type Frame [FrameSize]byte

const (
	offAcqSett    = 0
	offAnOutInSel = 1
	offAnOutChSel = 2
	offInConf     = 3
	offMultinConf = 27
	offCRC        = FrameSize - 1

	confBytes = 3

	// DECIM (bit 6) and REC_ON (bit 5) are always sent cleared.
	acqFixed  byte = 1 << 7
	acqOn     byte = 1 << 0
	shiftRate      = 3
	shiftNCh       = 1

	shiftGain = 4

	shiftHP = 4
	shiftLP = 2
)

// ---- allowed values (position = wire index) ----

var (
	SampleRates = []uint16{512, 2048, 5120, 10240}
	OutputGains = []uint16{1, 2, 4, 16}
	HighPasses  = []uint16{0, 10, 100, 200} // 0 encodes 0.7 Hz
	LowPasses   = []uint16{130, 500, 900, 4400}
	InputModes  = []InputMode{Monopolar, Differential, Bipolar}
	Connectors  = []Connector{
		In1, In2, In3, In4, In5, In6, In7, In8,
		Multin1, Multin2, Multin3, Multin4,
		AuxIn,
	}
)

// IndexOf returns the wire index of v in allowed.
func IndexOf[T comparable](field string, v T, allowed []T) (byte, error) {
	for i, a := range allowed {
		if a == v {
			return byte(i), nil
		}
	}
	return 0, newError(KindUnsupportedValue, "%s %v not in %v", field, v, allowed)
}

// EncodeFrame builds the arming frame for cfg at geometry g.
func EncodeFrame(cfg AcquisitionConfig, g Geometry) (Frame, error) {
	var f Frame

	if g.Tier < 1 || g.Tier > 4 {
		return f, newError(KindUnsupportedValue, "tier %d", g.Tier)
	}

	// ---- ACQ_SETT ----
	rate, err := IndexOf("sample rate", cfg.SampleRate, SampleRates)
	if err != nil {
		return f, err
	}
	f[offAcqSett] = acqFixed | rate<<shiftRate | byte(g.Tier-1)<<shiftNCh | acqOn

	// ---- AN_OUT_IN_SEL ----
	gain, err := IndexOf("output gain", cfg.AnalogOut.Gain, OutputGains)
	if err != nil {
		return f, err
	}
	insel, err := IndexOf("source connector", cfg.AnalogOut.Connector, Connectors)
	if err != nil {
		return f, err
	}
	f[offAnOutInSel] = gain<<shiftGain | insel

	// ---- AN_OUT_CH_SEL ----
	if cfg.AnalogOut.Channel < 1 || int(cfg.AnalogOut.Channel) > cfg.AnalogOut.Connector.Channels() {
		return f, newError(
			KindUnsupportedValue,
			"source channel %d for connector %s",
			cfg.AnalogOut.Channel, cfg.AnalogOut.Connector,
		)
	}
	f[offAnOutChSel] = byte(cfg.AnalogOut.Channel - 1)

	// ---- INx / MULTINx ----
	for i, b := range cfg.In {
		conf, err := encodeConf(fmt.Sprintf("in%d", i+1), b)
		if err != nil {
			return f, err
		}
		f[offInConf+confBytes*i+2] = conf
	}
	for i, b := range cfg.Multin {
		conf, err := encodeConf(fmt.Sprintf("multin%d", i+1), b)
		if err != nil {
			return f, err
		}
		f[offMultinConf+confBytes*i+2] = conf
	}

	f.seal()
	return f, nil
}

// TeardownFrame is the disarm message: everything cleared except the
// fixed marker bit.
func TeardownFrame() Frame {
	var f Frame
	f[offAcqSett] = acqFixed
	f.seal()
	return f
}

// encodeConf packs CONF2. CONF0 and CONF1 are reserved and stay zero.
func encodeConf(block string, b BlockSetting) (byte, error) {
	hp, err := IndexOf(block+" high pass", b.HighPass, HighPasses)
	if err != nil {
		return 0, err
	}
	lp, err := IndexOf(block+" low pass", b.LowPass, LowPasses)
	if err != nil {
		return 0, err
	}
	mode, err := IndexOf(block+" mode", b.Mode, InputModes)
	if err != nil {
		return 0, err
	}
	return hp<<shiftHP | lp<<shiftLP | mode, nil
}

func (f *Frame) seal() {
	f[offCRC] = CRC8(f[:offCRC])
}

// Valid reports whether the trailing CRC matches the body.
func (f Frame) Valid() bool {
	return f[offCRC] == CRC8(f[:offCRC])
}

// ---- field accessors (decoded wire indices) ----

func (f Frame) Armed() bool          { return f[offAcqSett]&acqOn != 0 }
func (f Frame) SampleRateIndex() int { return int(f[offAcqSett]>>shiftRate) & 0x3 }
func (f Frame) Tier() int            { return int(f[offAcqSett]>>shiftNCh)&0x3 + 1 }
func (f Frame) GainIndex() int       { return int(f[offAnOutInSel] >> shiftGain) }
func (f Frame) ConnectorIndex() int  { return int(f[offAnOutInSel] & 0x0F) }
func (f Frame) SourceChannel() int   { return int(f[offAnOutChSel]) + 1 }

// Conf returns the CONF2 byte of IN block i (0-7) or, with multin set,
// of MULTIN block i (0-3).
func (f Frame) Conf(multin bool, i int) byte {
	if multin {
		return f[offMultinConf+confBytes*i+2]
	}
	return f[offInConf+confBytes*i+2]
}

// ConfIndices splits a CONF2 byte into high-pass, low-pass and mode indices.
func ConfIndices(conf byte) (hp, lp, mode int) {
	return int(conf>>shiftHP) & 0x3, int(conf>>shiftLP) & 0x3, int(conf) & 0x3
}

// String dumps one binary row per byte.
func (f Frame) String() string {
	var sb strings.Builder
	for i, b := range f {
		fmt.Fprintf(&sb, "%2d\t%08b\n", i, b)
	}
	return sb.String()
}
