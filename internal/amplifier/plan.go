// internal/amplifier/plan.go
package amplifier

import "fmt"

// Conversion factors from raw LSB to microvolts.
// IN/MULTIN carry a combined 150x amplification (5x pre, 30x main).
const (
	InGain        = 5.0 / 65536.0 / 150.0 * 1e6
	AuxGain       = 5.0 / 65536.0 / 0.5 * 1e6
	AccessoryGain = 1.0

	UnitMicrovolt = "microvolt"
)

// PlannedChannel is one output channel.
type PlannedChannel struct {
	RawIndex int
	Gain     float64
	Label    string
}

// Plan is the ordered output channel list for a session.
// Order: IN blocks ascending, MULTIN blocks ascending, AUX,
// SampleCounter, Trigger.
type Plan struct {
	Geometry Geometry
	Channels []PlannedChannel
}

// BuildPlan selects raw channels for every enabled block of cfg.
// It depends on configuration only, never on incoming data.
func BuildPlan(cfg AcquisitionConfig, g Geometry) Plan {
	in := cfg.Inputs()

	n := AccessoryChannels
	for _, on := range in.In {
		if on {
			n += InBlockChannels
		}
	}
	for _, on := range in.Multin {
		if on {
			n += MultinBlockChannels
		}
	}
	if in.Aux {
		n += AuxBlockChannels
	}

	p := Plan{Geometry: g, Channels: make([]PlannedChannel, 0, n)}

	for b, on := range in.In {
		if !on {
			continue
		}
		for c := 0; c < InBlockChannels; c++ {
			p.Channels = append(p.Channels, PlannedChannel{
				RawIndex: b*InBlockChannels + c,
				Gain:     InGain,
				Label:    fmt.Sprintf("IN%d-%d", b+1, c+1),
			})
		}
	}

	for b, on := range in.Multin {
		if !on {
			continue
		}
		for c := 0; c < MultinBlockChannels; c++ {
			p.Channels = append(p.Channels, PlannedChannel{
				RawIndex: g.MultinOffset + b*MultinBlockChannels + c,
				Gain:     InGain,
				Label:    fmt.Sprintf("MULTIN%d-%d", b+1, c+1),
			})
		}
	}

	if in.Aux {
		for c := 0; c < AuxBlockChannels; c++ {
			p.Channels = append(p.Channels, PlannedChannel{
				RawIndex: g.AuxOffset + c,
				Gain:     AuxGain,
				Label:    fmt.Sprintf("AUX-%d", c+1),
			})
		}
	}

	// Accessory channels are integers on the wire but streamed as floats.
	p.Channels = append(p.Channels,
		PlannedChannel{RawIndex: g.AccessoryOffset, Gain: AccessoryGain, Label: "SampleCounter"},
		PlannedChannel{RawIndex: g.AccessoryOffset + 1, Gain: AccessoryGain, Label: "Trigger"},
	)

	return p
}

// Len is the number of output channels.
func (p Plan) Len() int { return len(p.Channels) }

// Labels returns the output channel labels in order.
func (p Plan) Labels() []string {
	out := make([]string, len(p.Channels))
	for i, ch := range p.Channels {
		out[i] = ch.Label
	}
	return out
}

// OutputValues is the float count of one converted block.
func (p Plan) OutputValues() int { return p.Geometry.SamplesPerBlock * len(p.Channels) }

// Convert gathers planned channels from raw into out and scales them.
// Both buffers are sample-major. Pure: no state, no allocation.
func (p Plan) Convert(raw []int16, out []float32) error {
	rows := p.Geometry.SamplesPerBlock
	stride := p.Geometry.RawChannels
	width := len(p.Channels)

	if len(raw) != rows*stride {
		return fmt.Errorf("amplifier: raw block has %d values, want %d", len(raw), rows*stride)
	}
	if len(out) != rows*width {
		return fmt.Errorf("amplifier: output block has %d values, want %d", len(out), rows*width)
	}

	for r := 0; r < rows; r++ {
		src := raw[r*stride : (r+1)*stride]
		dst := out[r*width : (r+1)*width]
		for c, ch := range p.Channels {
			dst[c] = float32(float64(src[ch.RawIndex]) * ch.Gain)
		}
	}
	return nil
}
