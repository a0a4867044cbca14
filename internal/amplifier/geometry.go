// internal/amplifier/geometry.go
package amplifier

// Geometry is the acquisition layout the amplifier fixes for a tier.
// Derived, read-only.
type Geometry struct {
	Tier            int // active-inputs level, 1-4
	RawChannels     int // 120, 216, 312, 408
	SamplesPerBlock int // 12, 6, 4, 2

	MultinOffset    int // first MULTIN channel in the raw block
	AuxOffset       int // first AUX channel in the raw block
	AccessoryOffset int // sample counter; trigger follows
}

// tierLayout is protocol-locked: the device sends a fixed payload per tier.
type tierLayout struct {
	rawChannels  int
	payloadBytes int
	multinOffset int
}

var tiers = [...]tierLayout{
	1: {rawChannels: 120, payloadBytes: 2880, multinOffset: 32},
	2: {rawChannels: 216, payloadBytes: 2592, multinOffset: 64},
	3: {rawChannels: 312, payloadBytes: 2496, multinOffset: 96},
	4: {rawChannels: 408, payloadBytes: 1632, multinOffset: 128},
}

// BlockValues is the number of int16 values per raw block.
func (g Geometry) BlockValues() int { return g.SamplesPerBlock * g.RawChannels }

// BlockBytes is the exact number of bytes the device sends per block.
func (g Geometry) BlockBytes() int { return 2 * g.BlockValues() }

// ResolveGeometry selects the tier from the enabled blocks.
// The highest triggered tier wins: a single high-index block forces the
// larger frame even if nothing else is enabled.
func ResolveGeometry(in Inputs) (Geometry, error) {
	var tier int
	switch {
	case in.In[7] || in.In[6] || in.Multin[3]:
		tier = 4
	case in.In[5] || in.In[4] || in.Multin[2]:
		tier = 3
	case in.In[3] || in.In[2] || in.Multin[1]:
		tier = 2
	case in.In[1] || in.In[0] || in.Multin[0] || in.Aux:
		tier = 1
	default:
		return Geometry{}, newError(KindNoInputSelected, "enable at least one input block")
	}
	return geometryForTier(tier)
}

func geometryForTier(tier int) (Geometry, error) {
	if tier < 1 || tier >= len(tiers) {
		return Geometry{}, newError(KindUnsupportedValue, "tier %d", tier)
	}
	t := tiers[tier]

	// Framing depends on exact division; never truncate.
	stride := 2 * t.rawChannels
	if t.payloadBytes%stride != 0 {
		return Geometry{}, newError(
			KindUnsupportedValue,
			"tier %d payload %d bytes is not a multiple of %d",
			tier, t.payloadBytes, stride,
		)
	}

	return Geometry{
		Tier:            tier,
		RawChannels:     t.rawChannels,
		SamplesPerBlock: t.payloadBytes / stride,
		MultinOffset:    t.multinOffset,
		AuxOffset:       t.rawChannels - 24,
		AccessoryOffset: t.rawChannels - 8,
	}, nil
}
