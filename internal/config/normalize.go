// internal/config/normalize.go
package config

import "github.com/tamzrod/quattro-bridge/internal/amplifier"

// filterLimit is the highest filter index the front end offers at a rate.
type filterLimit struct {
	highPass int
	lowPass  int
}

var filterLimits = map[uint16]filterLimit{
	512:   {highPass: 1, lowPass: 0},
	2048:  {highPass: 2, lowPass: 2},
	5120:  {highPass: 2, lowPass: 2},
	10240: {highPass: 2, lowPass: 3},
}

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	a := &cfg.Bridge.Acquisition

	// ------------------------------------------------------------
	// FILTER CLAMPING (per sample rate)
	// ------------------------------------------------------------

	if lim, ok := filterLimits[a.SampleRate]; ok {
		for i := range a.In {
			clampBlock(&a.In[i], lim)
		}
		for i := range a.Multin {
			clampBlock(&a.Multin[i], lim)
		}
	}

	// ------------------------------------------------------------
	// STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if st := cfg.Bridge.Status; st != nil {
		// ASCII already validated; truncate to max 16 characters.
		if len(st.DeviceName) > 16 {
			st.DeviceName = st.DeviceName[:16]
		}
	}
}

func clampBlock(b *BlockConfig, lim filterLimit) {
	b.HighPass = clampValue(b.HighPass, amplifier.HighPasses, lim.highPass)
	b.LowPass = clampValue(b.LowPass, amplifier.LowPasses, lim.lowPass)
}

// clampValue lowers v to allowed[max] when its index exceeds max.
// Unknown values are left for the encoder to reject.
func clampValue(v uint16, allowed []uint16, max int) uint16 {
	for i, a := range allowed {
		if a == v {
			if i > max {
				return allowed[max]
			}
			return v
		}
	}
	return v
}
