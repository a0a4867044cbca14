// internal/config/normalize_test.go
package config

import "testing"

func TestNormalize_ClampsFiltersPerRate(t *testing.T) {
	cases := []struct {
		rate   uint16
		hp, lp uint16
		wantHP uint16
		wantLP uint16
	}{
		{512, 200, 4400, 10, 130},
		{512, 10, 130, 10, 130},
		{2048, 200, 4400, 100, 900},
		{5120, 100, 900, 100, 900},
		{10240, 200, 4400, 100, 4400},
		{10240, 0, 500, 0, 500},
	}

	for _, tc := range cases {
		cfg := bridge(BlockConfig{Active: true, HighPass: tc.hp, LowPass: tc.lp})
		cfg.Bridge.Acquisition.SampleRate = tc.rate
		cfg.Bridge.Acquisition.Multin = []BlockConfig{{Mode: "monopolar", HighPass: tc.hp, LowPass: tc.lp}}

		if err := Validate(cfg); err != nil {
			t.Fatalf("rate %d: unexpected error: %v", tc.rate, err)
		}
		Normalize(cfg)

		for _, b := range []BlockConfig{cfg.Bridge.Acquisition.In[0], cfg.Bridge.Acquisition.Multin[0]} {
			if b.HighPass != tc.wantHP || b.LowPass != tc.wantLP {
				t.Fatalf("rate %d hp=%d lp=%d: got hp=%d lp=%d want hp=%d lp=%d",
					tc.rate, tc.hp, tc.lp, b.HighPass, b.LowPass, tc.wantHP, tc.wantLP)
			}
		}
	}
}

func TestNormalize_TruncatesDeviceName(t *testing.T) {
	cfg := bridge(active())
	cfg.Bridge.Status = &StatusConfig{Endpoint: "127.0.0.1:502", DeviceName: "QUATTROCENTO-LAB-A"}

	Normalize(cfg)

	if got := cfg.Bridge.Status.DeviceName; got != "QUATTROCENTO-LAB" {
		t.Fatalf("device_name not truncated: %q", got)
	}
}

func TestNormalize_NilSafe(t *testing.T) {
	Normalize(nil)
}
