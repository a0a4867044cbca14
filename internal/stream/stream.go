// internal/stream/stream.go
package stream

import (
	"errors"
	"fmt"
	"strings"
)

// Fixed stream metadata for the Quattrocento.
const (
	TypeExG      = "ExG"
	FormatF32    = "float32"
	Manufacturer = "OT Bioelettronica"
	SourceID     = "quattrocento_id42"
)

// ChannelInfo is per-channel metadata.
type ChannelInfo struct {
	Label string `json:"label"`
	Unit  string `json:"unit"`
}

// StreamInfo describes one multiplexed output stream.
type StreamInfo struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	ChannelCount int           `json:"channel_count"`
	SampleRate   float64       `json:"sample_rate"`
	Format       string        `json:"format"`
	SourceID     string        `json:"source_id"`
	Manufacturer string        `json:"manufacturer"`
	Channels     []ChannelInfo `json:"channels"`
}

// Validate checks the declaration is self-consistent.
func (i StreamInfo) Validate() error {
	if i.Name == "" {
		return errors.New("stream: name required")
	}
	if i.ChannelCount <= 0 {
		return fmt.Errorf("stream %q: channel count must be > 0", i.Name)
	}
	if len(i.Channels) != i.ChannelCount {
		return fmt.Errorf("stream %q: %d channel descriptions for %d channels", i.Name, len(i.Channels), i.ChannelCount)
	}
	if i.SampleRate <= 0 {
		return fmt.Errorf("stream %q: sample rate must be > 0", i.Name)
	}
	return nil
}

// Outlet accepts multiplexed chunks for one declared stream.
// A chunk is sample-major: len(samples) is a multiple of ChannelCount.
type Outlet interface {
	PushChunk(samples []float32) error
	Close() error
}

// Sink declares streams.
type Sink interface {
	Declare(info StreamInfo) (Outlet, error)
}

// CheckChunk validates chunk framing against a channel count.
func CheckChunk(samples []float32, channels int) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("stream: chunk of %d values is not a multiple of %d channels", len(samples), channels)
	}
	return nil
}

// ---- fan-out ----

type multiSink []Sink

// Multi declares on every sink and pushes every chunk to all outlets.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Declare(info StreamInfo) (Outlet, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}

	outs := make(multiOutlet, 0, len(m))
	for _, s := range m {
		o, err := s.Declare(info)
		if err != nil {
			_ = outs.Close()
			return nil, err
		}
		outs = append(outs, o)
	}
	return outs, nil
}

type multiOutlet []Outlet

func (m multiOutlet) PushChunk(samples []float32) error {
	var errs []string
	for _, o := range m {
		if err := o.PushChunk(samples); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New("stream: " + strings.Join(errs, " | "))
	}
	return nil
}

func (m multiOutlet) Close() error {
	var last error
	for _, o := range m {
		if err := o.Close(); err != nil {
			last = err
		}
	}
	return last
}
