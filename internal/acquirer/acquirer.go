// internal/acquirer/acquirer.go
package acquirer

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/tamzrod/quattro-bridge/internal/amplifier"
	"github.com/tamzrod/quattro-bridge/internal/stream"
)

// Session abstracts the amplifier connection.
// The acquirer depends on block reads only.
type Session interface {
	ReadBlock(dst []int16) error
	Close() error
}

// Opener connects and arms the amplifier. ONE attempt per call.
type Opener func(frame amplifier.Frame, g amplifier.Geometry) (Session, error)

// Config is the immutable per-session input.
type Config struct {
	StreamName  string
	Acquisition amplifier.AcquisitionConfig

	// OnStreaming, if set, is called once after the first chunk is pushed.
	OnStreaming func()
}

// Acquirer drives one acquisition session end to end.
type Acquirer struct {
	cfg  Config
	open Opener
	sink stream.Sink
}

func New(cfg Config, open Opener, sink stream.Sink) (*Acquirer, error) {
	if cfg.StreamName == "" {
		return nil, errors.New("acquirer: stream name required")
	}
	if open == nil {
		return nil, errors.New("acquirer: opener required")
	}
	if sink == nil {
		return nil, errors.New("acquirer: sink required")
	}
	return &Acquirer{cfg: cfg, open: open, sink: sink}, nil
}

// Run performs one session: resolve geometry, plan channels, encode the
// arming frame, connect, declare the stream, then read/convert/push until
// stop is raised or an error ends the session.
// stop is checked once per block; a nil error means a requested stop.
func (a *Acquirer) Run(stop *atomic.Bool) (err error) {
	acq := a.cfg.Acquisition

	g, err := amplifier.ResolveGeometry(acq.Inputs())
	if err != nil {
		return err
	}
	plan := amplifier.BuildPlan(acq, g)

	frame, err := amplifier.EncodeFrame(acq, g)
	if err != nil {
		return err
	}

	sess, err := a.open(frame, g)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Printf("acquirer: session close failed (stream=%s): %v", a.cfg.StreamName, cerr)
		}
	}()

	outlet, err := a.sink.Declare(StreamInfo(a.cfg.StreamName, acq.SampleRate, plan))
	if err != nil {
		return fmt.Errorf("acquirer: declare stream: %w", err)
	}
	defer func() {
		if cerr := outlet.Close(); cerr != nil {
			log.Printf("acquirer: outlet close failed (stream=%s): %v", a.cfg.StreamName, cerr)
		}
	}()

	log.Printf(
		"acquirer: streaming stream=%s tier=%d channels=%d rate=%d block=%dB",
		a.cfg.StreamName, g.Tier, plan.Len(), acq.SampleRate, g.BlockBytes(),
	)

	// Buffers live for the whole session.
	raw := make([]int16, g.BlockValues())
	out := make([]float32, plan.OutputValues())
	notified := false

	for !stop.Load() {
		if err := sess.ReadBlock(raw); err != nil {
			return err
		}
		if err := plan.Convert(raw, out); err != nil {
			return err
		}
		if err := outlet.PushChunk(out); err != nil {
			return fmt.Errorf("acquirer: push chunk: %w", err)
		}
		if !notified {
			notified = true
			if a.cfg.OnStreaming != nil {
				a.cfg.OnStreaming()
			}
		}
	}

	log.Printf("acquirer: stop requested (stream=%s)", a.cfg.StreamName)
	return nil
}

// StreamInfo builds the declaration for a planned session.
func StreamInfo(name string, rate uint16, plan amplifier.Plan) stream.StreamInfo {
	chans := make([]stream.ChannelInfo, 0, plan.Len())
	for _, label := range plan.Labels() {
		chans = append(chans, stream.ChannelInfo{Label: label, Unit: amplifier.UnitMicrovolt})
	}
	return stream.StreamInfo{
		Name:         name,
		Type:         stream.TypeExG,
		ChannelCount: plan.Len(),
		SampleRate:   float64(rate),
		Format:       stream.FormatF32,
		SourceID:     stream.SourceID,
		Manufacturer: stream.Manufacturer,
		Channels:     chans,
	}
}
