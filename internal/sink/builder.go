// internal/sink/builder.go
package sink

import (
	"errors"
	"log"

	cfg "github.com/tamzrod/quattro-bridge/internal/config"
	"github.com/tamzrod/quattro-bridge/internal/sink/record"
	"github.com/tamzrod/quattro-bridge/internal/sink/websocket"
	"github.com/tamzrod/quattro-bridge/internal/stream"
)

// Build wires every configured sink into one fan-out sink.
// The returned closer releases listeners; it is safe to call once.
func Build(c cfg.SinksConfig) (stream.Sink, func() error, error) {
	var (
		sinks   []stream.Sink
		closers []func() error
	)

	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	// ---- websocket (live) ----
	if c.Websocket != nil {
		srv := websocket.New(websocket.Config{
			Listen:       c.Websocket.Listen,
			Path:         c.Websocket.Path,
			ClientBuffer: c.Websocket.ClientBuffer,
		})
		if _, err := srv.Start(); err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, srv)
		closers = append(closers, srv.Close)
	}

	// ---- record (parquet files) ----
	if c.Record != nil {
		rec, err := record.New(record.Config{Dir: c.Record.Dir})
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, rec)
	}

	if len(sinks) == 0 {
		return nil, nil, errors.New("sink: no sink configured")
	}

	log.Printf("sink: %d sink(s) configured", len(sinks))
	return stream.Multi(sinks...), closeAll, nil
}
