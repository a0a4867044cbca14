// internal/sink/record/recorder.go
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/parquet-go"

	"github.com/tamzrod/quattro-bridge/internal/stream"
)

// MetadataKey holds the JSON stream declaration in the file footer.
const MetadataKey = "stream"

// Row is one multiplexed sample.
type Row struct {
	Chunk  uint64    `parquet:"chunk"`
	Sample uint32    `parquet:"sample"`
	Values []float32 `parquet:"values"`
}

type Config struct {
	Dir string
}

// Recorder is a stream.Sink writing one parquet file per declared stream.
type Recorder struct {
	dir string
	now func() time.Time
}

func New(cfg Config) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, errors.New("parquet sink: directory required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("parquet sink: %w", err)
	}
	return &Recorder{dir: cfg.Dir, now: time.Now}, nil
}

// FileName is the recording name for a stream started at t.
func FileName(name string, t time.Time) string {
	return fmt.Sprintf("%s-%s.parquet", name, t.UTC().Format("20060102T150405.000"))
}

// Declare creates the recording file.
func (r *Recorder) Declare(info stream.StreamInfo) (stream.Outlet, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}

	meta, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("parquet sink: encode stream info: %w", err)
	}

	path := filepath.Join(r.dir, FileName(info.Name, r.now()))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("parquet sink: %w", err)
	}

	log.Printf("parquet sink: recording stream=%s path=%s", info.Name, path)

	return &outlet{
		path:     path,
		file:     f,
		channels: info.ChannelCount,
		writer: parquet.NewGenericWriter[Row](f,
			parquet.KeyValueMetadata(MetadataKey, string(meta)),
		),
	}, nil
}

type outlet struct {
	path     string
	file     *os.File
	writer   *parquet.GenericWriter[Row]
	channels int
	chunk    uint64
	rows     []Row // reused across chunks
}

func (o *outlet) PushChunk(samples []float32) error {
	if err := stream.CheckChunk(samples, o.channels); err != nil {
		return err
	}

	n := len(samples) / o.channels
	if cap(o.rows) < n {
		o.rows = make([]Row, n)
	}
	rows := o.rows[:n]
	for i := range rows {
		rows[i] = Row{
			Chunk:  o.chunk,
			Sample: uint32(i),
			Values: samples[i*o.channels : (i+1)*o.channels],
		}
	}

	if _, err := o.writer.Write(rows); err != nil {
		return fmt.Errorf("parquet sink: write %s: %w", o.path, err)
	}
	o.chunk++
	return nil
}

func (o *outlet) Close() error {
	if err := o.writer.Close(); err != nil {
		_ = o.file.Close()
		return fmt.Errorf("parquet sink: finalize %s: %w", o.path, err)
	}
	return o.file.Close()
}
