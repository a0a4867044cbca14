// internal/amplifier/tcp/session.go
package tcp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/tamzrod/quattro-bridge/internal/amplifier"
)

const (
	DefaultConnectTimeout = 1000 * time.Millisecond
	DefaultReadTimeout    = 10 * time.Second

	// teardownTimeout bounds the best-effort disarm write on Close.
	teardownTimeout = 500 * time.Millisecond

	// minReadBuffer keeps small test geometries from thrashing the reader.
	minReadBuffer = 4096
)

// State is the session lifecycle position.
type State uint8

const (
	StateIdle State = iota
	StateConnecting
	StateArmed
	StateStreaming
	StateClosing
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateArmed:
		return "armed"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// DialFunc opens the transport. net.DialTimeout by default.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Options is the minimal transport config.
type Options struct {
	Endpoint       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// BlockBytes is the exact payload of one device block (Geometry.BlockBytes).
	BlockBytes int

	Dial DialFunc
}

// Session owns the TCP connection to one amplifier.
// Not safe for concurrent use: exactly one worker drives it.
type Session struct {
	conn        net.Conn
	br          *bufio.Reader
	scratch     []byte // one block, allocated at open, never resized
	readTimeout time.Duration
	state       State

	overrun  bool
	overruns uint64
}

// Open connects, sends the arming frame and returns a session ready to
// stream. The device does not acknowledge the frame.
func Open(opts Options, frame amplifier.Frame) (*Session, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("amplifier tcp: endpoint required")
	}
	if opts.BlockBytes <= 0 || opts.BlockBytes%2 != 0 {
		return nil, fmt.Errorf("amplifier tcp: invalid block size %d", opts.BlockBytes)
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	dial := opts.Dial
	if dial == nil {
		dial = net.DialTimeout
	}

	s := &Session{
		readTimeout: opts.ReadTimeout,
		scratch:     make([]byte, opts.BlockBytes),
		state:       StateConnecting,
	}

	conn, err := dial("tcp", opts.Endpoint, opts.ConnectTimeout)
	if err != nil {
		s.state = StateFaulted
		return nil, classifyDial(opts.Endpoint, err)
	}

	_ = conn.SetWriteDeadline(time.Now().Add(opts.ReadTimeout))
	if err := writeAll(conn, frame[:]); err != nil {
		_ = conn.Close()
		s.state = StateFaulted
		return nil, amplifier.Errorf(amplifier.KindSocketUnavailable, err, "send configuration to %s", opts.Endpoint)
	}

	size := 4 * opts.BlockBytes
	if size < minReadBuffer {
		size = minReadBuffer
	}

	s.conn = conn
	s.br = bufio.NewReaderSize(conn, size)
	s.state = StateArmed
	return s, nil
}

// State reports the lifecycle position.
func (s *Session) State() State { return s.state }

// Overruns counts reads that left at least one further full block queued.
func (s *Session) Overruns() uint64 { return s.overruns }

// ReadBlock fills dst with exactly one device block.
//
// Every wait for more bytes is bounded by the read timeout; a partially
// received block keeps the call waiting. Queued data is never discarded.
func (s *Session) ReadBlock(dst []int16) error {
	if s.conn == nil {
		return amplifier.Errorf(amplifier.KindSocketUnavailable, nil, "session is %s", s.state)
	}

	want := len(s.scratch)
	if 2*len(dst) != want {
		return fmt.Errorf("amplifier tcp: destination holds %d bytes, block is %d", 2*len(dst), want)
	}

	for s.br.Buffered() < want {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		if _, err := s.br.Peek(s.br.Buffered() + 1); err != nil {
			return s.fault(s.classifyRead(err, s.br.Buffered(), want))
		}
	}

	n, err := io.ReadFull(s.br, s.scratch)
	if n != want {
		return s.fault(amplifier.Errorf(amplifier.KindShortRead, err, "got %d of %d bytes", n, want))
	}

	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(s.scratch[2*i:]))
	}

	s.trackOverrun(want)
	s.state = StateStreaming
	return nil
}

// Close sends the teardown frame (best effort) and releases the socket.
// Idempotent.
func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	s.state = StateClosing

	td := amplifier.TeardownFrame()
	_ = s.conn.SetWriteDeadline(time.Now().Add(teardownTimeout))
	if err := writeAll(s.conn, td[:]); err != nil {
		log.Printf("amplifier: teardown frame not sent: %v", err)
	}

	err := s.conn.Close()
	s.conn = nil
	s.br = nil
	s.state = StateIdle
	return err
}

// ---- internal helpers ----

func (s *Session) fault(err error) error {
	s.state = StateFaulted
	return err
}

// trackOverrun logs transitions only; the data itself stays queued.
func (s *Session) trackOverrun(block int) {
	pending := s.br.Buffered()
	if pending >= block {
		s.overruns++
		if !s.overrun {
			s.overrun = true
			log.Printf("amplifier: overrun: %d bytes queued behind reader (no samples dropped)", pending)
		}
		return
	}
	if s.overrun {
		s.overrun = false
		log.Printf("amplifier: overrun cleared after %d blocks", s.overruns)
	}
}

func (s *Session) classifyRead(err error, buffered, want int) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return amplifier.Errorf(
			amplifier.KindReadTimeout, err,
			"no data for %s (%d of %d bytes buffered)", s.readTimeout, buffered, want,
		)
	}
	return amplifier.Errorf(amplifier.KindShortRead, err, "got %d of %d bytes", buffered, want)
}

func classifyDial(endpoint string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return amplifier.Errorf(amplifier.KindConnectTimeout, err, "connect %s", endpoint)
	}
	return amplifier.Errorf(amplifier.KindConnectRefused, err, "connect %s", endpoint)
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
