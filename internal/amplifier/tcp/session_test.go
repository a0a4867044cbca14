// internal/amplifier/tcp/session_test.go
package tcp

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/quattro-bridge/internal/amplifier"
)

// fakeAmp is a loopback listener standing in for the amplifier.
type fakeAmp struct {
	ln    net.Listener
	conns chan net.Conn
}

func newFakeAmp(t *testing.T) *fakeAmp {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	a := &fakeAmp{ln: ln, conns: make(chan net.Conn, 1)}
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(a.conns)
			return
		}
		a.conns <- c
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return a
}

func (a *fakeAmp) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case c, ok := <-a.conns:
		require.True(t, ok, "accept failed")
		t.Cleanup(func() { _ = c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no connection")
		return nil
	}
}

func readFrame(t *testing.T, c net.Conn) amplifier.Frame {
	t.Helper()
	var f amplifier.Frame
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := io.ReadFull(c, f[:])
	require.NoError(t, err)
	return f
}

func block(values int, seed int16) []byte {
	b := make([]byte, 2*values)
	for i := 0; i < values; i++ {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(seed+int16(i)))
	}
	return b
}

func testFrame(t *testing.T) amplifier.Frame {
	t.Helper()
	cfg := amplifier.DefaultAcquisitionConfig()
	cfg.Aux = true
	g, err := amplifier.ResolveGeometry(cfg.Inputs())
	require.NoError(t, err)
	f, err := amplifier.EncodeFrame(cfg, g)
	require.NoError(t, err)
	return f
}

const testValues = 24 // small block: 48 bytes

func open(t *testing.T, a *fakeAmp, readTimeout time.Duration) (*Session, net.Conn) {
	t.Helper()
	frame := testFrame(t)
	s, err := Open(Options{
		Endpoint:    a.ln.Addr().String(),
		ReadTimeout: readTimeout,
		BlockBytes:  2 * testValues,
	}, frame)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	c := a.accept(t)
	require.Equal(t, frame, readFrame(t, c))
	require.Equal(t, StateArmed, s.State())
	return s, c
}

func TestOpen_SendsConfigurationFrame(t *testing.T) {
	a := newFakeAmp(t)
	open(t, a, time.Second)
}

func TestReadBlock_AssemblesFragmentedBlock(t *testing.T) {
	a := newFakeAmp(t)
	s, c := open(t, a, time.Second)

	payload := block(testValues, -5)
	go func() {
		_, _ = c.Write(payload[:7])
		time.Sleep(20 * time.Millisecond)
		_, _ = c.Write(payload[7:30])
		time.Sleep(20 * time.Millisecond)
		_, _ = c.Write(payload[30:])
	}()

	dst := make([]int16, testValues)
	require.NoError(t, s.ReadBlock(dst))
	for i, v := range dst {
		require.Equal(t, int16(-5+i), v)
	}
	require.Equal(t, StateStreaming, s.State())
}

func TestReadBlock_KeepsQueuedBlocks(t *testing.T) {
	a := newFakeAmp(t)
	s, c := open(t, a, time.Second)

	var all []byte
	for k := 0; k < 3; k++ {
		all = append(all, block(testValues, int16(100*k))...)
	}
	_, err := c.Write(all)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	dst := make([]int16, testValues)
	for k := 0; k < 3; k++ {
		require.NoError(t, s.ReadBlock(dst))
		require.Equal(t, int16(100*k), dst[0], "block %d", k)
		require.Equal(t, int16(100*k+testValues-1), dst[testValues-1], "block %d", k)
	}
	require.GreaterOrEqual(t, s.Overruns(), uint64(1))
}

func TestReadBlock_Timeout(t *testing.T) {
	a := newFakeAmp(t)
	s, _ := open(t, a, 50*time.Millisecond)

	err := s.ReadBlock(make([]int16, testValues))
	require.Error(t, err)
	require.True(t, errors.Is(err, amplifier.ErrReadTimeout), "%v", err)
	require.Equal(t, StateFaulted, s.State())
}

func TestReadBlock_ShortRead(t *testing.T) {
	a := newFakeAmp(t)
	s, c := open(t, a, time.Second)

	_, err := c.Write(block(testValues/2, 0))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	err = s.ReadBlock(make([]int16, testValues))
	require.Error(t, err)
	require.True(t, errors.Is(err, amplifier.ErrShortRead), "%v", err)
}

func TestReadBlock_DestinationSize(t *testing.T) {
	a := newFakeAmp(t)
	s, _ := open(t, a, time.Second)

	require.Error(t, s.ReadBlock(make([]int16, testValues-1)))
}

func TestClose_SendsTeardownAndIsIdempotent(t *testing.T) {
	a := newFakeAmp(t)
	s, c := open(t, a, time.Second)

	require.NoError(t, s.Close())
	require.Equal(t, amplifier.TeardownFrame(), readFrame(t, c))
	require.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Close())

	err := s.ReadBlock(make([]int16, testValues))
	require.True(t, errors.Is(err, amplifier.ErrSocketUnavailable), "%v", err)
}

func TestOpen_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Open(Options{Endpoint: addr, BlockBytes: 2 * testValues}, testFrame(t))
	require.Error(t, err)
	require.True(t, errors.Is(err, amplifier.ErrConnectRefused), "%v", err)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestOpen_Timeout(t *testing.T) {
	var gotTimeout time.Duration
	dial := func(network, address string, timeout time.Duration) (net.Conn, error) {
		gotTimeout = timeout
		return nil, &net.OpError{Op: "dial", Net: network, Err: timeoutErr{}}
	}

	_, err := Open(Options{Endpoint: "169.254.1.10:23456", BlockBytes: 2880, Dial: dial}, testFrame(t))
	require.Error(t, err)
	require.True(t, errors.Is(err, amplifier.ErrConnectTimeout), "%v", err)
	require.Equal(t, DefaultConnectTimeout, gotTimeout)
}

func TestOpen_RejectsBadOptions(t *testing.T) {
	_, err := Open(Options{BlockBytes: 2}, testFrame(t))
	require.Error(t, err)

	_, err = Open(Options{Endpoint: "x:1", BlockBytes: 3}, testFrame(t))
	require.Error(t, err)
}
