// internal/sink/websocket/server_test.go
package websocket

import (
	"encoding/binary"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/quattro-bridge/internal/stream"
)

func testInfo() stream.StreamInfo {
	return stream.StreamInfo{
		Name:         "quattrocento",
		Type:         stream.TypeExG,
		ChannelCount: 2,
		SampleRate:   2048,
		Format:       stream.FormatF32,
		SourceID:     stream.SourceID,
		Manufacturer: stream.Manufacturer,
		Channels: []stream.ChannelInfo{
			{Label: "SampleCounter", Unit: "microvolt"},
			{Label: "Trigger", Unit: "microvolt"},
		},
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestServer_LateJoinerGetsDeclarationThenChunks(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = srv.Close() })

	out, err := srv.Declare(testInfo())
	require.NoError(t, err)

	conn := dial(t, ts)

	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, MsgStream, env.Type)
	require.NotNil(t, env.Stream)
	require.Equal(t, testInfo(), *env.Stream)

	chunk := []float32{1.5, -2, 3, 4.25}
	require.NoError(t, out.PushChunk(chunk))

	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, mt)
	require.Len(t, data, 4*len(chunk))
	for i, want := range chunk {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		require.Equal(t, want, got)
	}

	require.NoError(t, out.Close())
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, MsgEnd, env.Type)
}

func TestServer_RejectsMisframedChunk(t *testing.T) {
	srv := New(Config{})
	out, err := srv.Declare(testInfo())
	require.NoError(t, err)

	require.Error(t, out.PushChunk([]float32{1, 2, 3}))
}

func TestServer_DropsSlowClient(t *testing.T) {
	srv := New(Config{ClientBuffer: 1})

	// register a client whose queue nobody drains
	c := &client{send: make(chan interface{}, 1)}
	srv.clients[c] = struct{}{}

	out, err := srv.Declare(testInfo()) // fills the queue
	require.NoError(t, err)
	require.Equal(t, 1, srv.Clients())

	require.NoError(t, out.PushChunk([]float32{1, 2})) // overflows
	require.Equal(t, 0, srv.Clients())
}

func TestServer_StartRequiresAddress(t *testing.T) {
	_, err := New(Config{}).Start()
	require.Error(t, err)
}

func TestServer_StartServesConfiguredPath(t *testing.T) {
	srv := New(Config{Listen: "127.0.0.1:0", Path: "/eeg"})
	addr, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr.String()+"/eeg", nil)
	require.NoError(t, err)
	_ = conn.Close()
}
