// internal/sink/websocket/server.go
package websocket

import (
	"encoding/binary"
	"errors"
	"log"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tamzrod/quattro-bridge/internal/stream"
)

const (
	DefaultPath         = "/stream"
	DefaultClientBuffer = 64

	writeWait = 2 * time.Second
)

// Message types sent as JSON text frames. Chunks are binary frames of
// little-endian float32, sample-major.
const (
	MsgStream = "stream"
	MsgEnd    = "end"
)

// Envelope is the JSON control message.
type Envelope struct {
	Type   string             `json:"type"`
	Stream *stream.StreamInfo `json:"stream,omitempty"`
}

type Config struct {
	Listen       string
	Path         string
	ClientBuffer int
}

// Server is a stream.Sink that fans chunks out to websocket clients.
// A client that cannot keep up is disconnected; the stream never blocks.
type Server struct {
	upgrader     websocket.Upgrader
	listen       string
	path         string
	clientBuffer int

	mu      sync.RWMutex
	clients map[*client]struct{}
	current *stream.StreamInfo

	httpSrv *http.Server
}

type client struct {
	conn *websocket.Conn
	addr string
	send chan interface{}
}

// New creates a server. It does not listen; see Start or use it as an
// http.Handler.
func New(cfg Config) *Server {
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = DefaultClientBuffer
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	return &Server{
		listen:       cfg.Listen,
		path:         cfg.Path,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 65536,
		},
		clientBuffer: cfg.ClientBuffer,
		clients:      make(map[*client]struct{}),
	}
}

// Start listens on the configured address and serves the stream endpoint.
func (s *Server) Start() (net.Addr, error) {
	if s.listen == "" {
		return nil, errors.New("websocket sink: listen address required")
	}

	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, s)
	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("websocket sink: serve: %v", err)
		}
	}()

	log.Printf("websocket sink: listening addr=%s path=%s", ln.Addr(), s.path)
	return ln.Addr(), nil
}

// Close stops the listener and disconnects every client.
func (s *Server) Close() error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Close()
	}

	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	return err
}

// ServeHTTP upgrades and registers one client. A client joining mid-stream
// first receives the current stream declaration.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket sink: upgrade: %v", err)
		return
	}

	c := &client{
		conn: conn,
		addr: conn.RemoteAddr().String(),
		send: make(chan interface{}, s.clientBuffer),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.current != nil {
		c.send <- Envelope{Type: MsgStream, Stream: s.current}
	}
	s.mu.Unlock()

	go c.writePump()
	go s.readPump(c)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Declare implements stream.Sink.
func (s *Server) Declare(info stream.StreamInfo) (stream.Outlet, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = &info
	s.mu.Unlock()

	s.broadcast(Envelope{Type: MsgStream, Stream: &info})
	return &outlet{srv: s, channels: info.ChannelCount}, nil
}

type outlet struct {
	srv      *Server
	channels int
}

func (o *outlet) PushChunk(samples []float32) error {
	if err := stream.CheckChunk(samples, o.channels); err != nil {
		return err
	}
	o.srv.broadcast(encodeChunk(samples))
	return nil
}

func (o *outlet) Close() error {
	o.srv.mu.Lock()
	o.srv.current = nil
	o.srv.mu.Unlock()

	o.srv.broadcast(Envelope{Type: MsgEnd})
	return nil
}

// ---- internal ----

// broadcast never blocks: a full client queue drops the client.
func (s *Server) broadcast(msg interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("websocket sink: dropping slow client %s", c.addr)
			delete(s.clients, c)
			close(c.send)
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// readPump drains control frames so close requests are observed.
func (s *Server) readPump(c *client) {
	defer s.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pumps queued messages to the websocket connection.
func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		var err error
		switch v := msg.(type) {
		case []byte:
			err = c.conn.WriteMessage(websocket.BinaryMessage, v)
		default:
			err = c.conn.WriteJSON(v)
		}
		if err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// encodeChunk copies samples so every client can send asynchronously.
func encodeChunk(samples []float32) []byte {
	b := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}
