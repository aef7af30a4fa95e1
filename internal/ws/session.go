// internal/ws/session.go
//
// Live WebSocket session.
//
// Context
// -------
// A Session wraps a message-oriented duplex channel.  The read and write
// sides may progress concurrently (one reader, one writer); writes are
// serialized internally because keep-alive pings share the write side.  The
// governing context cancels the whole session: a watcher goroutine closes
// the connection, which makes any blocked Read or Write return promptly
// instead of hanging.
//
// Keep-alive
// ----------
// When an interval is configured the session pings on every tick and expects
// a pong within two intervals; a silent peer trips the read deadline and the
// read loop surfaces the error.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yanizio/relay/internal/fault"
)

// Message types, re-exported so callers do not import gorilla directly.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

const writeWait = 10 * time.Second

// Session is a connected WebSocket channel.  Create only through Accept.
type Session struct {
	conn      *websocket.Conn
	protocol  string
	keepAlive time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// newSession wires the cancellation watcher and keep-alive loop.
func newSession(parent context.Context, conn *websocket.Conn, protocol string, keepAlive time.Duration) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		conn:      conn,
		protocol:  protocol,
		keepAlive: keepAlive,
		ctx:       ctx,
		cancel:    cancel,
	}

	if keepAlive > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(2 * keepAlive))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(2 * keepAlive))
		})
		go s.pingLoop()
	}

	// Closing the conn is what unblocks a pending Read after cancellation.
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return s
}

// Protocol returns the negotiated subprotocol, possibly empty.
func (s *Session) Protocol() string { return s.protocol }

// Context returns the governing lifetime context.
func (s *Session) Context() context.Context { return s.ctx }

// Read blocks for the next message.  After cancellation or Close it returns
// an AlreadyClosed error.
func (s *Session) Read() (messageType int, data []byte, err error) {
	mt, p, err := s.conn.ReadMessage()
	if err != nil {
		if s.ctx.Err() != nil {
			return 0, nil, fault.Wrap(fault.AlreadyClosed, err, "websocket read after close")
		}
		return 0, nil, err
	}
	return mt, p, nil
}

// Write sends one message.  Safe for one application writer; pings are
// interleaved internally.
func (s *Session) Write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.ctx.Err() != nil {
		return fault.New(fault.AlreadyClosed, "websocket write after close")
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Close sends a best-effort close frame, cancels the session context, and
// closes the connection.  Safe to call from any goroutine, any number of
// times; only the first call does work.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		s.cancel()
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// pingLoop probes the peer until the session context ends.
func (s *Session) pingLoop() {
	t := time.NewTicker(s.keepAlive)
	defer t.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.writeMu.Lock()
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				_ = s.Close()
				return
			}
		}
	}
}
