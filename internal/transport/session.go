// Package transport owns one physical websocket connection. It knows how to
// open, send and signal closure; retry policy lives with the connection
// lifecycle manager, message semantics with the router.
package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"holdem-client/internal/runloop"
)

var ErrSessionClosed = errors.New("session_closed")

// Handlers receive inbound traffic and the single close signal; both are
// invoked on the run loop, never concurrently.
type Handlers struct {
	OnMessage func(data []byte)
	OnClose   func(err error)
}

type Session struct {
	conn      *websocket.Conn
	loop      runloop.Scheduler
	handlers  Handlers
	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
}

// Dial opens the websocket with the supplied identity/auth headers and starts
// the read pump. The returned session is live until its close signal fires.
func Dial(ctx context.Context, url string, header http.Header, loop runloop.Scheduler, handlers Handlers) (*Session, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	s := &Session{conn: conn, loop: loop, handlers: handlers}
	go s.readPump()
	return s, nil
}

func (s *Session) readPump() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.signalClose(err)
			return
		}
		msg := data
		s.loop.Post(func() {
			if s.handlers.OnMessage != nil {
				s.handlers.OnMessage(msg)
			}
		})
	}
}

// Send writes one JSON text frame. Callers all live on the run loop, so
// writes are naturally serialized.
func (s *Session) Send(v any) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}
	return s.conn.WriteJSON(v)
}

// Close force-closes the connection. The close signal still fires exactly
// once, via the read pump noticing the closed socket.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Session) signalClose(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.loop.Post(func() {
			if s.handlers.OnClose != nil {
				s.handlers.OnClose(err)
			}
		})
	})
}
