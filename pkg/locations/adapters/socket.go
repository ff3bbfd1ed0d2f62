package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/toyz/locations/pkg/locations"
)

// wsConn is the subset of gorilla and fasthttp websocket connections a
// session needs.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// closeReader extracts the close code and reason from a read error.
type closeReader func(err error) (code int, reason string, ok bool)

func gorillaCloseReader(err error) (int, string, bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}
	return 0, "", false
}

// socketSession implements locations.SocketContext over one connection.
type socketSession struct {
	id     string
	path   string
	params map[string]string
	query  map[string][]string
	conn   wsConn
	opts   options

	ctx    context.Context
	cancel context.CancelFunc

	writeMu   sync.Mutex
	closeOnce sync.Once

	valuesMu sync.RWMutex
	values   map[string]any
}

func newSocketSession(parent context.Context, conn wsConn, path string, params map[string]string, query map[string][]string, opts options) *socketSession {
	ctx, cancel := context.WithCancel(parent)
	if params == nil {
		params = map[string]string{}
	}
	if query == nil {
		query = map[string][]string{}
	}
	return &socketSession{
		id:     uuid.NewString(),
		path:   path,
		params: params,
		query:  query,
		conn:   conn,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		values: make(map[string]any),
	}
}

func (s *socketSession) Context() context.Context { return s.ctx }
func (s *socketSession) SessionID() string { return s.id }
func (s *socketSession) Path() string { return s.path }
func (s *socketSession) PathParams() map[string]string { return s.params }
func (s *socketSession) QueryParams() map[string][]string { return s.query }

func (s *socketSession) Send(message string) error {
	return s.write(websocket.TextMessage, []byte(message))
}

func (s *socketSession) SendBinary(data []byte) error {
	return s.write(websocket.BinaryMessage, data)
}

func (s *socketSession) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.opts.writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// Close sends a close frame; the read loop observes the peer's reply and
// finishes the session.
func (s *socketSession) Close(code int, reason string) error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		err = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(s.opts.writeWait))
	})
	return err
}

func (s *socketSession) Get(key string) any {
	s.valuesMu.RLock()
	defer s.valuesMu.RUnlock()
	return s.values[key]
}

func (s *socketSession) Set(key string, value any) {
	s.valuesMu.Lock()
	defer s.valuesMu.Unlock()
	s.values[key] = value
}

// serve runs the session until the connection ends. Events are delivered to
// handler from this goroutine only.
func (s *socketSession) serve(handler locations.SocketHandler, readClose closeReader) {
	defer s.conn.Close()
	defer s.cancel()

	logger := s.opts.logger.With("session", s.id, "path", s.path)
	if s.opts.pongWait > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.opts.pongWait)); err != nil {
			logger.Debug("socket set read deadline failed", "error", err)
			return
		}
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(s.opts.pongWait))
		})
		go s.ping()
	}

	logger.Debug("socket connected")
	handler.OnConnect(s)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			code, reason, ok := readClose(err)
			if !ok {
				handler.OnError(s, err)
				code, reason = websocket.CloseAbnormalClosure, err.Error()
			}
			logger.Debug("socket closed", "code", code, "reason", reason)
			handler.OnClose(s, code, reason)
			return
		}

		switch messageType {
		case websocket.TextMessage:
			handler.OnMessage(s, string(data))
		case websocket.BinaryMessage:
			handler.OnBinaryMessage(s, data)
		}
	}
}

func (s *socketSession) ping() {
	ticker := time.NewTicker(max(s.opts.pongWait*9/10, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.opts.writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
