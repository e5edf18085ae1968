package server

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"
)

// wireConn abstracts one client connection: a message is one JSON object,
// carried as one \n-terminated line on a TCP stream or one text frame on a
// websocket.
type wireConn interface {
	// ReadMessage blocks for the next inbound message.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one message.
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() string
}

// tcpWire frames messages as newline-delimited JSON over a plain TCP
// connection.
type tcpWire struct {
	conn net.Conn
	r    *bufio.Reader
	wmu  sync.Mutex
}

func newTCPWire(conn net.Conn) *tcpWire {
	return &tcpWire{conn: conn, r: bufio.NewReader(conn)}
}

func (w *tcpWire) ReadMessage() ([]byte, error) {
	line, err := w.r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (w *tcpWire) WriteMessage(data []byte) error {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	if _, err := w.conn.Write(data); err != nil {
		return err
	}
	_, err := w.conn.Write([]byte{'\n'})
	return err
}

func (w *tcpWire) Close() error       { return w.conn.Close() }
func (w *tcpWire) RemoteAddr() string { return w.conn.RemoteAddr().String() }

// wsWire carries the same JSON envelope, one object per websocket text
// frame.
type wsWire struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func newWSWire(conn *websocket.Conn) *wsWire {
	return &wsWire{conn: conn}
}

func (w *wsWire) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *wsWire) WriteMessage(data []byte) error {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsWire) Close() error       { return w.conn.Close() }
func (w *wsWire) RemoteAddr() string { return w.conn.RemoteAddr().String() }

// outboxSize bounds the per-session send queue. A session that falls this
// far behind starts losing broadcasts rather than stalling the lobby.
const outboxSize = 64

// session is one connected client. The server's read loop is the only
// writer of userID/lobby; the lobby actor reaches a session only through
// send, which is safe from any goroutine.
type session struct {
	conn wireConn
	log  slog.Logger

	userID string
	name   string
	lobby  *Lobby

	out       chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(conn wireConn, log slog.Logger) *session {
	s := &session{
		conn:   conn,
		log:    log,
		out:    make(chan []byte, outboxSize),
		closed: make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// writeLoop drains the outbox so broadcasting never blocks on a slow
// client's socket.
func (s *session) writeLoop() {
	for {
		select {
		case data := <-s.out:
			if err := s.conn.WriteMessage(data); err != nil {
				s.log.Debugf("write to %s failed: %v", s.conn.RemoteAddr(), err)
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

// send marshals and queues one outbound message. Delivery is fire and
// forget: a full outbox or a closed session drops the message.
func (s *session) send(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Errorf("marshal outbound message: %v", err)
		return
	}
	select {
	case s.out <- data:
	case <-s.closed:
	default:
		s.log.Warnf("outbox full for %s, dropping message", s.conn.RemoteAddr())
	}
}

// sendError reports a validation failure to this client only.
func (s *session) sendError(err error) {
	s.send(errorMsg{Type: msgError, Message: err.Error()})
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close()
	})
}
