package server

import (
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vctt94/holdem/pkg/poker"
)

// Config holds the server's collaborators and the defaults applied to
// lobbies whose create message leaves a field zero.
type Config struct {
	Store   Store
	Log     slog.Logger // server and lobby logging
	GameLog slog.Logger // engine logging, usually a separate tag

	PlayerLimit   int
	StartingChips int64
	SmallBlind    int64
	BigBlind      int64
	Seed          int64 // nonzero pins every lobby's deck, for tests
}

// Server accepts client connections, routes their messages into lobby
// actors and keeps the lobby registry. The registry map has its own mutex;
// it is never held while a lobby processes a command, so lobbies stay
// independent of each other.
type Server struct {
	cfg Config
	log slog.Logger

	mu      sync.RWMutex
	lobbies map[string]*Lobby

	upgrader websocket.Upgrader
}

// NewServer creates a server around a store.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.GameLog == nil {
		cfg.GameLog = cfg.Log
	}
	if cfg.PlayerLimit == 0 {
		cfg.PlayerLimit = 6
	}
	if cfg.StartingChips == 0 {
		cfg.StartingChips = 1000
	}
	if cfg.SmallBlind == 0 {
		cfg.SmallBlind = 10
	}
	if cfg.BigBlind == 0 {
		cfg.BigBlind = 20
	}

	return &Server{
		cfg:     cfg,
		log:     cfg.Log,
		lobbies: make(map[string]*Lobby),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// Serve accepts connections on the listener until it is closed. Each
// connection gets its own read goroutine.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Infof("listening on %s", lis.Addr())
	for {
		conn, err := lis.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(newTCPWire(conn))
	}
}

// WSHandler returns an http handler that upgrades requests to websocket
// connections carrying the same message envelope, one object per frame.
func (s *Server) WSHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debugf("websocket upgrade from %s failed: %v", r.RemoteAddr, err)
			return
		}
		go s.handleConn(newWSWire(conn))
	})
}

// handleConn is the per-connection read loop. A read failure is a
// disconnect: it becomes a depart command on the session's lobby, never a
// direct mutation.
func (s *Server) handleConn(conn wireConn) {
	sess := newSession(conn, s.log)
	s.log.Debugf("connection from %s", conn.RemoteAddr())

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.log.Debugf("connection %s closed: %v", conn.RemoteAddr(), err)
			break
		}
		s.handleMessage(sess, data)
	}

	if sess.lobby != nil && sess.userID != "" {
		sess.lobby.enqueue(cmdDepart{sess: sess, userID: sess.userID})
	}
	sess.close()
}

func (s *Server) handleMessage(sess *session, data []byte) {
	msg, err := decodeInbound(data)
	if err != nil {
		sess.sendError(err)
		return
	}

	switch m := msg.(type) {
	case CreateLobbyMsg:
		s.handleCreateLobby(sess, m)
	case JoinLobbyMsg:
		s.handleJoinLobby(sess, m)
	case BetMsg:
		s.toLobby(sess, cmdBet{userID: sess.userID, action: m.Action, amount: m.Amount})
	case LeaveLobbyMsg:
		if s.toLobby(sess, cmdLeave{userID: sess.userID}) {
			sess.lobby = nil
		}
	case StartNextRoundMsg:
		s.toLobby(sess, cmdStartNext{userID: sess.userID})
	case HandOddsMsg:
		s.toLobby(sess, cmdOdds{userID: sess.userID, samples: m.Samples})
	}
}

func (s *Server) handleCreateLobby(sess *session, m CreateLobbyMsg) {
	if m.UserID == "" {
		sess.sendError(fmt.Errorf("server: user_id is required"))
		return
	}
	if sess.lobby != nil {
		sess.sendError(fmt.Errorf("server: already in a lobby"))
		return
	}

	id := uuid.NewString()
	lobby, err := newLobby(id, s.gameConfig(m), s.cfg.Store, s.log, s.removeLobby)
	if err != nil {
		sess.sendError(err)
		return
	}

	s.mu.Lock()
	s.lobbies[id] = lobby
	s.mu.Unlock()

	if err := s.cfg.Store.SetLobbyStatus(id, LobbyStatusInProgress); err != nil {
		s.log.Warnf("set lobby %s status: %v", id, err)
	}
	s.log.Infof("lobby %s created by %s", id, m.UserID)

	sess.userID = m.UserID
	sess.name = m.Name
	sess.lobby = lobby
	sess.send(lobbyCreatedMsg{Type: msgLobbyCreated, LobbyID: id})
	lobby.enqueue(cmdJoin{sess: sess, userID: m.UserID, name: m.Name})
}

func (s *Server) handleJoinLobby(sess *session, m JoinLobbyMsg) {
	if m.UserID == "" {
		sess.sendError(fmt.Errorf("server: user_id is required"))
		return
	}
	lobby := s.lobby(m.LobbyID)
	if lobby == nil {
		sess.sendError(ErrLobbyNotFound)
		return
	}

	sess.userID = m.UserID
	sess.name = m.Name
	sess.lobby = lobby
	if !lobby.enqueue(cmdJoin{sess: sess, userID: m.UserID, name: m.Name}) {
		sess.lobby = nil
		sess.sendError(ErrLobbyNotFound)
	}
}

// toLobby forwards a command to the session's lobby, reporting whether it
// was accepted. A session without a lobby, or whose lobby shut down, gets
// an error message instead.
func (s *Server) toLobby(sess *session, cmd lobbyCmd) bool {
	if sess.lobby == nil || sess.userID == "" {
		sess.sendError(fmt.Errorf("server: not in a lobby"))
		return false
	}
	if !sess.lobby.enqueue(cmd) {
		sess.lobby = nil
		sess.sendError(ErrLobbyNotFound)
		return false
	}
	return true
}

func (s *Server) gameConfig(m CreateLobbyMsg) poker.GameConfig {
	cfg := poker.GameConfig{
		Log:           s.cfg.GameLog,
		PlayerLimit:   m.PlayerLimit,
		StartingChips: m.StartingChips,
		SmallBlind:    m.SmallBlind,
		BigBlind:      m.BigBlind,
		Seed:          s.cfg.Seed,
	}
	if cfg.PlayerLimit == 0 {
		cfg.PlayerLimit = s.cfg.PlayerLimit
	}
	if cfg.StartingChips == 0 {
		cfg.StartingChips = s.cfg.StartingChips
	}
	if cfg.SmallBlind == 0 {
		cfg.SmallBlind = s.cfg.SmallBlind
	}
	if cfg.BigBlind == 0 {
		cfg.BigBlind = s.cfg.BigBlind
	}
	return cfg
}

func (s *Server) lobby(id string) *Lobby {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lobbies[id]
}

func (s *Server) removeLobby(id string) {
	s.mu.Lock()
	delete(s.lobbies, id)
	s.mu.Unlock()
}

// LobbyCount returns the number of live lobbies.
func (s *Server) LobbyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lobbies)
}
