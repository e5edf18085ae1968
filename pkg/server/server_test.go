package server

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// pipeClient is one side of an in-memory connection whose other side is
// served by the server's read loop, framed exactly like a TCP client.
type pipeClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dialPipe(t *testing.T, srv *Server) *pipeClient {
	t.Helper()
	client, server := net.Pipe()
	go srv.handleConn(newTCPWire(server))
	t.Cleanup(func() { client.Close() })
	return &pipeClient{conn: client, r: bufio.NewReader(client)}
}

func (c *pipeClient) write(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, c.conn.SetWriteDeadline(time.Now().Add(5*time.Second)))
	_, err = c.conn.Write(append(data, '\n'))
	require.NoError(t, err)
}

func (c *pipeClient) read(t *testing.T) map[string]any {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	line, err := c.r.ReadBytes('\n')
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(line, &msg))
	return msg
}

// readUntil discards messages until one of the wanted type arrives. Lobby
// membership changes rebroadcast state, so clients routinely skip past
// stale snapshots.
func (c *pipeClient) readUntil(t *testing.T, msgType string) map[string]any {
	t.Helper()
	for i := 0; i < 32; i++ {
		msg := c.read(t)
		if msg["type"] == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message within 32 reads", msgType)
	return nil
}

func testServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	st := newMemStore()
	srv, err := NewServer(Config{Store: st, Seed: 1})
	require.NoError(t, err)
	return srv, st
}

func TestServerFullGameOverPipe(t *testing.T) {
	srv, st := testServer(t)

	c1 := dialPipe(t, srv)
	c1.write(t, map[string]any{
		"type": "create_lobby", "user_id": "u1", "name": "alice",
		"player_limit": 3, "small_blind": 5, "big_blind": 10,
		"starting_chips": 200,
	})
	created := c1.readUntil(t, "lobby_created")
	lobbyID, ok := created["lobby_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, lobbyID)
	require.Equal(t, 1, srv.LobbyCount())
	require.Equal(t, LobbyStatusInProgress, st.status(lobbyID))

	c2 := dialPipe(t, srv)
	c2.write(t, map[string]any{
		"type": "join_lobby", "lobby_id": lobbyID, "user_id": "u2", "name": "bob",
	})
	c3 := dialPipe(t, srv)
	c3.write(t, map[string]any{
		"type": "join_lobby", "lobby_id": lobbyID, "user_id": "u3", "name": "carol",
	})

	// The third seat fills the table and the first hand starts.
	var state map[string]any
	for {
		msg := c1.readUntil(t, "initial_state")
		state = msg["game_state"].(map[string]any)
		if state["started"] == true {
			break
		}
	}

	// Each client sees only its own hole cards.
	players := state["players"].([]any)
	require.Len(t, players, 3)
	for _, p := range players {
		pv := p.(map[string]any)
		if pv["id"] == "u1" {
			require.Len(t, pv["hand"], 2)
		} else {
			require.Nil(t, pv["hand"])
		}
	}

	// Seat 0 is both dealer and first to act three-handed, so a bet from
	// anyone else bounces without touching the game.
	c2.write(t, map[string]any{"type": "bet", "action": "fold"})
	errMsg := c2.readUntil(t, "error")
	require.Contains(t, errMsg["message"], "not your turn")

	c1.write(t, map[string]any{"type": "hand_odds", "samples": 50})
	odds := c1.readUntil(t, "hand_odds")
	require.NotEmpty(t, odds["odds"])

	// Disconnects, not leave messages: the read loop turns each closed
	// pipe into a departure and the lobby tears down once alone.
	require.NoError(t, c1.conn.Close())
	require.NoError(t, c2.conn.Close())
	require.NoError(t, c3.conn.Close())
	require.Eventually(t, func() bool { return srv.LobbyCount() == 0 },
		5*time.Second, 10*time.Millisecond)
}

func TestServerRejectsBadMessages(t *testing.T) {
	srv, _ := testServer(t)

	c := dialPipe(t, srv)
	c.write(t, map[string]any{"type": "teleport"})
	msg := c.read(t)
	require.Equal(t, "error", msg["type"])
	require.Contains(t, msg["message"], "unknown message type")

	// Lobby commands from a connection that never joined one.
	c.write(t, map[string]any{"type": "bet", "action": "call"})
	msg = c.read(t)
	require.Equal(t, "error", msg["type"])
	require.Contains(t, msg["message"], "not in a lobby")

	c.write(t, map[string]any{
		"type": "join_lobby", "lobby_id": "nope", "user_id": "u1",
	})
	msg = c.read(t)
	require.Equal(t, "error", msg["type"])
	require.Contains(t, msg["message"], "lobby not found")

	c.write(t, map[string]any{"type": "create_lobby"})
	msg = c.read(t)
	require.Equal(t, "error", msg["type"])
	require.Contains(t, msg["message"], "user_id is required")
}

func TestNewServerRequiresStore(t *testing.T) {
	_, err := NewServer(Config{})
	require.Error(t, err)
}

func TestGameConfigDefaults(t *testing.T) {
	srv, _ := testServer(t)

	cfg := srv.gameConfig(CreateLobbyMsg{})
	require.Equal(t, 6, cfg.PlayerLimit)
	require.Equal(t, int64(1000), cfg.StartingChips)
	require.Equal(t, int64(10), cfg.SmallBlind)
	require.Equal(t, int64(20), cfg.BigBlind)

	cfg = srv.gameConfig(CreateLobbyMsg{PlayerLimit: 4, BigBlind: 50})
	require.Equal(t, 4, cfg.PlayerLimit)
	require.Equal(t, int64(1000), cfg.StartingChips)
	require.Equal(t, int64(10), cfg.SmallBlind)
	require.Equal(t, int64(50), cfg.BigBlind)
}
