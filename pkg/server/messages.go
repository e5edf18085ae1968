package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vctt94/holdem/pkg/poker"
)

// ErrUnknownMessageType is returned for inbound messages whose type field
// names no known operation. The sender gets an error message back; the
// lobby never sees the message.
var ErrUnknownMessageType = errors.New("server: unknown message type")

// Inbound message types.
const (
	msgCreateLobby    = "create_lobby"
	msgJoinLobby      = "join_lobby"
	msgLeaveLobby     = "leave_lobby"
	msgBet            = "bet"
	msgStartNextRound = "start_next_round"
	msgHandOdds       = "hand_odds"
)

// Outbound message types. These strings are the wire contract; clients
// switch on them.
const (
	msgInitialState    = "initial_state"
	msgUpdateGameState = "update_game_state"
	msgUpdateShowdown  = "update_showdown_state"
	msgUpdateCompleted = "update_completed_state"
	msgPlayerLeft      = "player_left_game_state"
	msgLobbyCreated    = "lobby_created"
	msgHandOddsResult  = "hand_odds"
	msgError           = "error"
)

// inboundMessage is the closed set of client messages. Decoding yields
// exactly one of the concrete types below.
type inboundMessage interface {
	inbound()
}

// CreateLobbyMsg opens a new lobby and seats the sender in it.
type CreateLobbyMsg struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	PlayerLimit   int    `json:"player_limit"`
	SmallBlind    int64  `json:"small_blind"`
	BigBlind      int64  `json:"big_blind"`
	StartingChips int64  `json:"starting_chips"`
}

// JoinLobbyMsg seats the sender in an existing lobby, or reconnects them if
// the game already started and their seat is marked disconnected.
type JoinLobbyMsg struct {
	LobbyID string `json:"lobby_id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
}

// BetMsg is a betting action: fold, call (checks are zero-diff calls) or
// raise with an amount.
type BetMsg struct {
	Action string `json:"action"`
	Amount int64  `json:"amount"`
}

// LeaveLobbyMsg removes the sender from their lobby.
type LeaveLobbyMsg struct{}

// StartNextRoundMsg asks for the next hand after a showdown settled.
type StartNextRoundMsg struct{}

// HandOddsMsg asks for the sender's current hand-odds estimate.
type HandOddsMsg struct {
	Samples int `json:"samples"`
}

func (CreateLobbyMsg) inbound()    {}
func (JoinLobbyMsg) inbound()      {}
func (BetMsg) inbound()            {}
func (LeaveLobbyMsg) inbound()     {}
func (StartNextRoundMsg) inbound() {}
func (HandOddsMsg) inbound()       {}

// decodeInbound parses one wire line into its concrete message type.
func decodeInbound(data []byte) (inboundMessage, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("server: malformed message: %w", err)
	}

	switch envelope.Type {
	case msgCreateLobby:
		var msg CreateLobbyMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("server: malformed %s: %w", envelope.Type, err)
		}
		return msg, nil
	case msgJoinLobby:
		var msg JoinLobbyMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("server: malformed %s: %w", envelope.Type, err)
		}
		return msg, nil
	case msgBet:
		var msg BetMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("server: malformed %s: %w", envelope.Type, err)
		}
		return msg, nil
	case msgLeaveLobby:
		return LeaveLobbyMsg{}, nil
	case msgStartNextRound:
		return StartNextRoundMsg{}, nil
	case msgHandOdds:
		var msg HandOddsMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("server: malformed %s: %w", envelope.Type, err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, envelope.Type)
	}
}

// playerInfo is the join-time metadata attached to initial state broadcasts.
type playerInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

type initialStateMsg struct {
	Type      string         `json:"type"`
	LobbyID   string         `json:"lobby_id"`
	GameState poker.GameView `json:"game_state"`
	Players   []playerInfo   `json:"players"`
}

type gameStateMsg struct {
	Type      string         `json:"type"`
	LobbyID   string         `json:"lobby_id"`
	GameState poker.GameView `json:"game_state"`
	SkipRound bool           `json:"skip_round,omitempty"`
	Summary   string         `json:"summary,omitempty"`
}

type potResultJSON struct {
	Amount  int64    `json:"amount"`
	Winners []string `json:"winners"`
	Summary string   `json:"summary"`
}

type showdownStateMsg struct {
	Type      string          `json:"type"`
	LobbyID   string          `json:"lobby_id"`
	GameState poker.GameView  `json:"game_state"`
	Pots      []potResultJSON `json:"pots"`
}

type standing struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	FinishPlace int             `json:"finish_place"`
	Chips       int64           `json:"chips"`
	Stats       poker.HandStats `json:"stats"`
}

type completedStateMsg struct {
	Type      string         `json:"type"`
	LobbyID   string         `json:"lobby_id"`
	GameState poker.GameView `json:"game_state"`
	Standings []standing     `json:"standings"`
}

type playerLeftMsg struct {
	Type      string         `json:"type"`
	LobbyID   string         `json:"lobby_id"`
	UserID    string         `json:"user_id"`
	GameState poker.GameView `json:"game_state"`
}

type lobbyCreatedMsg struct {
	Type    string `json:"type"`
	LobbyID string `json:"lobby_id"`
}

type handOddsResultMsg struct {
	Type string             `json:"type"`
	Odds map[string]float64 `json:"odds"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
