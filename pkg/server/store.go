package server

import (
	"errors"

	"github.com/vctt94/holdem/pkg/poker"
)

// Lobby registry errors.
var (
	ErrLobbyNotFound = errors.New("server: lobby not found")
	ErrLobbyFull     = errors.New("server: lobby is full")
)

// Lobby statuses persisted at teardown.
const (
	LobbyStatusInProgress = "in_progress"
	LobbyStatusCompleted  = "completed"
	LobbyStatusAbandoned  = "abandoned"
)

// PlayerResult is one player's line in a recorded hand result.
type PlayerResult struct {
	UserID   string
	Name     string
	Chips    int64
	WonRound bool
	Stats    poker.HandStats
}

// HandResult is the persisted outcome of one settled hand.
type HandResult struct {
	HandNum   int
	Summaries []string
	Players   []PlayerResult
}

// Store is the persistence collaborator. Every method may fail without
// affecting the live game: callers log the error and move on, player
// experience never depends on statistics recording.
type Store interface {
	// RecordHandResult persists one settled hand.
	RecordHandResult(lobbyID string, result *HandResult) error
	// GetUsername returns the stored display name for a user, if any.
	GetUsername(userID string) (string, error)
	// GetProfilePicture returns the stored profile picture reference for a
	// user, if any.
	GetProfilePicture(userID string) (string, error)
	// SetLobbyStatus records the lobby lifecycle state.
	SetLobbyStatus(lobbyID, status string) error
	// Close releases the underlying resources.
	Close() error
}
