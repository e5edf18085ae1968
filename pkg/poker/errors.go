package poker

import "errors"

// Validation errors are returned to the acting client only; they never
// mutate state and never reach the other players.
var (
	// ErrGameNotStarted is returned for actions sent before the first hand.
	ErrGameNotStarted = errors.New("poker: game has not started")
	// ErrNotYourTurn is returned when the actor is not the seat the turn
	// order points at.
	ErrNotYourTurn = errors.New("poker: not your turn to act")
	// ErrAlreadyFolded is returned when a folded (or disconnected, which
	// plays as folded) player tries to act.
	ErrAlreadyFolded = errors.New("poker: player already folded")
	// ErrInsufficientRaise is returned when a raise is non-positive or does
	// not exceed the current highest bet.
	ErrInsufficientRaise = errors.New("poker: raise does not exceed current bet")
	// ErrInsufficientChips is returned when a raise exceeds the player's
	// stack.
	ErrInsufficientChips = errors.New("poker: not enough chips")
	// ErrUnknownPlayer is returned when the acting player has no seat in
	// the game.
	ErrUnknownPlayer = errors.New("poker: player not in game")
	// ErrGameFull is returned when every seat is taken.
	ErrGameFull = errors.New("poker: game is full")
	// ErrGameStarted is returned when a new seat is requested after the
	// first hand was dealt.
	ErrGameStarted = errors.New("poker: game already started")
	// ErrUnknownAction is returned when the action string is not one of
	// fold, call or raise. Clients send these straight off the wire.
	ErrUnknownAction = errors.New("poker: unknown action")

	// ErrGameComplete is the sentinel returned by StartHand when at most
	// one contender remains. Callers must treat it as "run the
	// game-completion bookkeeping", not as a failure.
	ErrGameComplete = errors.New("poker: game complete")
)
