package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	p := NewPlayer("p1", "alice", 0, 100)
	require.Equal(t, StatusActive, p.Status())

	// Active -> Folded -> Active is only legal through a new hand, which
	// SetStatus allows; Busted is terminal from everywhere.
	require.NoError(t, p.SetStatus(StatusFolded))
	require.NoError(t, p.SetStatus(StatusActive))
	require.NoError(t, p.SetStatus(StatusAllIn))
	require.NoError(t, p.SetStatus(StatusDisconnected))
	require.NoError(t, p.SetStatus(StatusFolded))
	require.NoError(t, p.SetStatus(StatusBusted))

	require.Error(t, p.SetStatus(StatusActive), "busted is terminal")
	require.Error(t, p.SetStatus(StatusFolded), "busted is terminal")
	require.NoError(t, p.SetStatus(StatusBusted), "setting the current status is a no-op")
}

func TestStatusPredicates(t *testing.T) {
	require.True(t, StatusActive.CanAct())
	require.False(t, StatusAllIn.CanAct())
	require.False(t, StatusFolded.CanAct())
	require.False(t, StatusDisconnected.CanAct())

	require.True(t, StatusActive.InShowdown())
	require.True(t, StatusAllIn.InShowdown())
	require.False(t, StatusFolded.InShowdown())
	require.False(t, StatusBusted.InShowdown())
	require.False(t, StatusDisconnected.InShowdown())
}

func TestPayChipsCapsAtStack(t *testing.T) {
	p := NewPlayer("p1", "alice", 0, 30)

	paid := p.payChips(10)
	require.Equal(t, int64(10), paid)
	require.Equal(t, int64(20), p.Chips)
	require.Equal(t, StatusActive, p.Status())

	paid = p.payChips(50)
	require.Equal(t, int64(20), paid, "payment caps at the remaining stack")
	require.Equal(t, int64(0), p.Chips)
	require.Equal(t, StatusAllIn, p.Status())
	require.Equal(t, int64(30), p.CurrentBet)
	require.Equal(t, int64(30), p.Contributed)
	require.Equal(t, 1, p.Stats.WentAllIn)
}

func TestResetForNewHand(t *testing.T) {
	p := NewPlayer("p1", "alice", 0, 100)
	p.Hand = []Card{NewCard(Ace, Spades), NewCard(King, Hearts)}
	p.CurrentBet = 10
	p.Contributed = 40
	p.IsDealer = true
	p.WonRound = true
	require.NoError(t, p.SetStatus(StatusAllIn))

	p.ResetForNewHand()
	require.Empty(t, p.Hand)
	require.Zero(t, p.CurrentBet)
	require.Zero(t, p.Contributed)
	require.False(t, p.IsDealer)
	require.False(t, p.WonRound)
	require.Equal(t, StatusActive, p.Status())

	// Disconnected players stay disconnected across hands.
	require.NoError(t, p.SetStatus(StatusDisconnected))
	p.ResetForNewHand()
	require.Equal(t, StatusDisconnected, p.Status())
}

func TestSeatNames(t *testing.T) {
	require.Equal(t, "bottom_center", SeatName(0))
	require.Equal(t, "bottom_right", SeatName(MaxSeats-1))
	require.Equal(t, "", SeatName(-1))
	require.Equal(t, "", SeatName(MaxSeats))
}
