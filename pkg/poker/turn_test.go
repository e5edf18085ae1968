package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// seatPlayers fills the first n seats of a limit-seat table with active
// players holding 100 chips.
func seatPlayers(limit, n int) []*Player {
	players := make([]*Player, limit)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer("p"+string(rune('0'+i)), "player", i, 100)
	}
	return players
}

func TestNextActiveSkipsIneligibleSeats(t *testing.T) {
	players := seatPlayers(6, 4)
	require.NoError(t, players[1].SetStatus(StatusFolded))
	require.NoError(t, players[2].SetStatus(StatusAllIn))
	to := newTurnOrder(players)

	require.Equal(t, 3, to.nextActive(0, false), "folded and all-in seats are skipped")
	require.Equal(t, 0, to.nextActive(3, false), "walk wraps past the empty seats")
	require.Equal(t, 0, to.nextActive(0, true))
	require.Equal(t, 3, to.previousActive(0, false))
}

func TestNextActiveNobodyEligible(t *testing.T) {
	players := seatPlayers(6, 2)
	require.NoError(t, players[0].SetStatus(StatusAllIn))
	require.NoError(t, players[1].SetStatus(StatusAllIn))
	to := newTurnOrder(players)

	require.Equal(t, noSeat, to.nextActive(0, true))
	require.Equal(t, noSeat, to.previousActive(0, true))
	require.Equal(t, noSeat, to.nextActive(noSeat, false), "the sentinel itself is a legal walk origin")
}

func TestNextContenderIncludesAllIn(t *testing.T) {
	players := seatPlayers(6, 3)
	require.NoError(t, players[1].SetStatus(StatusAllIn))
	require.NoError(t, players[2].SetStatus(StatusBusted))
	to := newTurnOrder(players)

	require.Equal(t, 1, to.nextContender(0, false), "dealer rotation lands on all-in seats")
	require.Equal(t, 0, to.nextContender(1, false), "but never on busted ones")
}

func TestRotatePositionsThreeHanded(t *testing.T) {
	players := seatPlayers(3, 3)
	to := newTurnOrder(players)

	to.rotatePositions()
	require.Equal(t, 0, to.Dealer)
	require.Equal(t, 1, to.SmallBlind)
	require.Equal(t, 2, to.BigBlind)
	require.True(t, players[0].IsDealer)
	require.True(t, players[1].IsSmallBlind)
	require.True(t, players[2].IsBigBlind)

	to.rotatePositions()
	require.Equal(t, 1, to.Dealer)
	require.Equal(t, 2, to.SmallBlind)
	require.Equal(t, 0, to.BigBlind)
}

func TestRotatePositionsHeadsUp(t *testing.T) {
	players := seatPlayers(3, 2)
	to := newTurnOrder(players)

	to.rotatePositions()
	require.Equal(t, 0, to.Dealer)
	require.Equal(t, 0, to.SmallBlind, "heads-up, the dealer posts the small blind")
	require.Equal(t, 1, to.BigBlind)

	to.rotatePositions()
	require.Equal(t, 1, to.Dealer)
	require.Equal(t, 1, to.SmallBlind)
	require.Equal(t, 0, to.BigBlind)
}

func TestBeginRoundBoundaries(t *testing.T) {
	players := seatPlayers(4, 4)
	to := newTurnOrder(players)
	to.rotatePositions() // dealer 0, sb 1, bb 2

	to.beginRound(RoundPreflop)
	require.Equal(t, 3, to.FirstToAct, "preflop opens after the big blind")
	require.Equal(t, 2, to.LastToAct, "preflop closes on the big blind")
	require.Equal(t, to.FirstToAct, to.Current)

	to.beginRound(RoundFlop)
	require.Equal(t, 1, to.FirstToAct, "postflop opens after the dealer")
	require.Equal(t, 0, to.LastToAct, "postflop closes before the small blind")

	// The flop's opener folds; the turn re-resolves the boundary.
	require.NoError(t, players[1].SetStatus(StatusFolded))
	to.beginRound(RoundTurn)
	require.Equal(t, 2, to.FirstToAct)
	require.Equal(t, 0, to.LastToAct)
}

func TestIsRoundOverConditions(t *testing.T) {
	t.Run("lone non-all-in player who acted", func(t *testing.T) {
		players := seatPlayers(3, 3)
		require.NoError(t, players[0].SetStatus(StatusAllIn))
		require.NoError(t, players[1].SetStatus(StatusAllIn))
		to := newTurnOrder(players)
		to.FirstToAct = 2

		require.False(t, to.isRoundOver())
		to.markActed(2)
		require.True(t, to.isRoundOver())
	})

	t.Run("all non-all-in players acted with equal bets", func(t *testing.T) {
		players := seatPlayers(3, 3)
		to := newTurnOrder(players)
		to.FirstToAct = 0
		for _, p := range players {
			p.CurrentBet = 10
		}

		to.markActed(0)
		to.markActed(1)
		require.False(t, to.isRoundOver())
		to.markActed(2)
		require.True(t, to.isRoundOver())

		// A raise reopens the action.
		players[2].CurrentBet = 30
		to.resetActedTo(2)
		require.False(t, to.isRoundOver())
	})

	t.Run("unmatched bet keeps the round open", func(t *testing.T) {
		players := seatPlayers(3, 3)
		to := newTurnOrder(players)
		to.FirstToAct = 0
		players[0].CurrentBet = 10
		players[1].CurrentBet = 30
		players[2].CurrentBet = 30
		to.markActed(0)
		to.markActed(1)
		to.markActed(2)

		require.False(t, to.isRoundOver())
		players[0].CurrentBet = 30
		require.True(t, to.isRoundOver())
	})

	t.Run("all-in players count once everyone acted", func(t *testing.T) {
		players := seatPlayers(3, 3)
		require.NoError(t, players[1].SetStatus(StatusAllIn))
		players[0].CurrentBet = 20
		players[1].CurrentBet = 20
		players[2].CurrentBet = 20
		to := newTurnOrder(players)
		to.FirstToAct = 0

		to.markActed(0)
		to.markActed(1)
		to.markActed(2)
		require.True(t, to.isRoundOver())
	})
}

func TestShouldFastForward(t *testing.T) {
	players := seatPlayers(3, 3)
	to := newTurnOrder(players)
	require.False(t, to.shouldFastForward())

	require.NoError(t, players[0].SetStatus(StatusAllIn))
	require.False(t, to.shouldFastForward(), "two players can still bet against each other")

	require.NoError(t, players[1].SetStatus(StatusAllIn))
	require.True(t, to.shouldFastForward(), "one live bettor against all-ins has nobody to bet with")

	require.NoError(t, players[2].SetStatus(StatusFolded))
	require.True(t, to.shouldFastForward(), "two all-ins still contest the pot")
}

func TestHandleBoundaryDeparture(t *testing.T) {
	players := seatPlayers(4, 4)
	to := newTurnOrder(players)
	to.rotatePositions()
	to.beginRound(RoundFlop) // first 1, last 0

	to.markActed(1)
	require.NoError(t, players[1].SetStatus(StatusFolded))
	to.handleBoundaryDeparture(1)

	require.False(t, to.acted[1], "departed seats drop out of the acted set")
	require.Equal(t, 2, to.FirstToAct)
	require.Equal(t, 0, to.LastToAct)

	require.NoError(t, players[0].SetStatus(StatusFolded))
	to.handleBoundaryDeparture(0)
	require.Equal(t, 3, to.LastToAct)
}
