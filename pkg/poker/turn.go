package poker

// Round is a betting round of a hand. Rounds advance strictly
// preflop -> flop -> turn -> river -> showdown; a new hand resets to preflop.
type Round int

const (
	RoundPreflop Round = iota
	RoundFlop
	RoundTurn
	RoundRiver
	RoundShowdown
)

func (r Round) String() string {
	switch r {
	case RoundPreflop:
		return "preflop"
	case RoundFlop:
		return "flop"
	case RoundTurn:
		return "turn"
	case RoundRiver:
		return "river"
	case RoundShowdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// noSeat signals that a cyclic seat walk found nobody eligible, meaning the
// hand must fast-forward to showdown instead of waiting for an action that
// can never come.
const noSeat = -1

// turnOrder tracks dealer and blind rotation, whose turn it is, the seats
// that open and close each betting round, and round completion. It operates
// on the game's seat list and is driven exclusively by the owning Game.
type turnOrder struct {
	players []*Player // shared with the Game; nil entries are empty seats

	Dealer     int
	SmallBlind int
	BigBlind   int

	Current    int
	FirstToAct int
	LastToAct  int

	HighestBet int64

	acted map[int]bool // seats that have acted in the current betting round
}

func newTurnOrder(players []*Player) *turnOrder {
	return &turnOrder{
		players: players,
		Dealer:  len(players) - 1, // first rotation lands the dealer on seat 0
		acted:   make(map[int]bool),
	}
}

// canAct reports whether the seat holds a player who may take an action.
func (to *turnOrder) canAct(seat int) bool {
	if seat < 0 || seat >= len(to.players) || to.players[seat] == nil {
		return false
	}
	return to.players[seat].Status().CanAct()
}

// inShowdown reports whether the seat holds a player who contests showdown.
func (to *turnOrder) inShowdown(seat int) bool {
	if seat < 0 || seat >= len(to.players) || to.players[seat] == nil {
		return false
	}
	return to.players[seat].Status().InShowdown()
}

// nextActive walks seats clockwise from the given seat until it finds one
// whose player may act, returning noSeat when a full lap finds nobody.
func (to *turnOrder) nextActive(from int, includeFrom bool) int {
	n := len(to.players)
	if n == 0 {
		return noSeat
	}
	start := from
	if !includeFrom {
		start = from + 1
	}
	start = ((start % n) + n) % n // from may be the noSeat sentinel
	for i := 0; i < n; i++ {
		seat := (start + i) % n
		if to.canAct(seat) {
			return seat
		}
	}
	return noSeat
}

// previousActive is the counter-clockwise mirror of nextActive.
func (to *turnOrder) previousActive(from int, includeFrom bool) int {
	n := len(to.players)
	if n == 0 {
		return noSeat
	}
	start := from
	if !includeFrom {
		start = from - 1
	}
	start = ((start % n) + n) % n
	for i := 0; i < n; i++ {
		seat := (start - i + n) % n
		if to.canAct(seat) {
			return seat
		}
	}
	return noSeat
}

// nextContender walks clockwise to the next seat whose player is not busted
// and not disconnected. Used for dealer rotation, which must also land on
// all-in-capable short stacks.
func (to *turnOrder) nextContender(from int, includeFrom bool) int {
	n := len(to.players)
	if n == 0 {
		return noSeat
	}
	start := from
	if !includeFrom {
		start = (from + 1) % n
	}
	for i := 0; i < n; i++ {
		seat := (start + i) % n
		p := to.players[seat]
		if p != nil && p.Status() != StatusBusted && p.Status() != StatusDisconnected {
			return seat
		}
	}
	return noSeat
}

// rotatePositions advances dealer, small blind and big blind to the next
// contending seats for a new hand. Heads-up, the dealer posts the small
// blind.
func (to *turnOrder) rotatePositions() {
	to.Dealer = to.nextContender(to.Dealer, false)

	contenders := 0
	for seat := range to.players {
		p := to.players[seat]
		if p != nil && p.Status() != StatusBusted && p.Status() != StatusDisconnected {
			contenders++
		}
	}

	if contenders == 2 {
		to.SmallBlind = to.Dealer
		to.BigBlind = to.nextContender(to.Dealer, false)
	} else {
		to.SmallBlind = to.nextContender(to.Dealer, false)
		to.BigBlind = to.nextContender(to.SmallBlind, false)
	}

	if to.players[to.Dealer] != nil {
		to.players[to.Dealer].IsDealer = true
	}
	if to.players[to.SmallBlind] != nil {
		to.players[to.SmallBlind].IsSmallBlind = true
	}
	if to.players[to.BigBlind] != nil {
		to.players[to.BigBlind].IsBigBlind = true
	}
}

// beginRound resolves the opening and closing seats for the given round and
// resets per-round action tracking.
//
// Preflop opens on the seat after the big blind and closes on the big blind.
// The flop opens on the seat after the dealer and closes on the seat before
// the small blind. Turn and river reuse the previous round's boundary seats,
// re-resolved in case those players dropped out of the action.
func (to *turnOrder) beginRound(r Round) {
	switch r {
	case RoundPreflop:
		to.FirstToAct = to.nextActive(to.BigBlind, false)
		to.LastToAct = to.previousActive(to.BigBlind, true)
	case RoundFlop:
		to.FirstToAct = to.nextActive(to.Dealer, false)
		to.LastToAct = to.previousActive(to.SmallBlind, false)
	case RoundTurn, RoundRiver:
		to.FirstToAct = to.nextActive(to.FirstToAct, true)
		to.LastToAct = to.previousActive(to.LastToAct, true)
	}
	to.Current = to.FirstToAct
	to.acted = make(map[int]bool)
}

// markActed records that the seat has acted in the current betting round.
func (to *turnOrder) markActed(seat int) {
	to.acted[seat] = true
}

// resetActedTo restarts the round's action tracking with only the raiser
// marked: every other player must act again to match the new bet.
func (to *turnOrder) resetActedTo(seat int) {
	to.acted = make(map[int]bool)
	to.acted[seat] = true
}

// countCanAct returns the number of seated players who may still act.
func (to *turnOrder) countCanAct() int {
	n := 0
	for seat := range to.players {
		if to.canAct(seat) {
			n++
		}
	}
	return n
}

// countInShowdown returns the number of seated players contesting showdown.
func (to *turnOrder) countInShowdown() int {
	n := 0
	for seat := range to.players {
		if to.inShowdown(seat) {
			n++
		}
	}
	return n
}

// isRoundOver reports whether the current betting round is complete. Three
// overlapping conditions are checked, because all-in short stacks and
// single-remaining-player endings each satisfy a different one:
//
//  1. exactly one non-all-in showdown player remains and has acted;
//  2. every non-all-in showdown player has acted and their current bets
//     match;
//  3. the round's first actor has acted and every showdown player, all-in
//     ones included, has acted with matching current bets.
func (to *turnOrder) isRoundOver() bool {
	var nonAllIn, nonAllInActed int
	nonAllInBetsEqual := true
	allActed := true
	allBetsEqual := true
	var refBet int64
	refSet := false
	var refBetNonAllIn int64
	refNonAllInSet := false

	for seat, p := range to.players {
		if p == nil || !p.Status().InShowdown() {
			continue
		}
		if !to.acted[seat] {
			allActed = false
		}
		if !refSet {
			refBet = p.CurrentBet
			refSet = true
		} else if p.CurrentBet != refBet {
			allBetsEqual = false
		}

		if p.Status() == StatusAllIn {
			continue
		}
		nonAllIn++
		if to.acted[seat] {
			nonAllInActed++
		}
		if !refNonAllInSet {
			refBetNonAllIn = p.CurrentBet
			refNonAllInSet = true
		} else if p.CurrentBet != refBetNonAllIn {
			nonAllInBetsEqual = false
		}
	}

	// (1) lone non-all-in player who already acted.
	if nonAllIn == 1 && nonAllInActed == 1 {
		return true
	}
	// (2) every non-all-in player acted with equal bets.
	if nonAllIn > 0 && nonAllInActed == nonAllIn && nonAllInBetsEqual {
		return true
	}
	// (3) first actor acted, everyone (all-in included) acted, bets equal.
	if to.FirstToAct != noSeat && to.acted[to.FirstToAct] && allActed && allBetsEqual {
		return true
	}
	return false
}

// shouldFastForward reports whether the hand must skip the remaining betting
// rounds and run straight to showdown: fewer than two players can still act
// while more than one contests the pot, or the seat walk found nobody.
func (to *turnOrder) shouldFastForward() bool {
	return to.countInShowdown() > 1 && to.countCanAct() < 2
}

// handleBoundaryDeparture repairs the round bookkeeping after the player at
// seat stopped being able to act (fold or disconnect). The boundary seats
// are re-resolved; advancing the turn itself is the caller's job, since the
// departure may instead complete the round.
func (to *turnOrder) handleBoundaryDeparture(seat int) {
	delete(to.acted, seat)
	if to.FirstToAct == seat {
		to.FirstToAct = to.nextActive(seat, false)
	}
	if to.LastToAct == seat {
		to.LastToAct = to.previousActive(seat, false)
	}
}
