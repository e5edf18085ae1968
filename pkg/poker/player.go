package poker

import "fmt"

// PlayerStatus models a player's participation state as a single enumerated
// value. The statuses are mutually exclusive: a disconnected player is out
// of the hand exactly like a folded one, and a busted player never re-enters
// play, so there is no legal combination of independent flags to get wrong.
type PlayerStatus int

const (
	// StatusActive players may act when the turn reaches them.
	StatusActive PlayerStatus = iota
	// StatusFolded players are out of the current hand only.
	StatusFolded
	// StatusAllIn players have wagered their whole stack and contest the
	// showdown without acting further.
	StatusAllIn
	// StatusBusted players lost their whole stack in a previous hand.
	StatusBusted
	// StatusDisconnected players keep their seat so they can reconnect, but
	// play as folded until a new hand starts with them present.
	StatusDisconnected
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFolded:
		return "folded"
	case StatusAllIn:
		return "all_in"
	case StatusBusted:
		return "busted"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// CanAct reports whether a player in this status may take a betting action.
func (s PlayerStatus) CanAct() bool { return s == StatusActive }

// InShowdown reports whether a player in this status contests the showdown.
// All-in players do; folded, busted and disconnected players do not.
func (s PlayerStatus) InShowdown() bool {
	return s == StatusActive || s == StatusAllIn
}

// legalStatusTransitions enumerates every allowed status change. Active and
// all-in players can fold, bust, or drop; folded and all-in players return
// to active only through a new hand; a disconnected player either folds
// back in on reconnect mid-hand, returns to active on a new hand, or busts.
// Busted is terminal.
var legalStatusTransitions = map[PlayerStatus][]PlayerStatus{
	StatusActive:       {StatusFolded, StatusAllIn, StatusBusted, StatusDisconnected},
	StatusFolded:       {StatusActive, StatusBusted, StatusDisconnected},
	StatusAllIn:        {StatusActive, StatusFolded, StatusBusted, StatusDisconnected},
	StatusDisconnected: {StatusActive, StatusFolded, StatusBusted},
	StatusBusted:       {},
}

// seatNames are the six table positions, clockwise from the bottom of the
// rendered table. Seat indexes map 1:1 onto these names.
var seatNames = [6]string{
	"bottom_center",
	"bottom_left",
	"top_left",
	"top_center",
	"top_right",
	"bottom_right",
}

// MaxSeats is the largest number of players a single game supports.
const MaxSeats = len(seatNames)

// SeatName returns the table position name for a seat index.
func SeatName(seat int) string {
	if seat < 0 || seat >= MaxSeats {
		return ""
	}
	return seatNames[seat]
}

// HandStats counts a player's actions over the whole hand series. The
// counters never feed game logic; they exist only for the statistics
// recorded when the lobby ends.
type HandStats struct {
	Raised    int `json:"raised"`
	Called    int `json:"called"`
	Checked   int `json:"checked"`
	Folded    int `json:"folded"`
	WentAllIn int `json:"went_all_in"`
	Acted     int `json:"acted"`
}

// Player is a seat at a Game. All mutation goes through the owning Game,
// which is serialized by its lobby.
type Player struct {
	ID   string
	Name string
	Seat int

	Chips       int64
	Hand        []Card
	CurrentBet  int64 // chips wagered in the current betting round
	Contributed int64 // chips wagered across the whole hand, feeds pot layering

	IsDealer     bool
	IsSmallBlind bool
	IsBigBlind   bool

	WonRound    bool
	WonGame     bool
	FinishPlace int // 1 for the winner; assigned once, on bust or game end

	Stats HandStats

	// HandValue is populated at showdown for players contesting it.
	HandValue *HandValue

	status PlayerStatus
}

// NewPlayer creates a player seated at the given seat with a starting stack.
func NewPlayer(id, name string, seat int, chips int64) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Seat:   seat,
		Chips:  chips,
		Hand:   make([]Card, 0, 2),
		status: StatusActive,
	}
}

// Status returns the player's current status.
func (p *Player) Status() PlayerStatus { return p.status }

// SetStatus transitions the player to the given status, enforcing the
// transition table. Setting the current status again is a no-op.
func (p *Player) SetStatus(next PlayerStatus) error {
	if next == p.status {
		return nil
	}
	for _, allowed := range legalStatusTransitions[p.status] {
		if allowed == next {
			p.status = next
			return nil
		}
	}
	return fmt.Errorf("poker: illegal status transition %s -> %s for player %s",
		p.status, next, p.ID)
}

// ResetForNewHand clears per-hand state. Busted players stay busted and
// disconnected players stay disconnected; everyone else becomes active.
func (p *Player) ResetForNewHand() {
	p.Hand = make([]Card, 0, 2)
	p.CurrentBet = 0
	p.Contributed = 0
	p.IsDealer = false
	p.IsSmallBlind = false
	p.IsBigBlind = false
	p.WonRound = false
	p.HandValue = nil

	switch p.status {
	case StatusFolded, StatusAllIn:
		p.status = StatusActive
	}
}

// payChips moves up to amount from the stack into the current bet, capping
// at the remaining stack, and returns what was actually paid. A player who
// empties their stack this way is all-in.
func (p *Player) payChips(amount int64) int64 {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.Contributed += amount
	if p.Chips == 0 && p.status == StatusActive {
		// Transition is always legal from Active.
		p.status = StatusAllIn
		p.Stats.WentAllIn++
	}
	return amount
}

// HandString returns the player's hole cards as a display string.
func (p *Player) HandString() string {
	if len(p.Hand) == 0 {
		return "no cards"
	}
	s := ""
	for i, c := range p.Hand {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
