package poker

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/decred/slog"
)

// Action is a player's betting action. Checks are calls with nothing to
// match; the engine records them as checks in the statistics.
type Action string

const (
	ActionFold  Action = "fold"
	ActionCall  Action = "call"
	ActionRaise Action = "raise"
)

// ActionOutcome tells the caller what a successful action led to, so the
// transport layer can pick the right broadcast shape.
type ActionOutcome int

const (
	// OutcomeContinue: the turn moved to the next active seat.
	OutcomeContinue ActionOutcome = iota
	// OutcomeRoundAdvanced: the betting round completed and the next street
	// was dealt.
	OutcomeRoundAdvanced
	// OutcomeSkipRound: too few players could still act, so the remaining
	// streets were dealt without betting and the hand went to showdown.
	OutcomeSkipRound
	// OutcomeShowdown: the river round completed naturally and the hand
	// went to showdown.
	OutcomeShowdown
	// OutcomeHandWon: everyone else folded; the pot was awarded and a new
	// hand started.
	OutcomeHandWon
	// OutcomeGameComplete: the action ended the hand and no further hand
	// can start.
	OutcomeGameComplete
)

func (o ActionOutcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeRoundAdvanced:
		return "round_advanced"
	case OutcomeSkipRound:
		return "skip_round"
	case OutcomeShowdown:
		return "showdown"
	case OutcomeHandWon:
		return "hand_won"
	case OutcomeGameComplete:
		return "game_complete"
	default:
		return "unknown"
	}
}

// ActionResult reports the effect of a processed action.
type ActionResult struct {
	Outcome  ActionOutcome
	Showdown *ShowdownResult // set for OutcomeSkipRound and OutcomeShowdown
	Summary  string          // set for OutcomeHandWon and OutcomeGameComplete
}

// PotResult is the settlement of one pot layer at showdown.
type PotResult struct {
	Amount  int64
	Winners []string // player IDs, deterministic seat order
	Summary string
}

// ShowdownResult is the settlement of a whole hand.
type ShowdownResult struct {
	Pots  []PotResult
	Board []Card
}

// GameConfig holds the fixed parameters of a game.
type GameConfig struct {
	Log           slog.Logger
	PlayerLimit   int   // 3..6 seats
	StartingChips int64 // chips each player starts with
	SmallBlind    int64
	BigBlind      int64
	Seed          int64 // optional deterministic deck seed
}

// Game is the per-lobby aggregate root: it owns the seats, board, deck, pot
// and turn order, and exposes one mutating operation per client intent. A
// Game is not safe for concurrent use; its owning lobby serializes all
// access on a single command channel.
type Game struct {
	log slog.Logger
	cfg GameConfig
	rng *rand.Rand

	players []*Player // fixed seat list, nil = empty seat
	deck    *Deck
	board   []Card
	pot     int64
	round   Round
	turns   *turnOrder

	started    bool
	completed  bool
	handNum    int
	nextStreet streetFn

	// nextFinishPlace is handed to the next player to bust, counting down
	// to 2; the last player standing gets place 1.
	nextFinishPlace int
}

// NewGame creates an empty game with the given configuration.
func NewGame(cfg GameConfig) (*Game, error) {
	if cfg.PlayerLimit < 3 || cfg.PlayerLimit > MaxSeats {
		return nil, fmt.Errorf("poker: player limit must be 3..%d, got %d", MaxSeats, cfg.PlayerLimit)
	}
	if cfg.StartingChips <= 0 {
		return nil, fmt.Errorf("poker: starting chips must be positive")
	}
	if cfg.BigBlind <= 0 || cfg.SmallBlind <= 0 || cfg.SmallBlind > cfg.BigBlind {
		return nil, fmt.Errorf("poker: invalid blinds %d/%d", cfg.SmallBlind, cfg.BigBlind)
	}
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		log:             cfg.Log,
		cfg:             cfg,
		rng:             rand.New(rand.NewSource(seed)),
		players:         make([]*Player, cfg.PlayerLimit),
		nextFinishPlace: cfg.PlayerLimit,
	}
	g.turns = newTurnOrder(g.players)
	return g, nil
}

// Started reports whether the first hand has been dealt.
func (g *Game) Started() bool { return g.started }

// Completed reports whether no further hand can start.
func (g *Game) Completed() bool { return g.completed }

// Round returns the current betting round.
func (g *Game) Round() Round { return g.round }

// Pot returns the running pot total.
func (g *Game) Pot() int64 { return g.pot }

// HandNum returns the 1-based number of the current hand.
func (g *Game) HandNum() int { return g.handNum }

// Board returns a copy of the community cards.
func (g *Game) Board() []Card {
	board := make([]Card, len(g.board))
	copy(board, g.board)
	return board
}

// PlayerLimit returns the configured number of seats.
func (g *Game) PlayerLimit() int { return g.cfg.PlayerLimit }

// Players returns the seat list. Callers must not mutate the players; the
// slice itself is a copy.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// PlayerByID returns the player with the given ID, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.players {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil when no action
// is expected.
func (g *Game) CurrentPlayer() *Player {
	if !g.started || g.turns.Current == noSeat {
		return nil
	}
	return g.players[g.turns.Current]
}

// AddPlayer seats a new player at the lowest free seat. Only allowed before
// the first hand.
func (g *Game) AddPlayer(id, name string) (*Player, error) {
	if g.started {
		return nil, ErrGameStarted
	}
	if g.PlayerByID(id) != nil {
		return nil, fmt.Errorf("poker: player %s already seated", id)
	}
	for seat := range g.players {
		if g.players[seat] == nil {
			p := NewPlayer(id, name, seat, g.cfg.StartingChips)
			g.players[seat] = p
			return p, nil
		}
	}
	return nil, ErrGameFull
}

// RemovePlayer removes a player entirely and compacts the seats so the
// remaining players keep a gap-free prefix of the seat list. Only allowed
// before the first hand; once play starts departures go through Depart.
func (g *Game) RemovePlayer(id string) error {
	if g.started {
		return ErrGameStarted
	}
	if g.PlayerByID(id) == nil {
		return ErrUnknownPlayer
	}
	g.compactSeats(id)
	return nil
}

// compactSeats rebuilds the seat list without the removed player, shifting
// every later player one seat down. All pre-game seat reassignment funnels
// through here - it is the one place seat indexes are allowed to move.
func (g *Game) compactSeats(removedID string) {
	kept := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if p != nil && p.ID != removedID {
			kept = append(kept, p)
		}
	}
	for seat := range g.players {
		if seat < len(kept) {
			kept[seat].Seat = seat
			g.players[seat] = kept[seat]
		} else {
			g.players[seat] = nil
		}
	}
}

// SeatedCount returns the number of occupied seats.
func (g *Game) SeatedCount() int {
	n := 0
	for _, p := range g.players {
		if p != nil {
			n++
		}
	}
	return n
}

// contenders returns the seated players who are neither busted nor
// disconnected, in seat order.
func (g *Game) contenders() []*Player {
	out := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if p != nil && p.Status() != StatusBusted && p.Status() != StatusDisconnected {
			out = append(out, p)
		}
	}
	return out
}

// streetFn deals the next street and returns the function for the one after
// it; nil means the board is complete. The same chain serves normal round
// advancement and the fast-forward path.
type streetFn func(*Game) (streetFn, error)

func dealFlop(g *Game) (streetFn, error) {
	for i := 0; i < 3; i++ {
		card, err := g.deck.Draw()
		if err != nil {
			return nil, err
		}
		g.board = append(g.board, card)
	}
	g.round = RoundFlop
	return dealTurn, nil
}

func dealTurn(g *Game) (streetFn, error) {
	card, err := g.deck.Draw()
	if err != nil {
		return nil, err
	}
	g.board = append(g.board, card)
	g.round = RoundTurn
	return dealRiver, nil
}

func dealRiver(g *Game) (streetFn, error) {
	card, err := g.deck.Draw()
	if err != nil {
		return nil, err
	}
	g.board = append(g.board, card)
	g.round = RoundRiver
	return nil, nil
}

// StartHand resets per-hand state and deals a fresh hand: players who
// emptied their stack bust (taking the next finishing position), the dealer
// and blinds rotate, blinds are posted (short stacks go all-in for what
// they have) and two cards go to every contender.
//
// The sentinel ErrGameComplete is returned when at most one contender
// remains; the caller must then run its game-completion bookkeeping instead
// of expecting another hand. In the rare case the blinds leave fewer than
// two players able to act, the hand runs straight to showdown and the
// result is returned.
func (g *Game) StartHand() (*ShowdownResult, error) {
	if g.completed {
		return nil, ErrGameComplete
	}

	for _, p := range g.players {
		if p == nil {
			continue
		}
		p.ResetForNewHand()
		if p.Chips == 0 && p.Status() != StatusBusted {
			if err := p.SetStatus(StatusBusted); err != nil {
				return nil, err
			}
			p.FinishPlace = g.nextFinishPlace
			g.nextFinishPlace--
			g.log.Debugf("player %s busted, finishing place %d", p.ID, p.FinishPlace)
		}
	}

	contenders := g.contenders()
	if len(contenders) <= 1 {
		g.completed = true
		if len(contenders) == 1 {
			winner := contenders[0]
			winner.WonGame = true
			winner.FinishPlace = 1
			g.log.Infof("game complete, winner %s with %d chips", winner.ID, winner.Chips)
		}
		return nil, ErrGameComplete
	}

	g.handNum++
	g.board = nil
	g.pot = 0
	g.deck = NewDeck(g.rng)
	g.round = RoundPreflop
	g.nextStreet = dealFlop
	g.turns.HighestBet = 0

	g.turns.rotatePositions()

	// Two hole cards per contender, dealt one at a time around the table.
	for i := 0; i < 2; i++ {
		for _, p := range contenders {
			card, err := g.deck.Draw()
			if err != nil {
				return nil, err
			}
			p.Hand = append(p.Hand, card)
		}
	}

	g.postBlinds()
	g.started = true

	g.turns.beginRound(RoundPreflop)
	g.log.Debugf("hand %d: dealer=%d sb=%d bb=%d first=%d last=%d",
		g.handNum, g.turns.Dealer, g.turns.SmallBlind, g.turns.BigBlind,
		g.turns.FirstToAct, g.turns.LastToAct)

	// Blinds can leave nobody (or only one player) free to act, e.g. two
	// short stacks forced all-in; the hand then plays itself out.
	if g.turns.Current == noSeat || g.turns.shouldFastForward() {
		result, err := g.fastForward()
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, nil
}

// postBlinds collects the forced bets. A blind player who cannot cover the
// amount posts their whole stack and is all-in for exactly that.
func (g *Game) postBlinds() {
	sb := g.players[g.turns.SmallBlind]
	bb := g.players[g.turns.BigBlind]

	var sbPaid, bbPaid int64
	if sb != nil {
		sbPaid = sb.payChips(g.cfg.SmallBlind)
		g.pot += sbPaid
	}
	if bb != nil {
		bbPaid = bb.payChips(g.cfg.BigBlind)
		g.pot += bbPaid
	}

	g.turns.HighestBet = sbPaid
	if bbPaid > sbPaid {
		g.turns.HighestBet = bbPaid
	}
	g.log.Debugf("blinds posted: sb=%d bb=%d highest=%d", sbPaid, bbPaid, g.turns.HighestBet)
}

// HandleAction validates and applies a player action, then advances the
// hand as far as the action allows: to the next turn, the next street, a
// fast-forwarded or natural showdown, or a fold-out win.
func (g *Game) HandleAction(playerID string, action Action, raiseAmount int64) (*ActionResult, error) {
	if !g.started {
		return nil, ErrGameNotStarted
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if p.Status() == StatusFolded || p.Status() == StatusDisconnected {
		return nil, ErrAlreadyFolded
	}
	if g.turns.Current == noSeat || g.players[g.turns.Current] != p {
		return nil, ErrNotYourTurn
	}

	switch action {
	case ActionFold:
		// Always legal from Active.
		_ = p.SetStatus(StatusFolded)
		p.Stats.Folded++
		g.turns.handleBoundaryDeparture(p.Seat)

	case ActionCall:
		diff := g.turns.HighestBet - p.CurrentBet
		paid := p.payChips(diff)
		g.pot += paid
		if diff == 0 {
			p.Stats.Checked++
		} else {
			p.Stats.Called++
		}
		g.turns.markActed(p.Seat)

	case ActionRaise:
		if raiseAmount <= 0 || raiseAmount+p.CurrentBet <= g.turns.HighestBet {
			return nil, ErrInsufficientRaise
		}
		if raiseAmount > p.Chips {
			return nil, ErrInsufficientChips
		}
		paid := p.payChips(raiseAmount)
		g.pot += paid
		g.turns.HighestBet = p.CurrentBet
		p.Stats.Raised++
		// Everyone else must act again to match the new bet.
		g.turns.resetActedTo(p.Seat)

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	p.Stats.Acted++

	return g.afterAction(p.Seat)
}

// afterAction runs the shared post-action pipeline: fold-out wins, round
// completion, fast-forwarding and plain turn advancement.
func (g *Game) afterAction(seat int) (*ActionResult, error) {
	// Fold-out: one contestant left takes the whole pot immediately and the
	// next hand starts.
	if g.turns.countInShowdown() == 1 {
		return g.awardFoldOut()
	}

	if g.turns.isRoundOver() {
		if g.nextStreet == nil {
			// River betting closed; natural showdown.
			result, err := g.Showdown()
			if err != nil {
				return nil, err
			}
			return &ActionResult{Outcome: OutcomeShowdown, Showdown: result}, nil
		}
		if g.turns.shouldFastForward() {
			result, err := g.fastForward()
			if err != nil {
				return nil, err
			}
			return &ActionResult{Outcome: OutcomeSkipRound, Showdown: result}, nil
		}
		if err := g.advanceStreet(); err != nil {
			return nil, err
		}
		if g.turns.Current == noSeat {
			result, err := g.fastForward()
			if err != nil {
				return nil, err
			}
			return &ActionResult{Outcome: OutcomeSkipRound, Showdown: result}, nil
		}
		return &ActionResult{Outcome: OutcomeRoundAdvanced}, nil
	}

	next := g.turns.nextActive(seat, false)
	if next == noSeat {
		result, err := g.fastForward()
		if err != nil {
			return nil, err
		}
		return &ActionResult{Outcome: OutcomeSkipRound, Showdown: result}, nil
	}
	g.turns.Current = next
	return &ActionResult{Outcome: OutcomeContinue}, nil
}

// awardFoldOut pays the whole pot to the last contestant and rolls into the
// next hand, possibly completing the game.
func (g *Game) awardFoldOut() (*ActionResult, error) {
	var winner *Player
	for _, p := range g.players {
		if p != nil && p.Status().InShowdown() {
			winner = p
			break
		}
	}
	if winner == nil {
		return nil, fmt.Errorf("poker: fold-out with no remaining contestant")
	}

	winner.Chips += g.pot
	winner.WonRound = true
	summary := fmt.Sprintf("%s wins %d (everyone folded)", winner.Name, g.pot)
	g.log.Debugf("fold-out: %s", summary)
	g.pot = 0

	immediate, err := g.StartHand()
	if errors.Is(err, ErrGameComplete) {
		return &ActionResult{Outcome: OutcomeGameComplete, Summary: summary}, nil
	}
	if err != nil {
		return nil, err
	}
	// The fresh hand can itself run straight to showdown when the blinds
	// forced everyone all-in; surface that settlement too.
	return &ActionResult{Outcome: OutcomeHandWon, Summary: summary, Showdown: immediate}, nil
}

// advanceStreet deals the next street and opens its betting round.
func (g *Game) advanceStreet() error {
	next, err := g.nextStreet(g)
	if err != nil {
		return err
	}
	g.nextStreet = next

	for _, p := range g.players {
		if p != nil {
			p.CurrentBet = 0
		}
	}
	g.turns.HighestBet = 0
	g.turns.beginRound(g.round)
	return nil
}

// fastForward deals every remaining street without betting and settles the
// hand at showdown.
func (g *Game) fastForward() (*ShowdownResult, error) {
	g.log.Debugf("fast-forwarding from %s to showdown", g.round)
	for g.nextStreet != nil {
		next, err := g.nextStreet(g)
		if err != nil {
			return nil, err
		}
		g.nextStreet = next
	}
	return g.Showdown()
}

// Showdown evaluates every contesting player's best 7-card hand, partitions
// the pot into layers and pays each layer's winners. Ties split the layer
// floor-divided with the odd chip going to the tied winner closest
// clockwise from the button.
func (g *Game) Showdown() (*ShowdownResult, error) {
	pots := BuildPots(g.players, g.pot)

	for _, p := range g.players {
		if p == nil || !p.Status().InShowdown() {
			continue
		}
		hv := EvaluateBest(p.Hand, g.board)
		p.HandValue = &hv
	}

	result := &ShowdownResult{Board: g.Board()}
	for _, pot := range pots {
		settled, err := g.settlePot(pot)
		if err != nil {
			return nil, err
		}
		result.Pots = append(result.Pots, settled)
	}

	// Chip conservation: every pot layer was paid out in full.
	var paid int64
	for _, pr := range result.Pots {
		paid += pr.Amount
	}
	if paid != g.pot {
		g.log.Errorf("showdown distributed %d of %d pot chips", paid, g.pot)
	}

	g.pot = 0
	g.round = RoundShowdown
	g.markGameWinner()
	return result, nil
}

// settlePot finds the winners of one pot layer and pays them.
func (g *Game) settlePot(pot PotShare) (PotResult, error) {
	var winners []int
	var best *HandValue
	for _, seat := range pot.Eligible {
		p := g.players[seat]
		if p == nil || !p.Status().InShowdown() || p.HandValue == nil {
			continue
		}
		switch {
		case best == nil || Compare(*p.HandValue, *best) > 0:
			best = p.HandValue
			winners = []int{seat}
		case Compare(*p.HandValue, *best) == 0:
			winners = append(winners, seat)
		}
	}
	if len(winners) == 0 {
		return PotResult{}, fmt.Errorf("poker: pot of %d with no eligible winner", pot.Amount)
	}
	sort.Ints(winners)

	shares := splitPot(pot.Amount, winners, g.turns.Dealer, len(g.players))
	names := make([]string, 0, len(winners))
	ids := make([]string, 0, len(winners))
	for i, seat := range winners {
		p := g.players[seat]
		p.Chips += shares[i]
		p.WonRound = true
		names = append(names, p.Name)
		ids = append(ids, p.ID)
	}

	summary := fmt.Sprintf("%s wins %d with %s", names[0], pot.Amount, best.Description())
	if len(winners) > 1 {
		summary = fmt.Sprintf("%v split %d with %s", names, pot.Amount, best.Description())
	}
	g.log.Debugf("pot settled: %s", summary)

	return PotResult{Amount: pot.Amount, Winners: ids, Summary: summary}, nil
}

// markGameWinner sets WonGame on a player holding every chip still in play
// among connected players.
func (g *Game) markGameWinner() {
	var total int64
	for _, p := range g.players {
		if p != nil && p.Status() != StatusDisconnected {
			total += p.Chips
		}
	}
	for _, p := range g.players {
		if p != nil && p.Status() != StatusDisconnected && p.Chips == total && total > 0 {
			p.WonGame = true
		}
	}
}

// Depart marks a player as disconnected mid-game. The player keeps their
// seat (so seat indexes stay stable and reconnection is possible) but plays
// as folded. If the departure changes what the hand is waiting for - it was
// their turn, or they were the last unmatched bettor - the hand advances
// exactly as a fold would have, and the returned result is non-nil.
func (g *Game) Depart(playerID string) (*ActionResult, error) {
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if !g.started {
		return nil, ErrGameNotStarted
	}
	if p.Status() == StatusBusted || p.Status() == StatusDisconnected {
		return nil, nil
	}

	wasTurn := g.turns.Current == p.Seat
	if err := p.SetStatus(StatusDisconnected); err != nil {
		return nil, err
	}
	g.turns.handleBoundaryDeparture(p.Seat)

	if g.round == RoundShowdown || g.completed {
		return nil, nil
	}
	if wasTurn {
		return g.afterAction(p.Seat)
	}
	// Not their turn: the hand may still have completed (e.g. they were the
	// only player yet to act, or the only opponent left).
	if g.turns.countInShowdown() == 1 {
		return g.awardFoldOut()
	}
	if g.turns.isRoundOver() {
		return g.afterAction(p.Seat)
	}
	return nil, nil
}

// Reconnect returns a disconnected player to the table. They play as folded
// for the rest of the current hand and are dealt back in on the next one.
func (g *Game) Reconnect(playerID string) error {
	p := g.PlayerByID(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if p.Status() != StatusDisconnected {
		return fmt.Errorf("poker: player %s is not disconnected", playerID)
	}
	return p.SetStatus(StatusFolded)
}
