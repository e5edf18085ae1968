package poker

// PlayerView is the wire shape of a seat. Hole cards are only populated by
// projections allowed to disclose them.
type PlayerView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Seat         int    `json:"seat"`
	SeatName     string `json:"seat_name"`
	Chips        int64  `json:"chips"`
	CurrentBet   int64  `json:"current_bet"`
	Status       string `json:"status"`
	IsDealer     bool   `json:"is_dealer"`
	IsSmallBlind bool   `json:"is_small_blind"`
	IsBigBlind   bool   `json:"is_big_blind"`
	Hand         []Card `json:"hand,omitempty"`
	HandRank     string `json:"hand_rank,omitempty"`
	WonRound     bool   `json:"won_round,omitempty"`
	WonGame      bool   `json:"won_game,omitempty"`
	FinishPlace  int    `json:"finish_place,omitempty"`
}

// GameView is a read-only projection of the game state. The four
// projections differ only in how much of each player's hand they disclose.
type GameView struct {
	Round           string       `json:"round"`
	Board           []Card       `json:"board"`
	Pot             int64        `json:"pot"`
	CurrentBet      int64        `json:"current_bet"`
	CurrentSeat     int          `json:"current_seat"`
	CurrentPlayerID string       `json:"current_player_id,omitempty"`
	DealerSeat      int          `json:"dealer_seat"`
	SmallBlindSeat  int          `json:"small_blind_seat"`
	BigBlindSeat    int          `json:"big_blind_seat"`
	HandNum         int          `json:"hand_num"`
	Started         bool         `json:"started"`
	Completed       bool         `json:"completed"`
	Players         []PlayerView `json:"players"`
}

type handDisclosure int

const (
	discloseNone handDisclosure = iota
	discloseOwn
	discloseAll
)

func (g *Game) view(requestingID string, disclosure handDisclosure) GameView {
	v := GameView{
		Round:          g.round.String(),
		Board:          g.Board(),
		Pot:            g.pot,
		CurrentBet:     g.turns.HighestBet,
		CurrentSeat:    g.turns.Current,
		DealerSeat:     g.turns.Dealer,
		SmallBlindSeat: g.turns.SmallBlind,
		BigBlindSeat:   g.turns.BigBlind,
		HandNum:        g.handNum,
		Started:        g.started,
		Completed:      g.completed,
	}
	if cp := g.CurrentPlayer(); cp != nil {
		v.CurrentPlayerID = cp.ID
	}

	for _, p := range g.players {
		if p == nil {
			continue
		}
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Seat:         p.Seat,
			SeatName:     SeatName(p.Seat),
			Chips:        p.Chips,
			CurrentBet:   p.CurrentBet,
			Status:       p.Status().String(),
			IsDealer:     p.IsDealer,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
			WonRound:     p.WonRound,
			WonGame:      p.WonGame,
			FinishPlace:  p.FinishPlace,
		}
		switch disclosure {
		case discloseOwn:
			if p.ID == requestingID {
				pv.Hand = append([]Card(nil), p.Hand...)
			}
		case discloseAll:
			if p.Status().InShowdown() {
				pv.Hand = append([]Card(nil), p.Hand...)
				if p.HandValue != nil {
					pv.HandRank = p.HandValue.Description()
				}
			}
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

// StateFor returns the full state with only the requesting player's own
// hole cards disclosed.
func (g *Game) StateFor(playerID string) GameView {
	return g.view(playerID, discloseOwn)
}

// StateRevealed returns the full state with every contesting player's hole
// cards and evaluated hand rank disclosed. Post-showdown only.
func (g *Game) StateRevealed() GameView {
	return g.view("", discloseAll)
}

// StateMinimal returns the state with no hole cards at all, for lobby
// browsing and pre-hand displays.
func (g *Game) StateMinimal() GameView {
	return g.view("", discloseNone)
}

// StateDeparted is the projection broadcast when a player leaves: minimal
// disclosure, with the departed player's seat forced to disconnected
// whether or not the engine has recorded the departure yet.
func (g *Game) StateDeparted(departedID string) GameView {
	v := g.view("", discloseNone)
	for i := range v.Players {
		if v.Players[i].ID == departedID {
			v.Players[i].Status = StatusDisconnected.String()
		}
	}
	return v
}
