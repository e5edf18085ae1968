package poker

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit
type Suit string

const (
	Clubs    Suit = "♣"
	Diamonds Suit = "♦"
	Hearts   Suit = "♥"
	Spades   Suit = "♠"
)

// Rank represents a card rank. Two through Ten carry their face value;
// Jack, Queen, King and Ace run 11 through 14. An Ace played low in the
// wheel straight is handled by the evaluator, never by the Card itself.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the short face string of the rank ("2".."10", "J", "Q", "K", "A").
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card. Cards are immutable once created and
// compare by value, so they can be used as map keys.
type Card struct {
	suit Suit
	rank Rank
}

// NewCard creates a card with the given rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{suit: suit, rank: rank}
}

// Rank returns the card's rank.
func (c Card) Rank() Rank { return c.rank }

// Suit returns the card's suit.
func (c Card) Suit() Suit { return c.suit }

// String returns a string representation of the card, e.g. "A♠".
func (c Card) String() string {
	return c.rank.String() + string(c.suit)
}

// cardJSON is the wire shape of a card.
type cardJSON struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// MarshalJSON implements json.Marshaler for Card.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{
		Suit: string(c.suit),
		Rank: c.rank.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Card. Both the symbol and
// the spelled-out forms of a suit are accepted, as are short and long rank
// names, so hand-written fixtures and older clients keep working.
func (c *Card) UnmarshalJSON(data []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}

	suit, err := parseSuit(cj.Suit)
	if err != nil {
		return err
	}
	rank, err := parseRank(cj.Rank)
	if err != nil {
		return err
	}

	c.suit = suit
	c.rank = rank
	return nil
}

func parseSuit(s string) (Suit, error) {
	switch s {
	case "♣", "c", "C", "clubs", "Clubs":
		return Clubs, nil
	case "♦", "d", "D", "diamonds", "Diamonds":
		return Diamonds, nil
	case "♥", "h", "H", "hearts", "Hearts":
		return Hearts, nil
	case "♠", "s", "S", "spades", "Spades":
		return Spades, nil
	default:
		return "", fmt.Errorf("invalid suit: %q", s)
	}
}

func parseRank(s string) (Rank, error) {
	switch s {
	case "A", "a", "ace", "Ace":
		return Ace, nil
	case "K", "k", "king", "King":
		return King, nil
	case "Q", "q", "queen", "Queen":
		return Queen, nil
	case "J", "j", "jack", "Jack":
		return Jack, nil
	case "10", "T", "t", "ten", "Ten":
		return Ten, nil
	case "9", "nine", "Nine":
		return Nine, nil
	case "8", "eight", "Eight":
		return Eight, nil
	case "7", "seven", "Seven":
		return Seven, nil
	case "6", "six", "Six":
		return Six, nil
	case "5", "five", "Five":
		return Five, nil
	case "4", "four", "Four":
		return Four, nil
	case "3", "three", "Three":
		return Three, nil
	case "2", "two", "Two":
		return Two, nil
	default:
		return 0, fmt.Errorf("invalid rank: %q", s)
	}
}
