package poker

import (
	"errors"
	"math/rand"
)

// ErrDeckExhausted is returned by Draw when no cards remain. In a six-max
// single-deck game this never happens (6*2 hole cards + 5 board + burns fit
// in 52), so hitting it means the hand state is corrupt and the hand must be
// aborted.
var ErrDeckExhausted = errors.New("poker: deck exhausted")

// Deck is an ordered sequence of the 52 cards. Dealt cards are removed and
// never duplicated within a hand.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a full 52-card deck shuffled with the given random number
// generator.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}

	for _, suit := range []Suit{Clubs, Diamonds, Hearts, Spades} {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{suit: suit, rank: rank})
		}
	}

	d.Shuffle()
	return d
}

// Shuffle produces a uniformly random permutation of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Size returns the number of cards remaining.
func (d *Deck) Size() int {
	return len(d.cards)
}
