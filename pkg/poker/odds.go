package poker

import "math/rand"

// EstimateOdds deals random completions of the board and reports, for every
// category, the fraction of sampled run-outs in which the category is
// achievable from the player's hole cards plus the full board. Odds are
// cumulative in the QuickClassify sense: a sampled quad counts toward the
// pair and two-pair buckets as well.
//
// The known cards are removed from the sampling deck so no duplicate can
// appear in a run-out.
func EstimateOdds(holeCards, communityCards []Card, samples int, rng *rand.Rand) map[Category]float64 {
	out := make(map[Category]float64, len(Categories))
	if samples <= 0 {
		samples = 1000
	}

	known := make(map[Card]bool, len(holeCards)+len(communityCards))
	for _, c := range holeCards {
		known[c] = true
	}
	for _, c := range communityCards {
		known[c] = true
	}

	remaining := make([]Card, 0, 52-len(known))
	for _, suit := range []Suit{Clubs, Diamonds, Hearts, Spades} {
		for rank := Two; rank <= Ace; rank++ {
			c := Card{suit: suit, rank: rank}
			if !known[c] {
				remaining = append(remaining, c)
			}
		}
	}

	missing := 5 - len(communityCards)
	if missing < 0 {
		missing = 0
	}

	hits := make(map[Category]int, len(Categories))
	cards := make([]Card, 0, len(holeCards)+5)
	for i := 0; i < samples; i++ {
		rng.Shuffle(len(remaining), func(a, b int) {
			remaining[a], remaining[b] = remaining[b], remaining[a]
		})
		cards = cards[:0]
		cards = append(cards, holeCards...)
		cards = append(cards, communityCards...)
		cards = append(cards, remaining[:missing]...)

		for cat, ok := range QuickClassify(cards) {
			if ok {
				hits[cat]++
			}
		}
	}

	for _, cat := range Categories {
		out[cat] = float64(hits[cat]) / float64(samples)
	}
	return out
}
