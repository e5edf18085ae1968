package poker

import (
	"fmt"
	"sort"
)

// Category is one of the nine standard poker hand categories, ordered from
// weakest to strongest. RoyalFlush is kept as its own category so summary
// messages read naturally; for comparison purposes it is simply the best
// straight flush.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = map[Category]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

// Categories lists all hand categories in ascending strength order.
var Categories = []Category{
	HighCard, Pair, TwoPair, ThreeOfAKind, Straight,
	Flush, FullHouse, FourOfAKind, StraightFlush, RoyalFlush,
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Unknown"
}

// HandValue is the complete evaluation of a 5-card hand: the category plus
// the descending rank sequence that breaks ties within the category (quad
// rank then kicker for four of a kind, both pair ranks then kicker for two
// pair, and so on).
type HandValue struct {
	Category Category
	TieBreak []int
	Best     []Card // the five cards forming the hand
}

// Description returns a human-readable name for the hand.
func (hv HandValue) Description() string {
	return hv.Category.String()
}

// Compare returns -1 if a ranks below b, 0 on an exact tie, and 1 if a ranks
// above b. Categories compare first; equal categories compare the tie-break
// sequences element-wise.
func Compare(a, b HandValue) int {
	if a.Category != b.Category {
		if a.Category < b.Category {
			return -1
		}
		return 1
	}
	for i := 0; i < len(a.TieBreak) && i < len(b.TieBreak); i++ {
		if a.TieBreak[i] != b.TieBreak[i] {
			if a.TieBreak[i] < b.TieBreak[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Evaluate computes the category and tie-break key of exactly five cards.
func Evaluate(cards []Card) HandValue {
	if len(cards) != 5 {
		panic(fmt.Sprintf("poker: Evaluate requires 5 cards, got %d", len(cards)))
	}

	ranks := make([]int, 5)
	for i, c := range cards {
		ranks[i] = int(c.Rank())
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	flush := true
	for _, c := range cards[1:] {
		if c.Suit() != cards[0].Suit() {
			flush = false
			break
		}
	}

	straight, straightKey := straightKeyOf(ranks)

	// Rank multiplicities, grouped then ordered by (count, rank) descending
	// so the tie-break sequence falls straight out.
	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	type group struct{ rank, count int }
	groups := make([]group, 0, len(counts))
	for r, n := range counts {
		groups = append(groups, group{rank: r, count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	best := make([]Card, 5)
	copy(best, cards)

	hv := HandValue{Best: best}
	switch {
	case straight && flush:
		hv.TieBreak = straightKey
		if straightKey[0] == int(Ace) {
			hv.Category = RoyalFlush
		} else {
			hv.Category = StraightFlush
		}
	case groups[0].count == 4:
		hv.Category = FourOfAKind
		hv.TieBreak = []int{groups[0].rank, groups[1].rank}
	case groups[0].count == 3 && groups[1].count == 2:
		hv.Category = FullHouse
		hv.TieBreak = []int{groups[0].rank, groups[1].rank}
	case flush:
		hv.Category = Flush
		hv.TieBreak = ranks
	case straight:
		hv.Category = Straight
		hv.TieBreak = straightKey
	case groups[0].count == 3:
		hv.Category = ThreeOfAKind
		hv.TieBreak = []int{groups[0].rank, groups[1].rank, groups[2].rank}
	case groups[0].count == 2 && groups[1].count == 2:
		hv.Category = TwoPair
		hv.TieBreak = []int{groups[0].rank, groups[1].rank, groups[2].rank}
	case groups[0].count == 2:
		hv.Category = Pair
		hv.TieBreak = []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}
	default:
		hv.Category = HighCard
		hv.TieBreak = ranks
	}
	return hv
}

// straightKeyOf reports whether the descending-sorted ranks form a straight
// and, if so, returns the tie-break sequence. The wheel A-2-3-4-5 is
// reported as [5,4,3,2,1] with the Ace counted low, which keeps it below a
// six-high straight in element-wise comparisons.
func straightKeyOf(desc []int) (bool, []int) {
	run := true
	for i := 1; i < len(desc); i++ {
		if desc[i] != desc[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		key := make([]int, len(desc))
		copy(key, desc)
		return true, key
	}

	// Wheel: A,5,4,3,2 sorted descending.
	if len(desc) == 5 && desc[0] == int(Ace) &&
		desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2 {
		return true, []int{5, 4, 3, 2, 1}
	}
	return false, nil
}

// EvaluateBest searches all 5-card combinations of the hole and community
// cards (21 for a full 7-card hand) and returns the highest-ranking one.
func EvaluateBest(holeCards, communityCards []Card) HandValue {
	all := make([]Card, 0, len(holeCards)+len(communityCards))
	all = append(all, holeCards...)
	all = append(all, communityCards...)

	if len(all) == 5 {
		return Evaluate(all)
	}
	if len(all) < 5 {
		panic(fmt.Sprintf("poker: EvaluateBest requires at least 5 cards, got %d", len(all)))
	}

	var best HandValue
	first := true
	for _, combo := range combinations(all, 5) {
		hv := Evaluate(combo)
		if first || Compare(hv, best) > 0 {
			best = hv
			first = false
		}
	}
	return best
}

// combinations generates all k-combinations from a slice of cards.
func combinations(cards []Card, k int) [][]Card {
	var out [][]Card
	if k > len(cards) || k <= 0 {
		return out
	}
	if k == len(cards) {
		return [][]Card{cards}
	}

	var generate func(start int, current []Card)
	generate = func(start int, current []Card) {
		if len(current) == k {
			combo := make([]Card, k)
			copy(combo, current)
			out = append(out, combo)
			return
		}
		for i := start; i <= len(cards)-(k-len(current)); i++ {
			generate(i+1, append(current, cards[i]))
		}
	}
	generate(0, []Card{})
	return out
}

// QuickClassify reports which categories are achievable (not necessarily
// best) from 2 to 7 cards. It feeds the hand-odds estimator and is never
// used to pick winners: a three- or four-of-a-kind deliberately also counts
// toward "has a pair" and "has two pair" so the reported odds are
// cumulative.
func QuickClassify(cards []Card) map[Category]bool {
	out := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		out[c] = false
	}
	if len(cards) == 0 {
		return out
	}
	out[HighCard] = true

	counts := map[Rank]int{}
	bySuit := map[Suit][]Rank{}
	for _, c := range cards {
		counts[c.Rank()]++
		bySuit[c.Suit()] = append(bySuit[c.Suit()], c.Rank())
	}

	pairRanks := 0
	for _, n := range counts {
		if n >= 2 {
			pairRanks++
			out[Pair] = true
		}
		if n >= 3 {
			out[ThreeOfAKind] = true
		}
		if n >= 4 {
			out[FourOfAKind] = true
			out[TwoPair] = true // a quad is two pairs of the same rank
		}
	}
	if pairRanks >= 2 {
		out[TwoPair] = true
	}
	// Full house needs trips on one rank and a pair on a different one.
	for r, n := range counts {
		if n < 3 {
			continue
		}
		for r2, n2 := range counts {
			if r2 != r && n2 >= 2 {
				out[FullHouse] = true
			}
		}
	}

	distinct := make([]Rank, 0, len(counts))
	for r := range counts {
		distinct = append(distinct, r)
	}
	if hasStraight(distinct) {
		out[Straight] = true
	}

	// Each suit is scanned independently so straight-flush and royal
	// detection work even when two suits both run five or more cards deep.
	for _, suited := range bySuit {
		if len(suited) < 5 {
			continue
		}
		out[Flush] = true
		if hasStraight(suited) {
			out[StraightFlush] = true
		}
		if containsAll(suited, []Rank{Ten, Jack, Queen, King, Ace}) {
			out[RoyalFlush] = true
		}
	}

	return out
}

// hasStraight reports whether any 5 consecutive distinct ranks (or the
// wheel) appear in the given set.
func hasStraight(ranks []Rank) bool {
	have := map[int]bool{}
	for _, r := range ranks {
		have[int(r)] = true
		if r == Ace {
			have[1] = true // Ace plays low in the wheel
		}
	}
	for low := 1; low <= int(Ace)-4; low++ {
		run := true
		for i := 0; i < 5; i++ {
			if !have[low+i] {
				run = false
				break
			}
		}
		if run {
			return true
		}
	}
	return false
}

func containsAll(ranks []Rank, want []Rank) bool {
	have := map[Rank]bool{}
	for _, r := range ranks {
		have[r] = true
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}
