package poker

import "sort"

// PotShare is one layer of the showdown pot: an amount and the seats
// eligible to win it. Side pots are never persisted during betting; they
// are computed from contribution snapshots at the moment of showdown.
type PotShare struct {
	Amount   int64
	Eligible []int // seat indexes, ascending
}

// BuildPots partitions the total pot into a main pot and side pots based on
// the all-in players' contribution thresholds.
//
// All-in contenders are processed in ascending contribution order. Each one
// caps a layer worth (contribution - previous cap) * contesting players;
// every player still contesting (the all-in player included) is eligible
// for that layer, after which the all-in player drops out of the contesting
// set. Whatever is left of the total afterwards - including chips folded
// players abandoned - forms the final pot for the players who never went
// all-in. If no such player remains the leftover is folded into the last
// layer so that the shares always sum to exactly the total.
func BuildPots(players []*Player, total int64) []PotShare {
	contesting := make([]int, 0, len(players))
	allIns := make([]*Player, 0, len(players))
	for _, p := range players {
		if p == nil || !p.Status().InShowdown() {
			continue
		}
		contesting = append(contesting, p.Seat)
		if p.Status() == StatusAllIn {
			allIns = append(allIns, p)
		}
	}
	sort.Ints(contesting)
	sort.Slice(allIns, func(i, j int) bool {
		if allIns[i].Contributed != allIns[j].Contributed {
			return allIns[i].Contributed < allIns[j].Contributed
		}
		return allIns[i].Seat < allIns[j].Seat
	})

	if len(contesting) == 0 {
		return nil
	}

	var pots []PotShare
	var distributed int64
	prevCap := int64(0)

	for _, a := range allIns {
		layer := (a.Contributed - prevCap) * int64(len(contesting))
		if layer > 0 {
			pots = append(pots, PotShare{
				Amount:   layer,
				Eligible: append([]int(nil), contesting...),
			})
			distributed += layer
		}
		prevCap = a.Contributed
		contesting = removeSeat(contesting, a.Seat)
	}

	leftover := total - distributed
	if len(contesting) > 0 && (leftover > 0 || len(pots) == 0) {
		pots = append(pots, PotShare{
			Amount:   leftover,
			Eligible: contesting,
		})
	} else if leftover > 0 && len(pots) > 0 {
		// Folded chips beyond the top all-in cap; nobody uncapped remains,
		// so they join the last layer to conserve the total.
		pots[len(pots)-1].Amount += leftover
	}

	return pots
}

func removeSeat(seats []int, seat int) []int {
	out := seats[:0]
	for _, s := range seats {
		if s != seat {
			out = append(out, s)
		}
	}
	return out
}

// splitPot divides an amount evenly between the winning seats. The single
// remainder chip of an uneven split goes to the winner seated closest
// clockwise from the dealer button, which keeps the award deterministic.
// Returned values align with the winners slice.
func splitPot(amount int64, winners []int, buttonSeat, numSeats int) []int64 {
	shares := make([]int64, len(winners))
	if len(winners) == 0 {
		return shares
	}
	base := amount / int64(len(winners))
	rem := amount % int64(len(winners))

	first := 0
	bestDist := numSeats + 1
	for i, seat := range winners {
		dist := (seat - buttonSeat - 1 + numSeats*2) % numSeats
		if dist < bestDist {
			bestDist = dist
			first = i
		}
	}

	for i := range winners {
		shares[i] = base
	}
	shares[first] += rem
	return shares
}
