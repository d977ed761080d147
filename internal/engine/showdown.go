package engine

import (
	"sort"

	"poker-platform/pkg/money"
	"poker-platform/pkg/poker"
)

// singleWinnerFoldOut awards the whole pot to the sole remaining contesting
// seat when every other seat has folded. No hands are evaluated or shown.
func (e *Engine) singleWinnerFoldOut(h *Hand, seats []*Seat, contesting []*Seat) *HandRecord {
	finalPhase := h.Phase
	winner := contesting[0]
	winner.Stack = winner.Stack.Add(h.Pot)

	h.WinnerInfo = &WinnerInfo{
		Type:      "single_winner",
		Winners:   []int{winner.Index},
		PotAmount: h.Pot,
		Reason:    "all other seats folded",
	}

	record := e.archiveHand(h, finalPhase, map[int][]poker.Card{})
	h.Pot = money.Zero
	h.Phase = PhaseWaitingForPlayers
	return record
}

// showdown evaluates every contesting seat's best five-card hand and awards
// the pot. It splits the pot into contribution-layered side pots rather
// than handing the entire pot to the single best hand among all contesting
// seats: a seat that went all-in for less than another seat's total bet can
// only contest chips up to its own contribution, with the remainder
// contested by the seats that covered it.
func (e *Engine) showdown(h *Hand, seats []*Seat) *HandRecord {
	finalPhase := h.Phase
	h.Phase = PhaseShowdown

	contesting := contestingSeats(seats)
	hands := make(map[int]poker.Result, len(contesting))
	holeCards := make(map[int][]poker.Card, len(contesting))
	for _, s := range contesting {
		cards := make([]poker.Card, 0, 7)
		cards = append(cards, s.HoleCards...)
		cards = append(cards, h.CommunityCards...)
		result, err := poker.Evaluate(cards)
		if err != nil {
			// contesting seats always have two hole cards and a full board
			// by the time showdown is reached.
			panic(err)
		}
		hands[s.Index] = result
		holeCards[s.Index] = s.HoleCards
	}

	winnersSet := map[int]bool{}
	for _, pot := range computeSidePots(seats) {
		potWinners := bestHandSeats(pot.EligibleSeats, hands)
		sort.Ints(potWinners)
		share, remainder := pot.Amount.DivMod(len(potWinners))
		firstIdx := firstClockwiseOf(potWinners, h.DealerIndex, seats)
		for _, w := range potWinners {
			award := share
			if w == firstIdx {
				award = award.Add(remainder)
			}
			seatByIndex(seats, w).Stack = seatByIndex(seats, w).Stack.Add(award)
			winnersSet[w] = true
		}
	}

	winners := make([]int, 0, len(winnersSet))
	for idx := range winnersSet {
		winners = append(winners, idx)
	}
	sort.Ints(winners)

	h.WinnerInfo = &WinnerInfo{
		Type:           "showdown",
		Winners:        winners,
		PotAmount:      h.Pot,
		CommunityCards: h.CommunityCards,
		ShowdownOrder:  showdownOrder(h, seats, contesting),
		AllHands:       hands,
	}

	record := e.archiveHand(h, finalPhase, holeCards)
	h.Pot = money.Zero
	h.Phase = PhaseWaitingForPlayers
	return record
}

// computeSidePots splits the hand's total contributions into layered pots.
// Folded seats' contributions remain in the pot they funded but they are
// not eligible to win it.
func computeSidePots(seats []*Seat) []Pot {
	var levels []money.Amount
	for _, s := range seats {
		if s.TotalBet.IsPositive() && !containsAmount(levels, s.TotalBet) {
			levels = append(levels, s.TotalBet)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].LessThan(levels[j]) })

	var pots []Pot
	prev := money.Zero
	for _, level := range levels {
		layer := level.Sub(prev)

		contributors := 0
		eligible := map[int]bool{}
		for _, s := range seats {
			if s.TotalBet.GreaterOrEqual(level) {
				contributors++
				if s.State != SeatFolded {
					eligible[s.Index] = true
				}
			}
		}
		amount := layer.MulInt(contributors)
		if amount.IsPositive() && len(eligible) > 0 {
			pots = append(pots, Pot{Amount: amount, EligibleSeats: eligible})
		}
		prev = level
	}
	return pots
}

func containsAmount(list []money.Amount, a money.Amount) bool {
	for _, x := range list {
		if x.Equal(a) {
			return true
		}
	}
	return false
}

// bestHandSeats returns the eligible seat indices holding the best hand,
// possibly more than one in a tie.
func bestHandSeats(eligible map[int]bool, hands map[int]poker.Result) []int {
	var best *poker.Result
	var winners []int
	indices := make([]int, 0, len(eligible))
	for idx := range eligible {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		result := hands[idx]
		switch {
		case best == nil || poker.Compare(result, *best) > 0:
			r := result
			best = &r
			winners = []int{idx}
		case poker.Compare(result, *best) == 0:
			winners = append(winners, idx)
		}
	}
	return winners
}

// firstClockwiseOf returns whichever of candidates sits first clockwise of
// from among the given table seating order; used to award a pot's
// indivisible remainder chip.
func firstClockwiseOf(candidates []int, from int, seats []*Seat) int {
	if len(candidates) == 0 {
		return -1
	}
	set := map[int]bool{}
	for _, c := range candidates {
		set[c] = true
	}
	n := len(seats)
	start := seatPosition(seats, from)
	for i := 1; i <= n; i++ {
		idx := seats[(start+i)%n].Index
		if set[idx] {
			return idx
		}
	}
	return candidates[0]
}

// showdownOrder lists contesting seats in the order their hands are
// revealed: the last river aggressor first if there was one, otherwise the
// first non-folded seat clockwise of the dealer, then the rest clockwise.
func showdownOrder(h *Hand, seats []*Seat, contesting []*Seat) []int {
	n := len(seats)
	var start int
	if h.LastAggressorSeat != nil {
		start = seatPosition(seats, *h.LastAggressorSeat)
	} else {
		start = seatPosition(seats, h.DealerIndex) + 1
	}

	contestingSet := map[int]bool{}
	for _, s := range contesting {
		contestingSet[s.Index] = true
	}

	var order []int
	for i := 0; i < n; i++ {
		idx := seats[(start+i)%n].Index
		if contestingSet[idx] {
			order = append(order, idx)
		}
	}
	return order
}

func (e *Engine) archiveHand(h *Hand, finalPhase Phase, holeCards map[int][]poker.Card) *HandRecord {
	return &HandRecord{
		HandNumber:     h.Number,
		Pot:            h.WinnerInfo.PotAmount,
		FinalPhase:     finalPhase,
		CommunityCards: h.CommunityCards,
		HoleCards:      holeCards,
		Actions:        append([]Action(nil), h.Actions...),
		WinnerInfo:     *h.WinnerInfo,
	}
}
