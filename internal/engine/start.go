package engine

import (
	"poker-platform/internal/apierr"
	"poker-platform/pkg/money"
	"poker-platform/pkg/poker"
	"poker-platform/pkg/rng"
)

// RotateDealer returns the next dealer seat index: a random eligible seat on
// the table's first hand, otherwise the next eligible seat clockwise of the
// current dealer.
func (e *Engine) RotateDealer(seats []*Seat, currentDealerIndex int, isFirstHand bool, r *rng.System) (int, error) {
	eligible := eligibleSeats(seats)
	if len(eligible) < 2 {
		return 0, apierr.New(apierr.KindGameNotInProgress, "fewer than 2 eligible seats to deal")
	}
	if isFirstHand {
		return eligible[r.RandomInt(len(eligible))].Index, nil
	}
	next := nextEligibleClockwise(seats, currentDealerIndex)
	if next == -1 {
		return eligible[0].Index, nil
	}
	return next, nil
}

// StartHand deals a new hand: resets per-hand seat state, shuffles a fresh
// deck, posts blinds, deals hole cards, and sets the first seat to act.
// handNumber and dealerIndex are owned by the caller (the table controller)
// since they persist independent of any single Hand.
func (e *Engine) StartHand(seats []*Seat, cfg Config, handNumber int, dealerIndex int) (*Hand, error) {
	eligible := eligibleSeats(seats)
	if len(eligible) < 2 {
		return nil, apierr.New(apierr.KindGameNotInProgress, "fewer than 2 eligible seats to deal")
	}

	for _, s := range seats {
		s.CurrentBet = money.Zero
		s.TotalBet = money.Zero
		s.HoleCards = nil
		s.ReadyForNext = false
		if s.Lifecycle == LifecycleActive && s.Stack.IsPositive() {
			s.State = SeatActiveInHand
		} else {
			s.State = SeatSittingOut
		}
	}

	deck := poker.NewDeck().Shuffle(e.rng)
	e.audit.LogShuffle("", handNumber, e.rng)

	h := &Hand{
		Number:        handNumber,
		Phase:         PhasePreflop,
		DealerIndex:   dealerIndex,
		Pot:           money.Zero,
		Deck:          deck,
		PhaseActedSet: map[int]bool{},
	}

	sbSeat, bbSeat, err := assignBlinds(seats, dealerIndex)
	if err != nil {
		return nil, err
	}
	h.SmallBlindSeat = sbSeat.Index
	h.BigBlindSeat = bbSeat.Index

	sbAmount := money.Min(cfg.SmallBlind, sbSeat.Stack)
	moveToPot(sbSeat, h, sbAmount)
	bbAmount := money.Min(cfg.BigBlind, bbSeat.Stack)
	moveToPot(bbSeat, h, bbAmount)
	h.CurrentBet = bbAmount
	h.LastAggressorSeat = &bbSeat.Index

	for _, s := range eligibleDealtSeats(seats) {
		cards, err := h.Deck.Deal(2)
		if err != nil {
			return nil, apierr.New(apierr.KindInsufficientCards, err.Error())
		}
		s.HoleCards = cards
	}

	h.CurrentToAct = bbSeat.Index
	e.settle(h, seats, cfg)

	return h, nil
}

func eligibleDealtSeats(seats []*Seat) []*Seat {
	var out []*Seat
	for _, s := range seats {
		if s.State == SeatActiveInHand {
			out = append(out, s)
		}
	}
	return out
}

// assignBlinds picks small/big blind seats clockwise of the dealer. Heads-up
// the dealer posts the small blind, matching standard two-player rules.
func assignBlinds(seats []*Seat, dealerIndex int) (sb, bb *Seat, err error) {
	eligible := eligibleSeats(seats)
	dealer := seatByIndex(seats, dealerIndex)
	if dealer == nil {
		return nil, nil, apierr.New(apierr.KindInternal, "dealer seat not found")
	}
	if len(eligible) == 2 {
		sbIdx := dealerIndex
		bbIdx := nextEligibleClockwise(seats, dealerIndex)
		return seatByIndex(seats, sbIdx), seatByIndex(seats, bbIdx), nil
	}
	sbIdx := nextEligibleClockwise(seats, dealerIndex)
	bbIdx := nextEligibleClockwise(seats, sbIdx)
	return seatByIndex(seats, sbIdx), seatByIndex(seats, bbIdx), nil
}
