package engine

import (
	"time"

	"poker-platform/internal/apierr"
	"poker-platform/pkg/money"
	"poker-platform/pkg/rng"
)

// Engine drives a single table's hand state machine. It holds no table
// identity and no seats of its own; seats are owned and persisted by the
// table controller and passed in on every call.
type Engine struct {
	rng   *rng.System
	audit *rng.AuditLogger
}

// NewEngine builds an Engine around a shuffling source and its audit sink.
func NewEngine(r *rng.System, audit *rng.AuditLogger) *Engine {
	return &Engine{rng: r, audit: audit}
}

// Apply validates and applies one seat's action, advances turn order, and
// returns a non-nil HandRecord if the action ended the hand.
func (e *Engine) Apply(h *Hand, seats []*Seat, cfg Config, seatIndex int, kind ActionKind, amount money.Amount) (*HandRecord, error) {
	if !h.Phase.IsBetting() {
		return nil, apierr.New(apierr.KindGameNotInProgress, "hand is not accepting actions")
	}
	if h.CurrentToAct != seatIndex {
		return nil, apierr.New(apierr.KindNotYourTurn, "it is not this seat's turn")
	}
	seat := seatByIndex(seats, seatIndex)
	if seat == nil || seat.State != SeatActiveInHand {
		return nil, apierr.New(apierr.KindInvalidAction, "seat is not active in the hand")
	}

	loggedAmount := money.Zero

	switch kind {
	case ActionFold:
		seat.State = SeatFolded

	case ActionCheck:
		if !seat.CurrentBet.Equal(h.CurrentBet) {
			return nil, apierr.New(apierr.KindInvalidAction, "cannot check with an outstanding bet")
		}

	case ActionCall:
		if seat.CurrentBet.GreaterOrEqual(h.CurrentBet) {
			return nil, apierr.New(apierr.KindInvalidAction, "nothing to call")
		}
		owed := h.CurrentBet.Sub(seat.CurrentBet)
		moveToPot(seat, h, money.Min(owed, seat.Stack))
		loggedAmount = seat.CurrentBet

	case ActionBet:
		if !h.CurrentBet.IsZero() {
			return nil, apierr.New(apierr.KindInvalidAction, "cannot bet when a bet is already outstanding")
		}
		if amount.LessThan(cfg.BigBlind) {
			return nil, apierr.New(apierr.KindInvalidAmount, "bet must be at least the big blind")
		}
		moveToPot(seat, h, money.Min(amount, seat.Stack))
		h.CurrentBet = seat.CurrentBet
		h.LastAggressorSeat = &seat.Index
		h.PhaseActedSet = map[int]bool{}
		loggedAmount = seat.CurrentBet

	case ActionRaise:
		if h.CurrentBet.IsZero() {
			return nil, apierr.New(apierr.KindInvalidAction, "cannot raise when there is no bet")
		}
		minTarget := h.CurrentBet.Add(h.CurrentBet)
		if amount.LessThan(minTarget) {
			return nil, apierr.New(apierr.KindInvalidAmount, "raise must bring the total bet to at least twice the current bet")
		}
		available := seat.Stack.Add(seat.CurrentBet)
		target := money.Min(amount, available)
		delta := target.Sub(seat.CurrentBet)
		moveToPot(seat, h, delta)
		h.CurrentBet = seat.CurrentBet
		h.LastAggressorSeat = &seat.Index
		h.PhaseActedSet = map[int]bool{}
		loggedAmount = seat.CurrentBet

	default:
		return nil, apierr.New(apierr.KindInvalidAction, "unknown action kind")
	}

	if h.Phase == PhasePreflop && seatIndex == h.BigBlindSeat {
		h.BigBlindActed = true
	}
	h.PhaseActedSet[seatIndex] = true

	h.seq++
	h.Actions = append(h.Actions, Action{
		SeatIndex:  seatIndex,
		PlayerName: seat.DisplayName,
		Kind:       kind,
		Amount:     loggedAmount,
		Phase:      h.Phase,
		Seq:        h.seq,
		Timestamp:  time.Now(),
	})

	return e.settle(h, seats, cfg), nil
}

// settle re-evaluates hand progress after a dealt hand or an applied action:
// it resolves fold-outs, advances streets when a betting round is complete,
// and otherwise points CurrentToAct at the next seat that owes an action.
// It returns a non-nil HandRecord exactly when it ends the hand.
func (e *Engine) settle(h *Hand, seats []*Seat, cfg Config) *HandRecord {
	for {
		contesting := contestingSeats(seats)
		if len(contesting) <= 1 {
			return e.singleWinnerFoldOut(h, seats, contesting)
		}

		if !roundComplete(h, seats) {
			next := nextActableSeat(seats, h.CurrentToAct)
			if next == -1 {
				// No seat can act (all remaining are all-in); fall through
				// to round completion below rather than loop forever.
			} else {
				h.CurrentToAct = next
				return nil
			}
		}

		finalPhase := h.Phase
		if finalPhase == PhaseRiver {
			return e.showdown(h, seats)
		}

		for _, s := range seats {
			s.CurrentBet = money.Zero
		}
		h.CurrentBet = money.Zero
		h.PhaseActedSet = map[int]bool{}
		h.LastAggressorSeat = nil
		h.BigBlindActed = false

		switch h.Phase {
		case PhasePreflop:
			h.dealCommunity(3)
			h.Phase = PhaseFlop
		case PhaseFlop:
			h.dealCommunity(1)
			h.Phase = PhaseTurn
		case PhaseTurn:
			h.dealCommunity(1)
			h.Phase = PhaseRiver
		}
		h.CurrentToAct = h.DealerIndex
	}
}

// dealCommunity deals n cards face up with no burn card, matching the
// wire-format and showdown semantics this specification defines.
func (h *Hand) dealCommunity(n int) {
	cards, err := h.Deck.Deal(n)
	if err != nil {
		// The deck is sized for a full hand at any seat count; this would
		// only trip on a corrupted Hand, which callers construct via
		// StartHand exclusively.
		panic(err)
	}
	h.CommunityCards = append(h.CommunityCards, cards...)
}

// roundComplete implements the three-part betting-round-complete predicate:
// every live seat with chips matches the current bet, every such seat has
// acted since the last aggressive action, and preflop the big blind has had
// its option.
func roundComplete(h *Hand, seats []*Seat) bool {
	for _, s := range seats {
		if s.State != SeatActiveInHand {
			continue
		}
		if !s.CurrentBet.Equal(h.CurrentBet) {
			return false
		}
		if !h.PhaseActedSet[s.Index] {
			return false
		}
	}
	if h.Phase == PhasePreflop {
		bb := seatByIndex(seats, h.BigBlindSeat)
		if bb != nil && bb.State == SeatActiveInHand && !h.BigBlindActed {
			return false
		}
	}
	return true
}
