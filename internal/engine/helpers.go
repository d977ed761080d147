package engine

import "poker-platform/pkg/money"

func seatByIndex(seats []*Seat, index int) *Seat {
	for _, s := range seats {
		if s.Index == index {
			return s
		}
	}
	return nil
}

// eligibleSeats are seats that can be dealt into a new hand: still seated
// (not CASHED_OUT/LEFT) and holding chips.
func eligibleSeats(seats []*Seat) []*Seat {
	var out []*Seat
	for _, s := range seats {
		if s.Lifecycle == LifecycleActive && s.Stack.IsPositive() {
			out = append(out, s)
		}
	}
	return out
}

// nextEligibleClockwise returns the index of the first eligible seat
// strictly clockwise of from (exclusive), or -1 if none exists.
func nextEligibleClockwise(seats []*Seat, from int) int {
	if len(seats) == 0 {
		return -1
	}
	n := len(seats)
	start := seatPosition(seats, from)
	for i := 1; i <= n; i++ {
		s := seats[(start+i)%n]
		if s.Lifecycle == LifecycleActive && s.Stack.IsPositive() {
			return s.Index
		}
	}
	return -1
}

// nextActableSeat returns the next seat clockwise of from (exclusive) that
// is ACTIVE_IN_HAND and therefore eligible to be offered a turn, or -1 if
// no such seat remains.
func nextActableSeat(seats []*Seat, from int) int {
	if len(seats) == 0 {
		return -1
	}
	n := len(seats)
	start := seatPosition(seats, from)
	for i := 1; i <= n; i++ {
		s := seats[(start+i)%n]
		if s.State == SeatActiveInHand {
			return s.Index
		}
	}
	return -1
}

// seatPosition returns the slice position (not Index) of the seat with the
// given Index, or 0 if not found, so callers can safely compute (pos+i)%n
// even for a sentinel starting index that isn't itself in seats.
func seatPosition(seats []*Seat, index int) int {
	for i, s := range seats {
		if s.Index == index {
			return i
		}
	}
	return 0
}

// contestingSeats are seats still live for the pot: dealt in, not folded.
func contestingSeats(seats []*Seat) []*Seat {
	var out []*Seat
	for _, s := range seats {
		if s.State == SeatActiveInHand || s.State == SeatAllIn {
			out = append(out, s)
		}
	}
	return out
}

func moveToPot(seat *Seat, h *Hand, amount money.Amount) {
	seat.Stack = seat.Stack.Sub(amount)
	seat.CurrentBet = seat.CurrentBet.Add(amount)
	seat.TotalBet = seat.TotalBet.Add(amount)
	h.Pot = h.Pot.Add(amount)
	if seat.Stack.IsZero() && seat.State == SeatActiveInHand {
		seat.State = SeatAllIn
	}
}
