package game

import (
	"context"
	"time"

	"poker-platform/internal/apierr"
	"poker-platform/internal/engine"
	"poker-platform/internal/metrics"
	"poker-platform/internal/obslog"
	"poker-platform/pkg/money"
	"poker-platform/pkg/rng"
)

// Table is the Table Controller for one table: it owns the current Hand
// and all Seats, and serializes every mutating operation behind a single
// acquisition token. Grounded on internal/game/table.go's actions-channel
// pattern, generalized here from a polling gameLoop into direct
// dispatch-and-reply so every call returns a synchronous snapshot or error
// rather than waiting on a ticker.
type Table struct {
	id  string
	cfg engine.Config

	sem chan struct{} // capacity-1 token; acquired to mutate, held for one operation

	seats       []*engine.Seat
	hand        *engine.Hand
	handNumber  int
	dealerIndex int
	isFirstHand bool
	status      Status

	quarantined      bool
	quarantineReason string

	eng       *engine.Engine
	rng       *rng.System
	ledger    PlayerLedger
	bcast     Broadcaster
	hands     HandStore
	summary   SummaryStore
	analytics AnalyticsSink

	handHistory []engine.HandRecord
	gameSummary *GameSummary

	log *obslog.TableLogger
}

// NewTable builds a Table Controller with an empty seat list.
func NewTable(id string, cfg engine.Config, r *rng.System, audit *rng.AuditLogger, ledger PlayerLedger, bcast Broadcaster, hands HandStore, summary SummaryStore, logger *obslog.Logger) *Table {
	t := &Table{
		id:          id,
		cfg:         cfg,
		sem:         make(chan struct{}, 1),
		dealerIndex: 0,
		isFirstHand: true,
		status:      StatusActive,
		eng:         engine.NewEngine(r, audit),
		rng:         r,
		ledger:      ledger,
		bcast:       bcast,
		hands:       hands,
		summary:     summary,
		log:         logger.ForTable(id),
	}
	t.sem <- struct{}{}
	return t
}

// WithAnalytics attaches an optional analytics sink, returning t for
// chaining at construction time.
func (t *Table) WithAnalytics(sink AnalyticsSink) *Table {
	t.analytics = sink
	return t
}

// acquire takes the table's exclusive mutator, failing with Busy if ctx is
// done first.
func (t *Table) acquire(ctx context.Context) error {
	start := time.Now()
	select {
	case <-t.sem:
		metrics.MutatorWaitSeconds.WithLabelValues(t.id).Observe(time.Since(start).Seconds())
		return nil
	case <-ctx.Done():
		return apierr.New(apierr.KindBusy, "table mutator not acquired before deadline")
	}
}

func (t *Table) release() {
	t.sem <- struct{}{}
}

// mutate runs fn under the table's exclusive mutator, publishes the
// resulting snapshot on success, and quarantines the table on any
// apierr.KindInternal error so no further mutation is accepted until an
// operator intervenes.
func (t *Table) mutate(ctx context.Context, fn func() error) (Snapshot, error) {
	if err := t.acquire(ctx); err != nil {
		return Snapshot{}, err
	}
	defer t.release()

	if t.quarantined {
		return Snapshot{}, apierr.New(apierr.KindInternal, "table is quarantined: "+t.quarantineReason)
	}

	if err := fn(); err != nil {
		if apierr.Is(err, apierr.KindInternal) || apierr.Is(err, apierr.KindInsufficientCards) || apierr.Is(err, apierr.KindDeckExhausted) {
			t.quarantined = true
			if e, ok := err.(*apierr.Error); ok {
				t.quarantineReason = e.Detail
			}
			var lastSeq uint64
			if t.hand != nil && len(t.hand.Actions) > 0 {
				lastSeq = t.hand.Actions[len(t.hand.Actions)-1].Seq
			}
			t.log.HandPrintf(t.handNumber, "quarantined after internal error (last action seq %d): %v", lastSeq, err)
		}
		return Snapshot{}, err
	}

	snap := t.buildSnapshotLocked()
	if t.bcast != nil {
		t.bcast.Publish(t.id, snap)
	}
	return snap, nil
}

func (t *Table) seatByPlayer(playerID string) *engine.Seat {
	for _, s := range t.seats {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

func (t *Table) eligibleCount() int {
	n := 0
	for _, s := range t.seats {
		if s.Lifecycle == engine.LifecycleActive && s.Stack.IsPositive() {
			n++
		}
	}
	return n
}

// Join seats a new player. Spec.md §4.4: minBuyIn ≤ buyIn ≤ maxBuyIn,
// buyIn ≤ bankroll, a seat is available.
func (t *Table) Join(ctx context.Context, playerID, displayName string, buyIn money.Amount) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if t.seatByPlayer(playerID) != nil {
			return apierr.New(apierr.KindAlreadySeated, "player already has a seat at this table")
		}
		if buyIn.LessThan(t.cfg.MinBuyIn) || buyIn.GreaterThan(t.cfg.MaxBuyIn) {
			return apierr.New(apierr.KindInvalidAmount, "buy-in outside table limits")
		}
		if len(t.seats) >= t.cfg.MaxSeats {
			return apierr.New(apierr.KindTableFull, "no seats available")
		}
		if err := t.ledger.Debit(playerID, buyIn); err != nil {
			return apierr.New(apierr.KindInsufficientFunds, err.Error())
		}
		index := nextFreeSeatIndex(t.seats, t.cfg.MaxSeats)
		t.seats = append(t.seats, &engine.Seat{
			Index:         index,
			PlayerID:      playerID,
			DisplayName:   displayName,
			Stack:         buyIn,
			StartingStack: buyIn,
			Lifecycle:     engine.LifecycleActive,
			State:         engine.SeatSittingOut,
		})
		metrics.ActiveSeats.WithLabelValues(t.id).Set(float64(t.eligibleCount()))
		return nil
	})
}

func nextFreeSeatIndex(seats []*engine.Seat, maxSeats int) int {
	taken := make(map[int]bool, len(seats))
	for _, s := range seats {
		taken[s.Index] = true
	}
	for i := 0; i < maxSeats; i++ {
		if !taken[i] {
			return i
		}
	}
	return len(seats)
}

// Start deals the first (or next) hand. Spec.md §4.4 requires phase
// WAITING_FOR_PLAYERS or never-started.
func (t *Table) Start(ctx context.Context) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if t.hand != nil && t.hand.Phase.IsBetting() {
			return apierr.New(apierr.KindGameAlreadyStarted, "a hand is already in progress")
		}
		return t.startHandLocked()
	})
}

func (t *Table) startHandLocked() error {
	dealer, err := t.eng.RotateDealer(t.seats, t.dealerIndex, t.isFirstHand, t.rng)
	if err != nil {
		return err
	}
	t.dealerIndex = dealer
	t.isFirstHand = false
	t.handNumber++

	h, err := t.eng.StartHand(t.seats, t.cfg, t.handNumber, t.dealerIndex)
	if err != nil {
		t.handNumber--
		return err
	}
	t.hand = h
	metrics.HandsStarted.WithLabelValues(t.id).Inc()
	metrics.ActiveSeats.WithLabelValues(t.id).Set(float64(t.eligibleCount()))
	return nil
}

// Action applies a player's game action. Spec.md §4.3.4.
func (t *Table) Action(ctx context.Context, playerID string, kind engine.ActionKind, amount money.Amount) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if t.hand == nil {
			return apierr.New(apierr.KindGameNotInProgress, "no hand in progress")
		}
		seat := t.seatByPlayer(playerID)
		if seat == nil {
			return apierr.New(apierr.KindNotSeated, "player has no seat at this table")
		}
		record, err := t.eng.Apply(t.hand, t.seats, t.cfg, seat.Index, kind, amount)
		if err != nil {
			metrics.ActionErrors.WithLabelValues(errorKindLabel(err)).Inc()
			return err
		}
		metrics.ActionsApplied.WithLabelValues(t.id, kind.String()).Inc()
		if record != nil {
			t.archiveHandLocked(ctx, *record)
		}
		return nil
	})
}

func errorKindLabel(err error) string {
	if e, ok := err.(*apierr.Error); ok {
		return string(e.Kind)
	}
	return string(apierr.KindInternal)
}

// archiveHandLocked persists a completed hand and checks whether the table
// is now finished (spec.md §4.3.9: fewer than two eligible seats).
func (t *Table) archiveHandLocked(ctx context.Context, record engine.HandRecord) {
	t.handHistory = append(t.handHistory, record)
	if t.hands != nil {
		if err := t.hands.SaveHandRecord(t.id, record); err != nil {
			t.log.HandPrintf(record.HandNumber, "failed to persist hand: %v", err)
		}
	}
	if t.analytics != nil {
		seatPlayerIDs := make(map[int]string, len(t.seats))
		finalStacks := make(map[int]int64, len(t.seats))
		startingStacks := make(map[int]int64, len(t.seats))
		for _, s := range t.seats {
			seatPlayerIDs[s.Index] = s.PlayerID
			finalStacks[s.Index] = s.Stack.Int64()
			startingStacks[s.Index] = s.StartingStack.Int64()
		}
		if err := t.analytics.RecordHand(ctx, t.id, record, seatPlayerIDs, startingStacks, finalStacks, len(t.seats)); err != nil {
			t.log.HandPrintf(record.HandNumber, "failed to record hand analytics: %v", err)
		}
	}
	metrics.HandsCompleted.WithLabelValues(t.id, record.WinnerInfo.Type).Inc()
	metrics.ActiveSeats.WithLabelValues(t.id).Set(float64(t.eligibleCount()))
	if t.eligibleCount() < 2 {
		t.status = StatusFinished
	}
}

// Ready marks a seat ready for the next hand. Spec.md §4.3.9.
func (t *Table) Ready(ctx context.Context, playerID string) (Snapshot, error) {
	return t.mutate(ctx, func() error {
		if t.hand == nil || t.hand.WinnerInfo == nil {
			return apierr.New(apierr.KindInvalidAction, "no completed hand awaiting readiness")
		}
		seat := t.seatByPlayer(playerID)
		if seat == nil {
			return apierr.New(apierr.KindNotSeated, "player has no seat at this table")
		}
		seat.ReadyForNext = true

		if t.eligibleCount() < 2 {
			t.status = StatusFinished
			return nil
		}
		if t.allEligibleReady() {
			return t.startHandLocked()
		}
		return nil
	})
}

func (t *Table) allEligibleReady() bool {
	count := 0
	for _, s := range t.seats {
		if s.Lifecycle == engine.LifecycleActive && s.Stack.IsPositive() {
			count++
			if !s.ReadyForNext {
				return false
			}
		}
	}
	return count >= 2
}

// CashOut ends a seat's participation in future hands while keeping its
// seat reserved. Spec.md §4.4: refused only while a betting round is in
// progress and the seat is still ACTIVE_IN_HAND; folded, all-in and
// sitting-out seats may cash out at any time.
func (t *Table) CashOut(ctx context.Context, playerID string) (money.Amount, bool, *GameSummary, error) {
	var stack money.Amount
	var summaryGenerated bool
	var generatedSummary *GameSummary

	_, err := t.mutate(ctx, func() error {
		seat := t.seatByPlayer(playerID)
		if seat == nil {
			return apierr.New(apierr.KindNotSeated, "player has no seat at this table")
		}
		if seat.Lifecycle == engine.LifecycleCashedOut {
			return apierr.New(apierr.KindAlreadyCashedOut, "seat is already cashed out")
		}
		if t.hand != nil && t.hand.Phase.IsBetting() && seat.State == engine.SeatActiveInHand {
			return apierr.New(apierr.KindCannotLeaveActive, "cannot cash out while active in a hand in progress")
		}
		final := seat.Stack
		seat.FinalStack = &final
		seat.Lifecycle = engine.LifecycleCashedOut
		stack = seat.Stack

		if t.allSeatsFinal() {
			generatedSummary = t.buildGameSummaryLocked()
			summaryGenerated = true
		}
		return nil
	})
	if err != nil {
		return money.Zero, false, nil, err
	}
	if summaryGenerated && t.summary != nil {
		if err := t.summary.SaveGameSummary(*generatedSummary); err != nil {
			t.log.Printf("failed to persist game summary: %v", err)
		}
	}
	if summaryGenerated && t.bcast != nil {
		t.bcast.PublishGameSummary(t.id, *generatedSummary)
	}
	return stack, summaryGenerated, generatedSummary, nil
}

func (t *Table) allSeatsFinal() bool {
	if len(t.seats) == 0 {
		return false
	}
	for _, s := range t.seats {
		if s.FinalStack == nil {
			return false
		}
	}
	return true
}

func (t *Table) buildGameSummaryLocked() *GameSummary {
	summary := &GameSummary{
		TableID:     t.id,
		CompletedAt: time.Now().UTC(),
		HandsPlayed: t.handNumber,
	}
	for _, s := range t.seats {
		final := s.Stack
		if s.FinalStack != nil {
			final = *s.FinalStack
		}
		summary.PerSeat = append(summary.PerSeat, SeatSummary{
			PlayerID:      s.PlayerID,
			StartingStack: s.StartingStack,
			FinalStack:    final,
			Net:           final.Sub(s.StartingStack),
			Status:        s.Lifecycle.String(),
		})
	}
	t.gameSummary = summary
	t.status = StatusFinished
	return summary
}

// BuyBackIn restores a cashed-out seat to active play. Spec.md §4.4.
func (t *Table) BuyBackIn(ctx context.Context, playerID string, amount money.Amount) (total money.Amount, err error) {
	_, mutateErr := t.mutate(ctx, func() error {
		seat := t.seatByPlayer(playerID)
		if seat == nil {
			return apierr.New(apierr.KindNotSeated, "player has no seat at this table")
		}
		if seat.Lifecycle != engine.LifecycleCashedOut {
			return apierr.New(apierr.KindInvalidAction, "seat is not cashed out")
		}
		if t.hand != nil && t.hand.Phase.IsBetting() {
			return apierr.New(apierr.KindCannotLeaveActive, "cannot buy back in while a hand is in progress")
		}
		if amount.LessThan(t.cfg.MinBuyIn) || amount.GreaterThan(t.cfg.MaxBuyIn) {
			return apierr.New(apierr.KindInvalidAmount, "buy-in outside table limits")
		}
		if err := t.ledger.Debit(playerID, amount); err != nil {
			return apierr.New(apierr.KindInsufficientFunds, err.Error())
		}
		seat.Stack = seat.Stack.Add(amount)
		seat.StartingStack = seat.StartingStack.Add(amount)
		seat.FinalStack = nil
		seat.Lifecycle = engine.LifecycleActive
		total = seat.Stack
		return nil
	})
	return total, mutateErr
}

// Leave vacates a cashed-out seat, transferring its stack to the bankroll.
// Spec.md §4.4.
func (t *Table) Leave(ctx context.Context, playerID string) (money.Amount, error) {
	var left money.Amount
	_, err := t.mutate(ctx, func() error {
		seat := t.seatByPlayer(playerID)
		if seat == nil {
			return apierr.New(apierr.KindNotSeated, "player has no seat at this table")
		}
		if seat.Lifecycle != engine.LifecycleCashedOut {
			return apierr.New(apierr.KindCannotLeaveActive, "seat must be cashed out before leaving")
		}
		left = seat.Stack
		if err := t.ledger.Credit(playerID, left); err != nil {
			return apierr.New(apierr.KindInternal, err.Error())
		}
		seat.Stack = money.Zero
		seat.Lifecycle = engine.LifecycleLeft
		return nil
	})
	return left, err
}

// Snapshot returns the current read-only state without mutating anything.
func (t *Table) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := t.acquire(ctx); err != nil {
		return Snapshot{}, err
	}
	defer t.release()
	return t.buildSnapshotLocked(), nil
}

// HandHistory returns every archived hand for this table.
func (t *Table) HandHistory(ctx context.Context) ([]engine.HandRecord, error) {
	if err := t.acquire(ctx); err != nil {
		return nil, err
	}
	defer t.release()
	return append([]engine.HandRecord(nil), t.handHistory...), nil
}

// GameSummaryInfo returns the terminal summary, if any, and the table
// status.
func (t *Table) GameSummaryInfo(ctx context.Context) (*GameSummary, Status, error) {
	if err := t.acquire(ctx); err != nil {
		return nil, "", err
	}
	defer t.release()
	return t.gameSummary, t.status, nil
}

func (t *Table) buildSnapshotLocked() Snapshot {
	snap := Snapshot{
		TableID:     t.id,
		Status:      t.status,
		DealerIndex: t.dealerIndex,
		GameSummary: t.gameSummary,
	}
	if t.hand != nil {
		snap.Phase = t.hand.Phase.String()
		snap.Pot = t.hand.Pot
		snap.CurrentBet = t.hand.CurrentBet
		snap.CurrentToAct = t.hand.CurrentToAct
		snap.CommunityCards = cardStrings(t.hand.CommunityCards)
		snap.RecentActions = actionViews(t.hand.Actions)
		snap.WinnerInfo = winnerInfoView(t.hand.WinnerInfo)
	} else {
		snap.Phase = engine.PhaseWaitingForPlayers.String()
	}
	for _, s := range t.seats {
		snap.Players = append(snap.Players, playerSnapshot(s))
	}
	return snap
}

func playerSnapshot(s *engine.Seat) PlayerSnapshot {
	ps := PlayerSnapshot{
		SeatIndex:     s.Index,
		PlayerID:      s.PlayerID,
		DisplayName:   s.DisplayName,
		Stack:         s.Stack,
		StartingStack: s.StartingStack,
		FinalStack:    s.FinalStack,
		State:         s.State.String(),
		CurrentBet:    s.CurrentBet,
		TotalBet:      s.TotalBet,
		ReadyForNext:  s.ReadyForNext,
	}
	if len(s.HoleCards) > 0 {
		ps.HoleCards = &HoleCardsView{Cards: cardStrings(s.HoleCards), OwnerID: s.PlayerID}
	}
	return ps
}

func actionViews(actions []engine.Action) []ActionView {
	out := make([]ActionView, len(actions))
	for i, a := range actions {
		out[i] = ActionView{
			Seq:        a.Seq,
			PlayerName: a.PlayerName,
			Kind:       a.Kind.String(),
			Amount:     a.Amount,
			Phase:      a.Phase.String(),
			Timestamp:  a.Timestamp,
		}
	}
	return out
}

func winnerInfoView(w *engine.WinnerInfo) *WinnerInfoView {
	if w == nil {
		return nil
	}
	view := &WinnerInfoView{
		Type:           w.Type,
		Winners:        w.Winners,
		PotAmount:      w.PotAmount,
		CommunityCards: cardStrings(w.CommunityCards),
		ShowdownOrder:  w.ShowdownOrder,
		Reason:         w.Reason,
	}
	if len(w.AllHands) > 0 {
		view.AllHands = make(map[int]HandResultView, len(w.AllHands))
		for idx, result := range w.AllHands {
			view.AllHands[idx] = HandResultView{
				Category: int(result.Category),
				Name:     result.Name,
				BestFive: cardStrings(result.BestFive),
			}
		}
	}
	return view
}
