package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"poker-platform/internal/apierr"
	"poker-platform/internal/engine"
	"poker-platform/internal/obslog"
	"poker-platform/pkg/money"
	"poker-platform/pkg/rng"
)

type stubLedger struct {
	balances map[string]money.Amount
}

func newStubLedger() *stubLedger {
	return &stubLedger{balances: map[string]money.Amount{}}
}

func (l *stubLedger) fund(playerID string, amount money.Amount) {
	l.balances[playerID] = l.balances[playerID].Add(amount)
}

func (l *stubLedger) Debit(playerID string, amount money.Amount) error {
	bal := l.balances[playerID]
	if bal.LessThan(amount) {
		return apierr.New(apierr.KindInsufficientFunds, "insufficient bankroll")
	}
	l.balances[playerID] = bal.Sub(amount)
	return nil
}

func (l *stubLedger) Credit(playerID string, amount money.Amount) error {
	l.balances[playerID] = l.balances[playerID].Add(amount)
	return nil
}

type stubBroadcaster struct {
	snapshots []Snapshot
	summaries []GameSummary
}

func (b *stubBroadcaster) Publish(tableID string, snapshot Snapshot) {
	b.snapshots = append(b.snapshots, snapshot)
}

func (b *stubBroadcaster) PublishGameSummary(tableID string, summary GameSummary) {
	b.summaries = append(b.summaries, summary)
}

type stubHandStore struct {
	records []engine.HandRecord
}

func (s *stubHandStore) SaveHandRecord(tableID string, record engine.HandRecord) error {
	s.records = append(s.records, record)
	return nil
}

type stubSummaryStore struct {
	saved []GameSummary
}

func (s *stubSummaryStore) SaveGameSummary(summary GameSummary) error {
	s.saved = append(s.saved, summary)
	return nil
}

func testTable(t *testing.T, seed string) (*Table, *stubLedger, *stubBroadcaster) {
	t.Helper()
	r, err := rng.NewSystemWithSeed([]byte(seed))
	require.NoError(t, err)
	audit := rng.NewAuditLogger(nil)
	ledger := newStubLedger()
	bcast := &stubBroadcaster{}
	cfg := engine.Config{
		SmallBlind: money.New(1),
		BigBlind:   money.New(2),
		MinBuyIn:   money.New(40),
		MaxBuyIn:   money.New(400),
		MaxSeats:   6,
	}
	table := NewTable("table-1", cfg, r, audit, ledger, bcast, &stubHandStore{}, &stubSummaryStore{}, obslog.New())
	return table, ledger, bcast
}

func TestJoinRejectsBuyInOutsideLimits(t *testing.T) {
	table, ledger, _ := testTable(t, "join-limits")
	ledger.fund("p1", money.New(1000))

	_, err := table.Join(context.Background(), "p1", "Alice", money.New(10))
	require.Error(t, err)
	require.True(t, apierr.Is(err, apierr.KindInvalidAmount))
}

func TestJoinRejectsInsufficientBankroll(t *testing.T) {
	table, _, _ := testTable(t, "join-poor")
	_, err := table.Join(context.Background(), "p1", "Alice", money.New(100))
	require.Error(t, err)
	require.True(t, apierr.Is(err, apierr.KindInsufficientFunds))
}

func TestJoinSeatsPlayerAndDebitsBankroll(t *testing.T) {
	table, ledger, bcast := testTable(t, "join-ok")
	ledger.fund("p1", money.New(1000))

	snap, err := table.Join(context.Background(), "p1", "Alice", money.New(100))
	require.NoError(t, err)
	require.Len(t, snap.Players, 1)
	require.True(t, ledger.balances["p1"].Equal(money.New(900)))
	require.Len(t, bcast.snapshots, 1)

	_, err = table.Join(context.Background(), "p1", "Alice", money.New(100))
	require.True(t, apierr.Is(err, apierr.KindAlreadySeated))
}

func seatTwoPlayers(t *testing.T, table *Table, ledger *stubLedger) {
	t.Helper()
	ledger.fund("p1", money.New(1000))
	ledger.fund("p2", money.New(1000))
	_, err := table.Join(context.Background(), "p1", "Alice", money.New(200))
	require.NoError(t, err)
	_, err = table.Join(context.Background(), "p2", "Bob", money.New(200))
	require.NoError(t, err)
}

func TestStartDealsFirstHand(t *testing.T) {
	table, ledger, _ := testTable(t, "start-hand")
	seatTwoPlayers(t, table, ledger)

	snap, err := table.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, "PREFLOP", snap.Phase)
	require.True(t, snap.Pot.Equal(money.New(3)))
}

func TestStartRejectsWhileHandInProgress(t *testing.T) {
	table, ledger, _ := testTable(t, "start-twice")
	seatTwoPlayers(t, table, ledger)

	_, err := table.Start(context.Background())
	require.NoError(t, err)

	_, err = table.Start(context.Background())
	require.True(t, apierr.Is(err, apierr.KindGameAlreadyStarted))
}

func TestActionRejectsWrongTurn(t *testing.T) {
	table, ledger, _ := testTable(t, "wrong-turn")
	seatTwoPlayers(t, table, ledger)
	_, err := table.Start(context.Background())
	require.NoError(t, err)

	// Heads-up: dealer/SB acts first preflop. Find whichever player is not
	// first to act and assert they cannot act out of turn.
	snap, err := table.Snapshot(context.Background())
	require.NoError(t, err)
	var outOfTurn string
	for _, p := range snap.Players {
		if p.SeatIndex != snap.CurrentToAct {
			outOfTurn = p.PlayerID
		}
	}
	require.NotEmpty(t, outOfTurn)

	_, err = table.Action(context.Background(), outOfTurn, engine.ActionCheck, money.Zero)
	require.True(t, apierr.Is(err, apierr.KindNotYourTurn))
}

func TestFoldOutEndsHandAndKeepsBothSeated(t *testing.T) {
	table, ledger, _ := testTable(t, "fold-out")
	seatTwoPlayers(t, table, ledger)
	_, err := table.Start(context.Background())
	require.NoError(t, err)

	snap, err := table.Snapshot(context.Background())
	require.NoError(t, err)
	firstToAct := snap.CurrentToAct

	var actor string
	for _, p := range snap.Players {
		if p.SeatIndex == firstToAct {
			actor = p.PlayerID
		}
	}

	snap, err = table.Action(context.Background(), actor, engine.ActionFold, money.Zero)
	require.NoError(t, err)
	require.NotNil(t, snap.WinnerInfo)
	require.Equal(t, "single_winner", snap.WinnerInfo.Type)
	require.Equal(t, StatusActive, snap.Status)
}

func TestCashOutForbiddenMidHand(t *testing.T) {
	table, ledger, _ := testTable(t, "cashout-mid-hand")
	seatTwoPlayers(t, table, ledger)
	_, err := table.Start(context.Background())
	require.NoError(t, err)

	_, _, _, err = table.CashOut(context.Background(), "p1")
	require.True(t, apierr.Is(err, apierr.KindCannotLeaveActive))
}

func TestReadyStartsNextHandWhenAllReady(t *testing.T) {
	table, ledger, _ := testTable(t, "ready-next-hand")
	seatTwoPlayers(t, table, ledger)
	_, err := table.Start(context.Background())
	require.NoError(t, err)

	snap, err := table.Snapshot(context.Background())
	require.NoError(t, err)
	firstToAct := snap.CurrentToAct
	var actor, other string
	for _, p := range snap.Players {
		if p.SeatIndex == firstToAct {
			actor = p.PlayerID
		} else {
			other = p.PlayerID
		}
	}

	snap, err = table.Action(context.Background(), actor, engine.ActionFold, money.Zero)
	require.NoError(t, err)
	require.Equal(t, 1, snapHandsPlayedFromActions(snap))

	_, err = table.Ready(context.Background(), actor)
	require.NoError(t, err)
	snap2, err := table.Ready(context.Background(), other)
	require.NoError(t, err)
	require.Equal(t, "PREFLOP", snap2.Phase)
}

// snapHandsPlayedFromActions is a crude helper distinguishing "a hand
// completed" snapshots from in-progress ones for this test's purposes.
func snapHandsPlayedFromActions(snap Snapshot) int {
	if snap.WinnerInfo != nil {
		return 1
	}
	return 0
}

func TestCashOutAfterHandGeneratesGameSummaryWhenAllFinal(t *testing.T) {
	table, ledger, bcast := testTable(t, "game-summary")
	seatTwoPlayers(t, table, ledger)
	_, err := table.Start(context.Background())
	require.NoError(t, err)

	snap, err := table.Snapshot(context.Background())
	require.NoError(t, err)
	firstToAct := snap.CurrentToAct
	var actor, other string
	for _, p := range snap.Players {
		if p.SeatIndex == firstToAct {
			actor = p.PlayerID
		} else {
			other = p.PlayerID
		}
	}

	_, err = table.Action(context.Background(), actor, engine.ActionFold, money.Zero)
	require.NoError(t, err)

	_, _, summary1, err := table.CashOut(context.Background(), actor)
	require.NoError(t, err)
	require.Nil(t, summary1)

	_, generated, summary2, err := table.CashOut(context.Background(), other)
	require.NoError(t, err)
	require.True(t, generated)
	require.NotNil(t, summary2)
	require.Len(t, summary2.PerSeat, 2)
	require.Len(t, bcast.summaries, 1)

	_, status, err := table.GameSummaryInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusFinished, status)
}

func TestBuyBackInRestoresActiveSeat(t *testing.T) {
	table, ledger, _ := testTable(t, "buy-back-in")
	seatTwoPlayers(t, table, ledger)
	ledger.fund("p1", money.New(1000))

	_, err := table.Start(context.Background())
	require.NoError(t, err)

	snap, err := table.Snapshot(context.Background())
	require.NoError(t, err)
	firstToAct := snap.CurrentToAct
	var actor string
	for _, p := range snap.Players {
		if p.SeatIndex == firstToAct {
			actor = p.PlayerID
		}
	}
	_, err = table.Action(context.Background(), actor, engine.ActionFold, money.Zero)
	require.NoError(t, err)

	_, _, _, err = table.CashOut(context.Background(), actor)
	require.NoError(t, err)

	// The actor posted the 1-chip small blind and folded, keeping 199 of its
	// 200 buy-in; buying back in adds 150 to that.
	total, err := table.BuyBackIn(context.Background(), actor, money.New(150))
	require.NoError(t, err)
	require.True(t, total.Equal(money.New(349)))
}
