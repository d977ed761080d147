// Package game implements the Table Controller: one instance per table,
// serializing access to its internal/engine Hand Engine, owning Seat
// records across hands, and producing the snapshots the rest of the
// system broadcasts. Nothing here performs network I/O.
package game

import (
	"context"
	"time"

	"poker-platform/internal/engine"
	"poker-platform/pkg/money"
	"poker-platform/pkg/poker"
)

// Status is the table's lifecycle status, independent of the current
// hand's Phase.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
)

// PlayerLedger debits and credits a player's persistent bankroll. Join,
// cash-out, buy-back-in, and leave all cross this boundary; the table
// controller never holds bankroll state itself.
type PlayerLedger interface {
	Debit(playerID string, amount money.Amount) error
	Credit(playerID string, amount money.Amount) error
}

// Broadcaster receives every snapshot produced by a mutating operation and
// the one-time game-summary notification, fanning both out to subscribers.
type Broadcaster interface {
	Publish(tableID string, snapshot Snapshot)
	PublishGameSummary(tableID string, summary GameSummary)
}

// HandStore persists completed hands. Implementations back this with
// Postgres in production; tests may use an in-memory stub.
type HandStore interface {
	SaveHandRecord(tableID string, record engine.HandRecord) error
}

// SummaryStore persists a table's terminal GameSummary.
type SummaryStore interface {
	SaveGameSummary(summary GameSummary) error
}

// AnalyticsSink receives a read-side, non-authoritative analytics event per
// completed hand. A nil AnalyticsSink is valid — analytics is optional and
// never gates a mutating operation's success.
type AnalyticsSink interface {
	RecordHand(ctx context.Context, tableID string, record engine.HandRecord, seatPlayerIDs map[int]string, startingStacks, finalStacks map[int]int64, numPlayers int) error
}

// Snapshot is the externally visible state of a table, matching the wire
// shape exactly (camelCase via json tags, decimals as strings).
type Snapshot struct {
	TableID        string           `json:"tableId"`
	Status         Status           `json:"status"`
	Phase          string           `json:"phase"`
	Pot            money.Amount     `json:"pot"`
	CurrentBet     money.Amount     `json:"currentBet"`
	DealerIndex    int              `json:"dealerIndex"`
	CurrentToAct   int              `json:"currentToAct"`
	CommunityCards []string         `json:"communityCards"`
	Players        []PlayerSnapshot `json:"players"`
	RecentActions  []ActionView     `json:"recentActions"`
	WinnerInfo     *WinnerInfoView  `json:"winnerInfo,omitempty"`
	GameSummary    *GameSummary     `json:"gameSummary,omitempty"`
}

// PlayerSnapshot is one seat's externally visible state. HoleCards is
// populated for every dealt seat regardless of viewer; per spec.md §4.5 the
// delivery layer does not filter — the subscriber-side viewer enforces
// visibility using OwnerID.
type PlayerSnapshot struct {
	SeatIndex     int           `json:"seatIndex"`
	PlayerID      string        `json:"playerId"`
	DisplayName   string        `json:"displayName"`
	Stack         money.Amount  `json:"stack"`
	StartingStack money.Amount  `json:"startingStack"`
	FinalStack    *money.Amount `json:"finalStack,omitempty"`
	State         string        `json:"state"`
	CurrentBet    money.Amount  `json:"currentBet"`
	TotalBet      money.Amount  `json:"totalBet"`
	ReadyForNext  bool           `json:"readyForNext"`
	HoleCards     *HoleCardsView `json:"holeCards,omitempty"`
}

// HoleCardsView carries a seat's hole cards plus their owner, so the
// delivery layer can decide per-subscriber visibility without the table
// controller needing to know who is watching.
type HoleCardsView struct {
	Cards   []string `json:"cards"`
	OwnerID string   `json:"ownerId"`
}

// ActionView is one logged action as shown to clients.
type ActionView struct {
	Seq        uint64       `json:"seq"`
	PlayerName string       `json:"playerName"`
	Kind       string       `json:"kind"`
	Amount     money.Amount `json:"amount"`
	Phase      string       `json:"phase"`
	Timestamp  time.Time    `json:"ts"`
}

// WinnerInfoView is the client-facing rendering of engine.WinnerInfo.
type WinnerInfoView struct {
	Type           string                 `json:"type"`
	Winners        []int                  `json:"winners"`
	PotAmount      money.Amount           `json:"potAmount"`
	CommunityCards []string               `json:"communityCards"`
	ShowdownOrder  []int                  `json:"showdownOrder"`
	AllHands       map[int]HandResultView `json:"allHands,omitempty"`
	Reason         string                 `json:"reason,omitempty"`
}

// HandResultView is the client-facing rendering of poker.Result.
type HandResultView struct {
	Category int      `json:"category"`
	Name     string   `json:"name"`
	BestFive []string `json:"bestFive"`
}

// GameSummary is written once, when every seat has a FinalStack.
type GameSummary struct {
	TableID     string             `json:"tableId"`
	CompletedAt time.Time          `json:"completedAt"`
	HandsPlayed int                `json:"handsPlayed"`
	PerSeat     []SeatSummary      `json:"perSeat"`
}

// SeatSummary is one seat's terminal accounting line within a GameSummary.
type SeatSummary struct {
	PlayerID      string       `json:"playerId"`
	StartingStack money.Amount `json:"startingStack"`
	FinalStack    money.Amount `json:"finalStack"`
	Net           money.Amount `json:"net"`
	Status        string       `json:"status"`
}

func cardStrings(cards []poker.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
