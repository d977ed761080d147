// Package storage defines the persistence boundaries the table controller
// and command gateway depend on. Concrete implementations live in
// subpackages (postgres for operational state, the sibling ClickHouse sink
// for analytics).
package storage

import (
	"context"
	"time"

	"poker-platform/internal/engine"
	"poker-platform/internal/game"
	"poker-platform/pkg/money"
)

// Player is a persisted bankroll account, independent of any table seat.
type Player struct {
	PlayerID    string
	DisplayName string
	Bankroll    money.Amount
	CreatedAt   time.Time
}

// PlayerStore is the player bankroll ledger backing game.PlayerLedger.
type PlayerStore interface {
	game.PlayerLedger
	CreatePlayer(ctx context.Context, playerID, displayName string, startingBankroll money.Amount) error
	GetPlayer(ctx context.Context, playerID string) (*Player, error)
}

// TableRecord is a persisted table's static configuration and lifecycle
// status, independent of its in-memory Table controller.
type TableRecord struct {
	TableID   string
	Config    engine.Config
	Status    game.Status
	CreatedAt time.Time
}

// TableStore persists table configuration and terminal status.
type TableStore interface {
	CreateTable(ctx context.Context, rec TableRecord) error
	GetTable(ctx context.Context, tableID string) (*TableRecord, error)
	MarkFinished(ctx context.Context, tableID string) error
	ListActiveTables(ctx context.Context) ([]TableRecord, error)
}

// HandRecordStore persists completed hands, backing game.HandStore.
type HandRecordStore interface {
	game.HandStore
	GetHandRecords(ctx context.Context, tableID string, limit int) ([]engine.HandRecord, error)
}

// GameSummaryStore persists terminal game summaries, backing
// game.SummaryStore.
type GameSummaryStore interface {
	game.SummaryStore
	GetGameSummary(ctx context.Context, tableID string) (*game.GameSummary, error)
}
