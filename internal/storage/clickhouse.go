package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"poker-platform/internal/engine"
)

// ClickHouseConfig holds ClickHouse connection configuration.
type ClickHouseConfig struct {
	Host         string
	Port         int
	Database     string
	Username     string
	Password     string
	Secure       bool
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// HandAnalyticsEvent is one row of the hand_analytics table: a denormalized,
// per-seat view of a completed hand suited to ad-hoc aggregate queries
// (average pot size, win rate by seat position, hands per hour) that the
// operational Postgres store is not shaped for.
type HandAnalyticsEvent struct {
	TableID       string
	HandNumber    int
	PlayerID      string
	SeatIndex     int
	StartingStack int64
	FinalStack    int64
	Net           int64
	Won           bool
	FinalPhase    string
	NumPlayers    int
	PotAmount     int64
	Timestamp     time.Time
}

// AnalyticsSink records completed-hand analytics to ClickHouse.
type AnalyticsSink struct {
	conn clickhouse.Conn
}

// NewAnalyticsSink opens a ClickHouse connection and verifies it is
// reachable.
func NewAnalyticsSink(ctx context.Context, cfg ClickHouseConfig) (*AnalyticsSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		TLS: &tls.Config{InsecureSkipVerify: cfg.Secure},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &AnalyticsSink{conn: conn}, nil
}

// CreateTables creates the analytics tables if they don't exist.
func (a *AnalyticsSink) CreateTables(ctx context.Context) error {
	return a.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS hand_analytics (
			table_id       String,
			hand_number    Int32,
			player_id      String,
			seat_index     Int32,
			starting_stack Int64,
			final_stack    Int64,
			net            Int64,
			won            Bool,
			final_phase    String,
			num_players    Int32,
			pot_amount     Int64,
			timestamp      DateTime64(3)
		) ENGINE = MergeTree()
		ORDER BY (table_id, hand_number, player_id)
	`)
}

// RecordHand fans out one completed HandRecord into a per-seat analytics
// row each, joining against the seat/player mapping and final stacks the
// table controller observed after the hand settled.
func (a *AnalyticsSink) RecordHand(ctx context.Context, tableID string, record engine.HandRecord, seatPlayerIDs map[int]string, startingStacks, finalStacks map[int]int64, numPlayers int) error {
	batch, err := a.conn.PrepareBatch(ctx, "INSERT INTO hand_analytics")
	if err != nil {
		return err
	}

	winners := map[int]bool{}
	for _, w := range record.WinnerInfo.Winners {
		winners[w] = true
	}

	for seatIndex, starting := range startingStacks {
		final := finalStacks[seatIndex]
		err := batch.Append(
			tableID,
			int32(record.HandNumber),
			seatPlayerIDs[seatIndex],
			int32(seatIndex),
			starting,
			final,
			final-starting,
			winners[seatIndex],
			record.FinalPhase.String(),
			int32(numPlayers),
			record.Pot.Int64(),
			time.Now(),
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// Close closes the ClickHouse connection.
func (a *AnalyticsSink) Close() error {
	return a.conn.Close()
}
