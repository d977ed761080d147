package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"poker-platform/internal/apierr"
	"poker-platform/internal/engine"
	"poker-platform/internal/game"
)

// HandPostgresStorage implements storage.HandRecordStore for PostgreSQL.
// Hands are stored as a single JSONB document per row: the record's
// structure (actions, hole cards, winner info) has no query pattern that
// benefits from normalization, and analytics queries are ClickHouse's job.
type HandPostgresStorage struct {
	db *sql.DB
}

// NewHandPostgresStorage creates a new PostgreSQL hand-record store.
func NewHandPostgresStorage(db *sql.DB) *HandPostgresStorage {
	return &HandPostgresStorage{db: db}
}

// CreateHandRecordTable creates the hand_records table if it doesn't exist.
func (s *HandPostgresStorage) CreateHandRecordTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS hand_records (
			table_id    VARCHAR(64) NOT NULL,
			hand_number INTEGER NOT NULL,
			record      JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (table_id, hand_number)
		);
	`)
	return err
}

// SaveHandRecord persists one completed hand.
func (s *HandPostgresStorage) SaveHandRecord(tableID string, record engine.HandRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO hand_records (table_id, hand_number, record) VALUES ($1, $2, $3)
		ON CONFLICT (table_id, hand_number) DO UPDATE SET record = EXCLUDED.record
	`, tableID, record.HandNumber, data)
	return err
}

// GetHandRecords retrieves the most recent hands for a table, newest first.
func (s *HandPostgresStorage) GetHandRecords(ctx context.Context, tableID string, limit int) ([]engine.HandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM hand_records WHERE table_id = $1 ORDER BY hand_number DESC LIMIT $2
	`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.HandRecord
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var record engine.HandRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// SummaryPostgresStorage implements storage.GameSummaryStore for PostgreSQL.
type SummaryPostgresStorage struct {
	db *sql.DB
}

// NewSummaryPostgresStorage creates a new PostgreSQL game-summary store.
func NewSummaryPostgresStorage(db *sql.DB) *SummaryPostgresStorage {
	return &SummaryPostgresStorage{db: db}
}

// CreateGameSummaryTable creates the game_summaries table if it doesn't exist.
func (s *SummaryPostgresStorage) CreateGameSummaryTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS game_summaries (
			table_id     VARCHAR(64) PRIMARY KEY,
			summary      JSONB NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

// SaveGameSummary persists a table's terminal summary.
func (s *SummaryPostgresStorage) SaveGameSummary(summary game.GameSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO game_summaries (table_id, summary, completed_at) VALUES ($1, $2, $3)
		ON CONFLICT (table_id) DO UPDATE SET summary = EXCLUDED.summary, completed_at = EXCLUDED.completed_at
	`, summary.TableID, data, summary.CompletedAt)
	return err
}

// GetGameSummary retrieves a table's terminal summary.
func (s *SummaryPostgresStorage) GetGameSummary(ctx context.Context, tableID string) (*game.GameSummary, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT summary FROM game_summaries WHERE table_id = $1
	`, tableID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, apierr.New(apierr.KindNotFound, "game summary not found")
	}
	if err != nil {
		return nil, err
	}
	var summary game.GameSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
