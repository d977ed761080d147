package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"poker-platform/internal/apierr"
	"poker-platform/internal/storage"
	"poker-platform/pkg/money"
)

// PlayerPostgresStorage implements storage.PlayerStore for PostgreSQL.
type PlayerPostgresStorage struct {
	db *sql.DB
}

// NewPlayerPostgresStorage creates a new PostgreSQL player bankroll store.
func NewPlayerPostgresStorage(db *sql.DB) *PlayerPostgresStorage {
	return &PlayerPostgresStorage{db: db}
}

// CreatePlayerTable creates the players table if it doesn't exist.
func (s *PlayerPostgresStorage) CreatePlayerTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			player_id    VARCHAR(64) PRIMARY KEY,
			display_name VARCHAR(64) NOT NULL,
			bankroll     NUMERIC(20,2) NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// CreatePlayer inserts a new player with a starting bankroll.
func (s *PlayerPostgresStorage) CreatePlayer(ctx context.Context, playerID, displayName string, startingBankroll money.Amount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (player_id, display_name, bankroll) VALUES ($1, $2, $3)
	`, playerID, displayName, startingBankroll)
	return err
}

// GetPlayer retrieves a player's bankroll record.
func (s *PlayerPostgresStorage) GetPlayer(ctx context.Context, playerID string) (*storage.Player, error) {
	p := &storage.Player{}
	err := s.db.QueryRowContext(ctx, `
		SELECT player_id, display_name, bankroll, created_at FROM players WHERE player_id = $1
	`, playerID).Scan(&p.PlayerID, &p.DisplayName, &p.Bankroll, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierr.New(apierr.KindNotFound, "player not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Debit subtracts amount from a player's bankroll, failing if funds are
// insufficient. Uses a single conditional UPDATE to avoid a read-modify-write
// race between concurrent tables debiting the same player.
func (s *PlayerPostgresStorage) Debit(playerID string, amount money.Amount) error {
	ctx := context.Background()
	result, err := s.db.ExecContext(ctx, `
		UPDATE players SET bankroll = bankroll - $1 WHERE player_id = $2 AND bankroll >= $1
	`, amount, playerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("insufficient bankroll or unknown player %q", playerID)
	}
	return nil
}

// Credit adds amount to a player's bankroll.
func (s *PlayerPostgresStorage) Credit(playerID string, amount money.Amount) error {
	ctx := context.Background()
	result, err := s.db.ExecContext(ctx, `
		UPDATE players SET bankroll = bankroll + $1 WHERE player_id = $2
	`, amount, playerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("unknown player %q", playerID)
	}
	return nil
}
