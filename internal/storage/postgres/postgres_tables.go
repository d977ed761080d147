package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"poker-platform/internal/apierr"
	"poker-platform/internal/storage"
)

// TablePostgresStorage implements storage.TableStore for PostgreSQL.
type TablePostgresStorage struct {
	db *sql.DB
}

// NewTablePostgresStorage creates a new PostgreSQL table store.
func NewTablePostgresStorage(db *sql.DB) *TablePostgresStorage {
	return &TablePostgresStorage{db: db}
}

// CreateTablesTable creates the tables table if it doesn't exist. Named
// awkwardly to avoid colliding with CreateTable, which inserts one record.
func (s *TablePostgresStorage) CreateTablesTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tables (
			table_id   VARCHAR(64) PRIMARY KEY,
			config     JSONB NOT NULL,
			status     VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// CreateTable persists a new table's configuration.
func (s *TablePostgresStorage) CreateTable(ctx context.Context, rec storage.TableRecord) error {
	cfgJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tables (table_id, config, status) VALUES ($1, $2, $3)
	`, rec.TableID, cfgJSON, rec.Status)
	return err
}

// GetTable retrieves a table's persisted record.
func (s *TablePostgresStorage) GetTable(ctx context.Context, tableID string) (*storage.TableRecord, error) {
	rec := &storage.TableRecord{}
	var cfgJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT table_id, config, status, created_at FROM tables WHERE table_id = $1
	`, tableID).Scan(&rec.TableID, &cfgJSON, &rec.Status, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierr.New(apierr.KindNotFound, "table not found")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cfgJSON, &rec.Config); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkFinished flips a table's status to FINISHED.
func (s *TablePostgresStorage) MarkFinished(ctx context.Context, tableID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tables SET status = 'FINISHED' WHERE table_id = $1
	`, tableID)
	return err
}

// ListActiveTables returns every table still accepting play.
func (s *TablePostgresStorage) ListActiveTables(ctx context.Context) ([]storage.TableRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_id, config, status, created_at FROM tables WHERE status = 'ACTIVE'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.TableRecord
	for rows.Next() {
		var rec storage.TableRecord
		var cfgJSON []byte
		if err := rows.Scan(&rec.TableID, &cfgJSON, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(cfgJSON, &rec.Config); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
