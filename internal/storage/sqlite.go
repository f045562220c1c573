package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"gamehub/internal/game"
)

// SQLiteStore persists snapshots in a local SQLite database. It serves
// single-instance deployments and tests; multi-instance deployments use
// MongoStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS game_snapshots (
			game_id    TEXT PRIMARY KEY,
			game_type  TEXT NOT NULL,
			status     TEXT NOT NULL,
			snapshot   TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// SaveSnapshot upserts a snapshot record keyed by game ID.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_snapshots (game_id, game_type, status, snapshot)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			status = excluded.status,
			snapshot = excluded.snapshot,
			updated_at = CURRENT_TIMESTAMP
	`, rec.GameID, rec.GameType, string(rec.Status), string(rec.Snapshot))
	return err
}

// GetSnapshot retrieves one record by game ID.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, gameID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT game_id, game_type, status, snapshot, created_at, updated_at
		FROM game_snapshots WHERE game_id = ?
	`, gameID)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// ListSnapshots returns records matching the filter, newest first.
func (s *SQLiteStore) ListSnapshots(ctx context.Context, f Filter) ([]Record, error) {
	query := `
		SELECT game_id, game_type, status, snapshot, created_at, updated_at
		FROM game_snapshots WHERE 1=1
	`
	var args []any
	if f.GameType != "" {
		query += " AND game_type = ?"
		args = append(args, f.GameType)
	}
	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, string(f.Status))
	}
	query += " ORDER BY created_at DESC, game_id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanRecord(scan func(...any) error) (Record, error) {
	var rec Record
	var status, snapshot string
	if err := scan(&rec.GameID, &rec.GameType, &status, &snapshot, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Status = game.Status(status)
	rec.Snapshot = []byte(snapshot)
	return rec, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
