package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"vietfood/internal/cart"
)

// SQLite keeps snapshots in an embedded database file.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// database/sql pools connections; a single writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS cart_snapshots (
    session_id TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	logger.Info("sqlite cart store ready", zap.String("path", path))
	return &SQLite{db: db, logger: logger}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context, sessionID string) (*cart.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM cart_snapshots WHERE session_id = ?`, sessionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("sqlite cart store: load", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return decode([]byte(payload))
}

func (s *SQLite) Save(ctx context.Context, sessionID string, snap cart.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cart_snapshots (session_id, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at
`
	if _, err := s.db.ExecContext(ctx, q, sessionID, string(data), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		s.logger.Error("sqlite cart store: save", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}
