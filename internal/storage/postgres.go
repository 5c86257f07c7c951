package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"vietfood/internal/cart"
)

type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, logger: logger}
}

func (s *Postgres) Load(ctx context.Context, sessionID string) (*cart.Snapshot, error) {
	const q = `
SELECT payload::text
FROM cart_snapshots
WHERE session_id = $1
`
	var payload string
	if err := s.pool.QueryRow(ctx, q, sessionID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("cart store: load", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return decode([]byte(payload))
}

func (s *Postgres) Save(ctx context.Context, sessionID string, snap cart.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cart_snapshots (session_id, payload, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (session_id) DO UPDATE SET
    payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	if _, err := s.pool.Exec(ctx, q, sessionID, string(data)); err != nil {
		s.logger.Error("cart store: save", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	s.logger.Debug("cart store: saved", zap.String("session_id", sessionID), zap.Int("items", len(snap.Items)))
	return nil
}

// Delete drops the stored snapshot for a session.
func (s *Postgres) Delete(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM cart_snapshots WHERE session_id = $1`, sessionID)
	return err
}
