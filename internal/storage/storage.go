// Package storage persists cart snapshots keyed by session id.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vietfood/internal/cart"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// SnapshotStore is implemented by every backend. Load returns nil, nil when
// the session has never been saved.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Snapshot, error)
	Save(ctx context.Context, sessionID string, snap cart.Snapshot) error
}

// ForSession binds a store to one session so it satisfies cart.Storage.
func ForSession(store SnapshotStore, sessionID string) cart.Storage {
	return &sessionStorage{store: store, sessionID: sessionID}
}

type sessionStorage struct {
	store     SnapshotStore
	sessionID string
}

func (s *sessionStorage) Load(ctx context.Context) (*cart.Snapshot, error) {
	return s.store.Load(ctx, s.sessionID)
}

func (s *sessionStorage) Save(ctx context.Context, snap cart.Snapshot) error {
	return s.store.Save(ctx, s.sessionID, snap)
}

func encode(snap cart.Snapshot) ([]byte, error) {
	if snap.Items == nil {
		snap.Items = []cart.LineItem{}
	}
	return json.Marshal(snap)
}

func decode(data []byte) (*cart.Snapshot, error) {
	var snap cart.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	if snap.Items == nil {
		snap.Items = []cart.LineItem{}
	}
	return &snap, nil
}
