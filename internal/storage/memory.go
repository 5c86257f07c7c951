package storage

import (
	"context"
	"sync"

	"vietfood/internal/cart"
)

// Memory keeps encoded snapshots in a map. It is safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Load(_ context.Context, sessionID string) (*cart.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.m[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decode(data)
}

func (s *Memory) Save(_ context.Context, sessionID string, snap cart.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.m[sessionID] = data
	s.mu.Unlock()
	return nil
}
