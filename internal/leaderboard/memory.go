package leaderboard

import (
	"context"
	"sync"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

// memory keeps records in a slice. Used in tests and as an ephemeral backend.
type memory struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() Store { return &memory{} }

func (m *memory) Append(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memory) Top(ctx context.Context, n int, d game.Difficulty) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return top(m.records, n, d), nil
}

func (m *memory) Close() error { return nil }
