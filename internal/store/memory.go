// internal/store/memory.go
//
// In-memory store of live rounds, one per player session.
//
// Characteristics:
//   - Stores game.Round values keyed by Round.ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied in and out, so callers never share a Round.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/robalobadob/numguess/apps/go-server/internal/game"
)

// ErrNotFound is returned for unknown round IDs.
var ErrNotFound = errors.New("round not found")

// Store defines the persistence interface for live rounds.
type Store interface {
	// Save inserts or replaces a round.
	Save(ctx context.Context, r game.Round) error

	// Get retrieves a round by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (game.Round, error)

	// Delete forgets a round. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Len reports how many rounds are held.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex          // guards rounds map
	rounds map[string]game.Round // keyed by Round.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rounds: make(map[string]game.Round)}
}

func (m *memory) Save(ctx context.Context, r game.Round) error {
	if r.ID == "" {
		return errors.New("round has no id")
	}
	r.Guesses = slices.Clone(r.Guesses)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[r.ID] = r
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (game.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rounds[id]
	if !ok {
		return game.Round{}, ErrNotFound
	}
	r.Guesses = slices.Clone(r.Guesses)
	return r, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rounds, id)
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rounds)
}
