package world

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Store publishes the current World to concurrent readers.
// Readers get an immutable snapshot; regeneration swaps the pointer only
// after a run completes, so a failed run leaves the previous World in place.
type Store struct {
	mu      sync.Mutex // Serializes regeneration
	current atomic.Pointer[World]
}

// NewStore creates a store, optionally seeded with an initial world.
func NewStore(w *World) *Store {
	s := &Store{}
	if w != nil {
		s.current.Store(w)
	}
	return s
}

// Load returns the published world, or nil if none has been published.
func (s *Store) Load() *World {
	return s.current.Load()
}

// Publish makes w the current world.
func (s *Store) Publish(w *World) {
	s.current.Store(w)
}

// Regenerate builds a new world from cfg and publishes it on success.
func (s *Store) Regenerate(cfg GenConfig) (*World, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := Generate(cfg)
	if err != nil {
		slog.Warn("regeneration failed, keeping previous world", "error", err)
		return nil, err
	}
	s.current.Store(w)
	slog.Info("world published",
		"id", w.ID,
		"seed", w.Seed,
		"cells", humanize.Comma(int64(w.CellCount())),
		"elapsed", w.Elapsed,
	)
	return w, nil
}
