package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/rhymer/pkg/rhymer/index"
	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	snap  index.Snapshot
	saved bool
	saves int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Exists implements store.Store.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved, nil
}

// Save stores a deep copy of snap.
func (s *Store) Save(ctx context.Context, snap index.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = copySnapshot(snap)
	s.saved = true
	s.saves++
	return nil
}

// Load returns a deep copy of the stored snapshot.
func (s *Store) Load(ctx context.Context) (index.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return index.Snapshot{}, internalerr.ErrNotFound
	}
	return copySnapshot(s.snap), nil
}

// Remove implements store.Store.
func (s *Store) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = index.Snapshot{}
	s.saved = false
	return nil
}

// Saves returns how many times Save was called.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copySnapshot(src index.Snapshot) index.Snapshot {
	dst := index.Snapshot{
		Version: src.Version,
		Meta:    src.Meta,
		Rhymes:  make(map[string][]string, len(src.Rhymes)),
		Chain:   make(map[string]index.ChainNode, len(src.Chain)),
	}
	for k, words := range src.Rhymes {
		dst.Rhymes[k] = append([]string(nil), words...)
	}
	for w, n := range src.Chain {
		prev := make(map[string]int64, len(n.Prev))
		for p, c := range n.Prev {
			prev[p] = c
		}
		dst.Chain[w] = index.ChainNode{Starts: n.Starts, Prev: prev}
	}
	return dst
}
