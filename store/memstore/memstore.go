// Package memstore is an in-memory store.Store.
//
// Entities and key-value entries are kept in sorted slices. Iterators
// read from a snapshot of the slice taken when they are opened, so
// writes never disturb a page being built.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

var _ store.Store = (*Store)(nil)

// Store is an in-memory store.
type Store struct {
	mu       sync.RWMutex
	closed   bool
	ledger   types.LedgerStateSummary
	entities []store.Entity
	byAddr   map[string]store.Entity
	kv       map[string][]store.KVEntry
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byAddr: make(map[string]store.Entity),
		kv:     make(map[string][]store.KVEntry),
	}
}

func (s *Store) rlock() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return store.ErrNotOpen
	}
	return nil
}

func (s *Store) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrNotOpen
	}
	return nil
}

func (s *Store) LedgerState(context.Context) (types.LedgerStateSummary, error) {
	if err := s.rlock(); err != nil {
		return types.LedgerStateSummary{}, err
	}
	defer s.mu.RUnlock()
	return s.ledger, nil
}

func (s *Store) EntityMeta(_ context.Context, address string) (store.Entity, error) {
	if err := s.rlock(); err != nil {
		return store.Entity{}, err
	}
	defer s.mu.RUnlock()
	e, ok := s.byAddr[address]
	if !ok {
		return store.Entity{}, fmt.Errorf("%w: %s", store.ErrEntityNotFound, address)
	}
	return e, nil
}

func (s *Store) IterateEntities(_ context.Context, filter types.EntityFilter, from *store.EntityKey) (paging.Iterator[store.Entity], error) {
	if err := s.rlock(); err != nil {
		return nil, err
	}
	snapshot := s.entities
	s.mu.RUnlock()

	start := 0
	if from != nil {
		start, _ = slices.BinarySearchFunc(snapshot, *from, func(e store.Entity, k store.EntityKey) int {
			return e.CreatedAt.Compare(k)
		})
	}
	return store.FilterEntities(paging.FromSlice(snapshot[start:]), filter), nil
}

func (s *Store) ListKeyValueEntries(_ context.Context, storeAddress string, from []byte, limit int) ([]store.KVEntry, error) {
	if err := s.rlock(); err != nil {
		return nil, err
	}
	entries := s.kv[storeAddress]
	s.mu.RUnlock()

	start := 0
	if from != nil {
		start, _ = slices.BinarySearchFunc(entries, from, func(e store.KVEntry, k []byte) int {
			return bytes.Compare(e.Key, k)
		})
	}
	end := min(start+limit, len(entries))
	if limit < 0 || start >= end {
		return []store.KVEntry{}, nil
	}
	return slices.Clone(entries[start:end]), nil
}

func (s *Store) PutEntity(_ context.Context, e store.Entity) error {
	if !e.Type.Valid() {
		return fmt.Errorf("put entity %s: unknown entity type %q", e.Address, string(e.Type))
	}
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if _, ok := s.byAddr[e.Address]; ok {
		return fmt.Errorf("%w: address %s", store.ErrDuplicateEntity, e.Address)
	}
	i, found := slices.BinarySearchFunc(s.entities, e.CreatedAt, func(x store.Entity, k store.EntityKey) int {
		return x.CreatedAt.Compare(k)
	})
	if found {
		return fmt.Errorf("%w: creation key %d/%d", store.ErrDuplicateEntity, e.CreatedAt.StateVersion, e.CreatedAt.Index)
	}
	s.entities = insertAt(s.entities, i, e)
	s.byAddr[e.Address] = e
	return nil
}

func (s *Store) PutKeyValueEntry(_ context.Context, e store.KVEntry) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	e.Key = bytes.Clone(e.Key)
	e.Value = bytes.Clone(e.Value)
	entries := s.kv[e.StoreAddress]
	i, found := slices.BinarySearchFunc(entries, e.Key, func(x store.KVEntry, k []byte) int {
		return bytes.Compare(x.Key, k)
	})
	if found {
		entries = slices.Clone(entries)
		entries[i] = e
	} else {
		entries = insertAt(entries, i, e)
	}
	s.kv[e.StoreAddress] = entries
	return nil
}

func (s *Store) SetLedgerState(_ context.Context, l types.LedgerStateSummary) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.ledger = l
	return nil
}

// Close releases the store. Later calls fail with store.ErrNotOpen.
func (s *Store) Close() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.closed = true
	s.entities, s.byAddr, s.kv = nil, nil, nil
	return nil
}

// insertAt inserts v at i without touching any element visible to an
// existing snapshot. Appends only write past every snapshot's length;
// inserts in the middle copy.
func insertAt[T any](s []T, i int, v T) []T {
	if i == len(s) {
		return append(s, v)
	}
	return slices.Insert(slices.Clip(s), i, v)
}
