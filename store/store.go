// Package store is the data-layer boundary of the node API: the ordered
// substate the listing operations page through.
package store

import (
	"cmp"
	"context"
	"errors"

	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/types"
)

var (
	// ErrEntityNotFound is returned by EntityMeta for unknown addresses.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrDuplicateEntity is returned by PutEntity when the address or
	// creation key is already taken by another entity.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrNotOpen is returned by a store after Close.
	ErrNotOpen = errors.New("store is not open")
)

// EntityKey orders entities by creation: the state version that created
// them, then their index within that version.
type EntityKey struct {
	StateVersion uint64 `cramberry:"1"`
	Index        uint32 `cramberry:"2"`
}

// Compare returns -1, 0 or +1 as k sorts before, equal to or after o.
func (k EntityKey) Compare(o EntityKey) int {
	if c := cmp.Compare(k.StateVersion, o.StateVersion); c != 0 {
		return c
	}
	return cmp.Compare(k.Index, o.Index)
}

// Entity is the metadata of one entity.
type Entity struct {
	Address       string           `cramberry:"1"`
	Type          types.EntityType `cramberry:"2"`
	CreatedAt     EntityKey        `cramberry:"3"`
	BlueprintName string           `cramberry:"4"`
}

// ResumeKey implements paging.HasKey.
func (e Entity) ResumeKey() EntityKey { return e.CreatedAt }

// Listed returns the wire form of e.
func (e Entity) Listed() types.ListedEntityItem {
	return types.ListedEntityItem{
		EntityType:            e.Type,
		SystemType:            e.Type.SystemType(),
		IsGlobal:              e.Type.IsGlobal(),
		EntityAddress:         e.Address,
		CreatedAtStateVersion: e.CreatedAt.StateVersion,
		BlueprintName:         e.BlueprintName,
	}
}

// KVEntry is one entry of a key-value store entity. Key is the raw
// sort key within the store and doubles as its native resume key.
type KVEntry struct {
	StoreAddress string
	Key          []byte
	Value        []byte
}

// Reader is the read side of a store. All methods MUST be safe for
// concurrent use.
type Reader interface {
	// LedgerState returns the summary of the latest committed state.
	LedgerState(ctx context.Context) (types.LedgerStateSummary, error)

	// EntityMeta returns the entity at address, or ErrEntityNotFound.
	EntityMeta(ctx context.Context, address string) (Entity, error)

	// IterateEntities iterates entities matching filter in creation
	// order, starting at from (inclusive) or at the beginning.
	IterateEntities(ctx context.Context, filter types.EntityFilter, from *EntityKey) (paging.Iterator[Entity], error)

	// ListKeyValueEntries returns up to limit entries of the store at
	// storeAddress in key order, starting at from (inclusive) or at the
	// first key.
	ListKeyValueEntries(ctx context.Context, storeAddress string, from []byte, limit int) ([]KVEntry, error)
}

// Writer is the write side of a store.
type Writer interface {
	PutEntity(ctx context.Context, e Entity) error
	PutKeyValueEntry(ctx context.Context, e KVEntry) error
	SetLedgerState(ctx context.Context, s types.LedgerStateSummary) error
}

// Store combines both sides with a Close.
type Store interface {
	Reader
	Writer
	Close() error
}

// FilterEntities wraps it so that only entities matching filter are
// produced. Closing the result closes it.
func FilterEntities(it paging.Iterator[Entity], filter types.EntityFilter) paging.Iterator[Entity] {
	if filter == nil {
		return it
	}
	if _, ok := filter.(types.NoFilter); ok {
		return it
	}
	return &filteredIterator{it: it, filter: filter}
}

type filteredIterator struct {
	it     paging.Iterator[Entity]
	filter types.EntityFilter
}

func (f *filteredIterator) Next() (Entity, bool, error) {
	for {
		e, ok, err := f.it.Next()
		if err != nil || !ok {
			return e, ok, err
		}
		if f.filter.Matches(e.Type, e.BlueprintName) {
			return e, true, nil
		}
	}
}

func (f *filteredIterator) Close() error { return f.it.Close() }
