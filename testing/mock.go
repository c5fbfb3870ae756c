// Package pagingtest provides test utilities for the node API: policy
// and store compliance suites, a page-through harness, instrumented
// iterators and a configurable mock store reader.
package pagingtest

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

// Compile-time check that MockReader satisfies store.Reader.
var _ store.Reader = (*MockReader)(nil)

// MockReader is a configurable mock store.Reader for service testing.
// All methods are configurable via function fields. Unconfigured
// methods behave like an empty store.
type MockReader struct {
	// Ledger is returned by LedgerState when LedgerStateFn is nil.
	Ledger types.LedgerStateSummary

	// Configurable handlers. If nil, defaults are used.
	LedgerStateFn         func(context.Context) (types.LedgerStateSummary, error)
	EntityMetaFn          func(context.Context, string) (store.Entity, error)
	IterateEntitiesFn     func(context.Context, types.EntityFilter, *store.EntityKey) (paging.Iterator[store.Entity], error)
	ListKeyValueEntriesFn func(context.Context, string, []byte, int) ([]store.KVEntry, error)

	// Call counters (atomic for concurrent access).
	LedgerStateCalls         atomic.Int64
	EntityMetaCalls          atomic.Int64
	IterateEntitiesCalls     atomic.Int64
	ListKeyValueEntriesCalls atomic.Int64
}

func (m *MockReader) LedgerState(ctx context.Context) (types.LedgerStateSummary, error) {
	m.LedgerStateCalls.Add(1)
	if m.LedgerStateFn != nil {
		return m.LedgerStateFn(ctx)
	}
	return m.Ledger, nil
}

func (m *MockReader) EntityMeta(ctx context.Context, address string) (store.Entity, error) {
	m.EntityMetaCalls.Add(1)
	if m.EntityMetaFn != nil {
		return m.EntityMetaFn(ctx, address)
	}
	return store.Entity{}, fmt.Errorf("%w: %s", store.ErrEntityNotFound, address)
}

func (m *MockReader) IterateEntities(ctx context.Context, filter types.EntityFilter, from *store.EntityKey) (paging.Iterator[store.Entity], error) {
	m.IterateEntitiesCalls.Add(1)
	if m.IterateEntitiesFn != nil {
		return m.IterateEntitiesFn(ctx, filter, from)
	}
	return paging.FromSlice[store.Entity](nil), nil
}

func (m *MockReader) ListKeyValueEntries(ctx context.Context, storeAddress string, from []byte, limit int) ([]store.KVEntry, error) {
	m.ListKeyValueEntriesCalls.Add(1)
	if m.ListKeyValueEntriesFn != nil {
		return m.ListKeyValueEntriesFn(ctx, storeAddress, from, limit)
	}
	return []store.KVEntry{}, nil
}
