package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/store/memstore"
	pagingtest "github.com/blockberries/nodeapi/testing"
	"github.com/blockberries/nodeapi/types"
)

func entity(addr string, t types.EntityType, version uint64, index uint32) store.Entity {
	return store.Entity{Address: addr, Type: t, CreatedAt: store.EntityKey{StateVersion: version, Index: index}}
}

func drain(t *testing.T, s *memstore.Store, filter types.EntityFilter, from *store.EntityKey) []string {
	t.Helper()
	it, err := s.IterateEntities(context.Background(), filter, from)
	require.NoError(t, err)
	defer it.Close()
	var out []string
	for {
		e, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, e.Address)
	}
}

func TestIterateEntities_CreationOrder(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.PutEntity(ctx, entity("c", types.EntityGlobalAccount, 3, 0)))
	require.NoError(t, s.PutEntity(ctx, entity("a", types.EntityGlobalPackage, 1, 0)))
	require.NoError(t, s.PutEntity(ctx, entity("b2", types.EntityInternalKeyValueStore, 2, 1)))
	require.NoError(t, s.PutEntity(ctx, entity("b1", types.EntityInternalKeyValueStore, 2, 0)))

	assert.Equal(t, []string{"a", "b1", "b2", "c"}, drain(t, s, types.NoFilter{}, nil))
	assert.Equal(t, []string{"b2", "c"}, drain(t, s, types.NoFilter{}, &store.EntityKey{StateVersion: 2, Index: 1}))
	assert.Equal(t, []string{"c"}, drain(t, s, types.NoFilter{}, &store.EntityKey{StateVersion: 2, Index: 5}))
	assert.Equal(t, []string{"b1", "b2"}, drain(t, s, types.SystemTypeFilter{SystemType: types.SystemKeyValueStore}, nil))
}

func TestIterateEntities_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.PutEntity(ctx, entity("a", types.EntityGlobalAccount, 1, 0)))
	require.NoError(t, s.PutEntity(ctx, entity("c", types.EntityGlobalAccount, 3, 0)))

	it, err := s.IterateEntities(ctx, types.NoFilter{}, nil)
	require.NoError(t, err)
	defer it.Close()

	// Insert in the middle and append while the iterator is open.
	require.NoError(t, s.PutEntity(ctx, entity("b", types.EntityGlobalAccount, 2, 0)))
	require.NoError(t, s.PutEntity(ctx, entity("d", types.EntityGlobalAccount, 4, 0)))

	var got []string
	for {
		e, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, e.Address)
	}
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, []string{"a", "b", "c", "d"}, drain(t, s, types.NoFilter{}, nil))
}

func TestPutEntity_Duplicates(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.PutEntity(ctx, entity("a", types.EntityGlobalAccount, 1, 0)))

	err := s.PutEntity(ctx, entity("a", types.EntityGlobalAccount, 2, 0))
	assert.ErrorIs(t, err, store.ErrDuplicateEntity)

	err = s.PutEntity(ctx, entity("b", types.EntityGlobalAccount, 1, 0))
	assert.ErrorIs(t, err, store.ErrDuplicateEntity)

	err = s.PutEntity(ctx, entity("c", types.EntityType("Bogus"), 5, 0))
	assert.Error(t, err)
}

func TestEntityMeta(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.PutEntity(ctx, entity("kv", types.EntityInternalKeyValueStore, 1, 0)))

	e, err := s.EntityMeta(ctx, "kv")
	require.NoError(t, err)
	assert.Equal(t, types.EntityInternalKeyValueStore, e.Type)

	_, err = s.EntityMeta(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrEntityNotFound)
}

func TestListKeyValueEntries(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	for _, k := range []string{"d", "a", "c", "b", "e"} {
		require.NoError(t, s.PutKeyValueEntry(ctx, store.KVEntry{StoreAddress: "kv", Key: []byte(k), Value: []byte("v" + k)}))
	}
	require.NoError(t, s.PutKeyValueEntry(ctx, store.KVEntry{StoreAddress: "other", Key: []byte("z")}))

	keys := func(entries []store.KVEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, string(e.Key))
		}
		return out
	}

	got, err := s.ListKeyValueEntries(ctx, "kv", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys(got))

	got, err = s.ListKeyValueEntries(ctx, "kv", []byte("c"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, keys(got))

	got, err = s.ListKeyValueEntries(ctx, "kv", []byte("zz"), 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.ListKeyValueEntries(ctx, "missing", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Overwrite keeps a single entry.
	require.NoError(t, s.PutKeyValueEntry(ctx, store.KVEntry{StoreAddress: "kv", Key: []byte("a"), Value: []byte("new")}))
	got, err = s.ListKeyValueEntries(ctx, "kv", nil, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", string(got[0].Value))
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.SetLedgerState(ctx, types.LedgerStateSummary{StateVersion: 7}))
	l, err := s.LedgerState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), l.StateVersion)

	require.NoError(t, s.Close())
	_, err = s.LedgerState(ctx)
	assert.ErrorIs(t, err, store.ErrNotOpen)
	assert.ErrorIs(t, s.Close(), store.ErrNotOpen)
}

func TestStoreCompliance(t *testing.T) {
	pagingtest.RunStoreComplianceSuite(t, func(*testing.T) store.Store {
		return memstore.New()
	})
}
