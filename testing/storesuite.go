package pagingtest

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

// RunStoreComplianceSuite runs the ordering and lookup checks every
// store.Store implementation must pass. The factory should return a
// fresh, empty store for each test; the suite closes it.
func RunStoreComplianceSuite(t *testing.T, factory func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	open := func(t *testing.T) store.Store {
		t.Helper()
		s := factory(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}
	put := func(t *testing.T, s store.Store, addr string, et types.EntityType, version uint64, index uint32) {
		t.Helper()
		err := s.PutEntity(ctx, store.Entity{
			Address:   addr,
			Type:      et,
			CreatedAt: store.EntityKey{StateVersion: version, Index: index},
		})
		if err != nil {
			t.Fatalf("PutEntity(%s) failed: %v", addr, err)
		}
	}
	addresses := func(t *testing.T, s store.Store, filter types.EntityFilter, from *store.EntityKey) []string {
		t.Helper()
		it, err := s.IterateEntities(ctx, filter, from)
		if err != nil {
			t.Fatalf("IterateEntities failed: %v", err)
		}
		defer it.Close()
		var out []string
		for {
			e, ok, err := it.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if !ok {
				return out
			}
			out = append(out, e.Address)
		}
	}
	equal := func(t *testing.T, got, want []string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	}

	t.Run("entities_in_creation_order", func(t *testing.T) {
		s := open(t)
		put(t, s, "third", types.EntityGlobalAccount, 300, 0)
		put(t, s, "first", types.EntityGlobalPackage, 1, 0)
		put(t, s, "second_b", types.EntityInternalKeyValueStore, 2, 256)
		put(t, s, "second_a", types.EntityInternalFungibleVault, 2, 3)
		equal(t, addresses(t, s, types.NoFilter{}, nil), []string{"first", "second_a", "second_b", "third"})
	})

	t.Run("resume_is_inclusive", func(t *testing.T) {
		s := open(t)
		put(t, s, "a", types.EntityGlobalAccount, 1, 0)
		put(t, s, "b", types.EntityGlobalAccount, 2, 0)
		put(t, s, "c", types.EntityGlobalAccount, 3, 0)
		equal(t, addresses(t, s, types.NoFilter{}, &store.EntityKey{StateVersion: 2}), []string{"b", "c"})
		equal(t, addresses(t, s, types.NoFilter{}, &store.EntityKey{StateVersion: 2, Index: 1}), []string{"c"})
		equal(t, addresses(t, s, types.NoFilter{}, &store.EntityKey{StateVersion: 9}), nil)
	})

	t.Run("filters", func(t *testing.T) {
		s := open(t)
		put(t, s, "acct", types.EntityGlobalAccount, 1, 0)
		put(t, s, "kv", types.EntityInternalKeyValueStore, 1, 1)
		put(t, s, "vault", types.EntityInternalFungibleVault, 1, 2)
		equal(t, addresses(t, s, types.SystemTypeFilter{SystemType: types.SystemKeyValueStore}, nil), []string{"kv"})
		equal(t, addresses(t, s, types.SystemTypeFilter{SystemType: types.SystemObject}, nil), []string{"acct", "vault"})
		equal(t, addresses(t, s, types.EntityTypeFilter{EntityType: types.EntityGlobalAccount}, nil), []string{"acct"})
	})

	t.Run("entity_meta", func(t *testing.T) {
		s := open(t)
		put(t, s, "kv", types.EntityInternalKeyValueStore, 4, 2)
		e, err := s.EntityMeta(ctx, "kv")
		if err != nil {
			t.Fatalf("EntityMeta failed: %v", err)
		}
		if e.Type != types.EntityInternalKeyValueStore || e.CreatedAt != (store.EntityKey{StateVersion: 4, Index: 2}) {
			t.Fatalf("unexpected entity: %+v", e)
		}
		if _, err := s.EntityMeta(ctx, "missing"); !errors.Is(err, store.ErrEntityNotFound) {
			t.Fatalf("expected ErrEntityNotFound, got %v", err)
		}
	})

	t.Run("duplicate_entity_rejected", func(t *testing.T) {
		s := open(t)
		put(t, s, "a", types.EntityGlobalAccount, 1, 0)
		err := s.PutEntity(ctx, store.Entity{Address: "a", Type: types.EntityGlobalAccount, CreatedAt: store.EntityKey{StateVersion: 2}})
		if !errors.Is(err, store.ErrDuplicateEntity) {
			t.Fatalf("expected ErrDuplicateEntity for address, got %v", err)
		}
		err = s.PutEntity(ctx, store.Entity{Address: "b", Type: types.EntityGlobalAccount, CreatedAt: store.EntityKey{StateVersion: 1}})
		if !errors.Is(err, store.ErrDuplicateEntity) {
			t.Fatalf("expected ErrDuplicateEntity for creation key, got %v", err)
		}
	})

	t.Run("key_value_entries_in_key_order", func(t *testing.T) {
		s := open(t)
		for _, k := range [][]byte{{0x02}, {0x00, 0x01}, {0xFF}, {0x01}, {0x00}} {
			if err := s.PutKeyValueEntry(ctx, store.KVEntry{StoreAddress: "kv", Key: k, Value: []byte{0xAA}}); err != nil {
				t.Fatalf("PutKeyValueEntry failed: %v", err)
			}
		}
		// A store whose address extends "kv" must not leak into it.
		if err := s.PutKeyValueEntry(ctx, store.KVEntry{StoreAddress: "kv2", Key: []byte{0x00}}); err != nil {
			t.Fatalf("PutKeyValueEntry failed: %v", err)
		}

		entries, err := s.ListKeyValueEntries(ctx, "kv", nil, 10)
		if err != nil {
			t.Fatalf("ListKeyValueEntries failed: %v", err)
		}
		want := [][]byte{{0x00}, {0x00, 0x01}, {0x01}, {0x02}, {0xFF}}
		if len(entries) != len(want) {
			t.Fatalf("got %d entries, want %d", len(entries), len(want))
		}
		for i, e := range entries {
			if string(e.Key) != string(want[i]) {
				t.Fatalf("entry %d: got key %x, want %x", i, e.Key, want[i])
			}
			if e.StoreAddress != "kv" || string(e.Value) != "\xaa" {
				t.Fatalf("entry %d: unexpected %+v", i, e)
			}
		}

		entries, err = s.ListKeyValueEntries(ctx, "kv", []byte{0x01}, 2)
		if err != nil {
			t.Fatalf("ListKeyValueEntries failed: %v", err)
		}
		if len(entries) != 2 || string(entries[0].Key) != "\x01" || string(entries[1].Key) != "\x02" {
			t.Fatalf("unexpected resumed entries: %+v", entries)
		}
	})

	t.Run("ledger_state", func(t *testing.T) {
		s := open(t)
		want := types.LedgerStateSummary{
			StateVersion: 42,
			HeaderHash:   types.Hash{0xAB},
		}
		if err := s.SetLedgerState(ctx, want); err != nil {
			t.Fatalf("SetLedgerState failed: %v", err)
		}
		got, err := s.LedgerState(ctx)
		if err != nil {
			t.Fatalf("LedgerState failed: %v", err)
		}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	})
}
