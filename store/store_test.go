package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

func TestEntityKey_Compare(t *testing.T) {
	a := store.EntityKey{StateVersion: 1, Index: 5}
	b := store.EntityKey{StateVersion: 2, Index: 0}
	c := store.EntityKey{StateVersion: 2, Index: 1}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, 0, b.Compare(b))
}

func TestEntity_Listed(t *testing.T) {
	e := store.Entity{
		Address:       "internal_keyvaluestore_1",
		Type:          types.EntityInternalKeyValueStore,
		CreatedAt:     store.EntityKey{StateVersion: 9, Index: 2},
		BlueprintName: "",
	}
	got := e.Listed()
	assert.Equal(t, types.SystemKeyValueStore, got.SystemType)
	assert.False(t, got.IsGlobal)
	assert.Equal(t, uint64(9), got.CreatedAtStateVersion)
	assert.Equal(t, store.EntityKey{StateVersion: 9, Index: 2}, e.ResumeKey())
}

func TestFilterEntities(t *testing.T) {
	entities := []store.Entity{
		{Address: "account_1", Type: types.EntityGlobalAccount},
		{Address: "kv_1", Type: types.EntityInternalKeyValueStore},
		{Address: "vault_1", Type: types.EntityInternalFungibleVault},
		{Address: "kv_2", Type: types.EntityInternalKeyValueStore},
	}

	collect := func(filter types.EntityFilter) []string {
		it := store.FilterEntities(paging.FromSlice(entities), filter)
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

	assert.Equal(t, []string{"account_1", "kv_1", "vault_1", "kv_2"}, collect(types.NoFilter{}))
	assert.Equal(t, []string{"kv_1", "kv_2"}, collect(types.SystemTypeFilter{SystemType: types.SystemKeyValueStore}))
	assert.Equal(t, []string{"vault_1"}, collect(types.EntityTypeFilter{EntityType: types.EntityInternalFungibleVault}))
	assert.Empty(t, collect(types.EntityTypeFilter{EntityType: types.EntityGlobalPackage}))
}
