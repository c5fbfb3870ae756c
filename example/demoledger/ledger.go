// Package demoledger generates a deterministic demo ledger for the node
// API: entities of every type created across successive state
// versions, with a handful of entries in each key-value store.
//
// Entity addresses look like "account_000004"; key-value store keys are
// 8-byte big-endian values scattered so that insertion order differs
// from key order.
package demoledger

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

// EntitiesPerVersion is how many entities each state version creates.
const EntitiesPerVersion = 3

// Genesis is the proposer timestamp of state version zero.
var Genesis = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Ledger is a generated ledger, ready to be seeded into a store.
type Ledger struct {
	State    types.LedgerStateSummary
	Entities []store.Entity
	Entries  []store.KVEntry
}

var addressPrefix = map[types.EntityType]string{
	types.EntityGlobalPackage:             "package",
	types.EntityGlobalAccount:             "account",
	types.EntityGlobalIdentity:            "identity",
	types.EntityGlobalFungibleResource:    "resource",
	types.EntityGlobalNonFungibleResource: "resource",
	types.EntityGlobalGenericComponent:    "component",
	types.EntityInternalGenericComponent:  "internal_component",
	types.EntityInternalFungibleVault:     "internal_vault",
	types.EntityInternalKeyValueStore:     "internal_keyvaluestore",
}

var blueprint = map[types.EntityType]string{
	types.EntityGlobalPackage:             "Package",
	types.EntityGlobalAccount:             "Account",
	types.EntityGlobalIdentity:            "Identity",
	types.EntityGlobalFungibleResource:    "FungibleResourceManager",
	types.EntityGlobalNonFungibleResource: "NonFungibleResourceManager",
	types.EntityGlobalGenericComponent:    "Radiswap",
	types.EntityInternalGenericComponent:  "Pool",
	types.EntityInternalFungibleVault:     "FungibleVault",
}

// Address returns the address of the i-th generated entity.
func Address(i int) string {
	return fmt.Sprintf("%s_%06d", addressPrefix[TypeOf(i)], i)
}

// TypeOf returns the type of the i-th generated entity.
func TypeOf(i int) types.EntityType {
	return types.AllEntityTypes[i%len(types.AllEntityTypes)]
}

// EntriesOf returns how many entries the key-value store created as
// the i-th entity holds.
func EntriesOf(i int) int {
	return (i*7)%23 + 1
}

// Generate builds a ledger with n entities.
func Generate(n int) Ledger {
	var l Ledger
	for i := range n {
		t := TypeOf(i)
		e := store.Entity{
			Address: Address(i),
			Type:    t,
			CreatedAt: store.EntityKey{
				StateVersion: uint64(i/EntitiesPerVersion) + 1,
				Index:        uint32(i % EntitiesPerVersion),
			},
			BlueprintName: blueprint[t],
		}
		l.Entities = append(l.Entities, e)

		if t != types.EntityInternalKeyValueStore {
			continue
		}
		for k := range EntriesOf(i) {
			l.Entries = append(l.Entries, store.KVEntry{
				StoreAddress: e.Address,
				Key:          scatteredKey(k),
				Value:        []byte(fmt.Sprintf("value-%d-%d", i, k)),
			})
		}
	}

	version := uint64(0)
	if n > 0 {
		version = l.Entities[n-1].CreatedAt.StateVersion
	}
	l.State = types.LedgerStateSummary{
		StateVersion:      version,
		HeaderHash:        sha256.Sum256(binary.BigEndian.AppendUint64([]byte("demo-header/"), version)),
		ProposerTimestamp: types.TimeToTimestamp(Genesis.Add(time.Duration(version) * time.Second)),
	}
	return l
}

// scatteredKey maps k to a key whose byte order differs from k's.
func scatteredKey(k int) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k)*0x9E3779B97F4A7C15)
}

// Seed writes l into w.
func Seed(ctx context.Context, w store.Writer, l Ledger) error {
	for _, e := range l.Entities {
		if err := w.PutEntity(ctx, e); err != nil {
			return fmt.Errorf("seed entity %s: %w", e.Address, err)
		}
	}
	for _, kv := range l.Entries {
		if err := w.PutKeyValueEntry(ctx, kv); err != nil {
			return fmt.Errorf("seed entry of %s: %w", kv.StoreAddress, err)
		}
	}
	if err := w.SetLedgerState(ctx, l.State); err != nil {
		return fmt.Errorf("seed ledger state: %w", err)
	}
	return nil
}
