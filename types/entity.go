package types

import "fmt"

// EntityType classifies an entity by the kind of object it holds.
type EntityType string

const (
	EntityGlobalPackage             EntityType = "GlobalPackage"
	EntityGlobalAccount             EntityType = "GlobalAccount"
	EntityGlobalIdentity            EntityType = "GlobalIdentity"
	EntityGlobalFungibleResource    EntityType = "GlobalFungibleResource"
	EntityGlobalNonFungibleResource EntityType = "GlobalNonFungibleResource"
	EntityGlobalGenericComponent    EntityType = "GlobalGenericComponent"
	EntityInternalGenericComponent  EntityType = "InternalGenericComponent"
	EntityInternalFungibleVault     EntityType = "InternalFungibleVault"
	EntityInternalKeyValueStore     EntityType = "InternalKeyValueStore"
)

// AllEntityTypes lists every EntityType in declaration order.
var AllEntityTypes = []EntityType{
	EntityGlobalPackage,
	EntityGlobalAccount,
	EntityGlobalIdentity,
	EntityGlobalFungibleResource,
	EntityGlobalNonFungibleResource,
	EntityGlobalGenericComponent,
	EntityInternalGenericComponent,
	EntityInternalFungibleVault,
	EntityInternalKeyValueStore,
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityGlobalPackage, EntityGlobalAccount, EntityGlobalIdentity,
		EntityGlobalFungibleResource, EntityGlobalNonFungibleResource,
		EntityGlobalGenericComponent, EntityInternalGenericComponent,
		EntityInternalFungibleVault, EntityInternalKeyValueStore:
		return true
	default:
		return false
	}
}

// IsGlobal reports whether entities of this type have a global
// address.
func (t EntityType) IsGlobal() bool {
	switch t {
	case EntityGlobalPackage, EntityGlobalAccount, EntityGlobalIdentity,
		EntityGlobalFungibleResource, EntityGlobalNonFungibleResource,
		EntityGlobalGenericComponent:
		return true
	case EntityInternalGenericComponent, EntityInternalFungibleVault, EntityInternalKeyValueStore:
		return false
	default:
		panic(fmt.Sprintf("types: unknown entity type %q", string(t)))
	}
}

// SystemType returns the system-level classification of t.
func (t EntityType) SystemType() SystemType {
	switch t {
	case EntityInternalKeyValueStore:
		return SystemKeyValueStore
	case EntityGlobalPackage, EntityGlobalAccount, EntityGlobalIdentity,
		EntityGlobalFungibleResource, EntityGlobalNonFungibleResource,
		EntityGlobalGenericComponent, EntityInternalGenericComponent,
		EntityInternalFungibleVault:
		return SystemObject
	default:
		panic(fmt.Sprintf("types: unknown entity type %q", string(t)))
	}
}

// SystemType is the coarse classification of an entity.
type SystemType string

const (
	SystemObject        SystemType = "Object"
	SystemKeyValueStore SystemType = "KeyValueStore"
)

// Valid reports whether s is a known system type.
func (s SystemType) Valid() bool {
	switch s {
	case SystemObject, SystemKeyValueStore:
		return true
	default:
		return false
	}
}

// ListedEntityItem is one entry of the entity iterator.
type ListedEntityItem struct {
	EntityType            EntityType `json:"entity_type" cramberry:"1"`
	SystemType            SystemType `json:"system_type" cramberry:"2"`
	IsGlobal              bool       `json:"is_global" cramberry:"3"`
	EntityAddress         string     `json:"entity_address" cramberry:"4"`
	CreatedAtStateVersion uint64     `json:"created_at_state_version" cramberry:"5"`
	BlueprintName         string     `json:"blueprint_name,omitempty" cramberry:"6"`
}

// KeyValueStoreMapKey is one key listed by the key-value store
// iterator. The key is the hex encoding of its raw bytes.
type KeyValueStoreMapKey struct {
	KeyHex string `json:"key_hex" cramberry:"1"`
}
