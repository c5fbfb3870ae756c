// Package nodeapi defines the read-side HTTP and gRPC APIs a node
// exposes for paging through its ledger state.
//
// Every listing operation returns one bounded page plus an opaque
// continuation token. The paging engine lives in [paging]; the token
// format in [token]; the endpoint façade tying them to request
// parameters in [endpoint].
//
// Sub-APIs are optional: a node declares which ones it serves with a
// [types.APISet], and callers discover them through a [Connection].
package nodeapi

import (
	"context"

	"github.com/blockberries/nodeapi/types"
)

// EngineState lists the entities known to the state engine.
//
// Declared via: types.APIEngineState
type EngineState interface {
	// ListEntities returns one page of entities in creation order,
	// optionally filtered by system or entity type.
	//
	// A continuation token issued for one filter is rejected when
	// presented with another.
	//
	// This method MUST be safe for concurrent use.
	ListEntities(ctx context.Context, req types.EntityIteratorRequest) (types.EntityIteratorResponse, error)
}

// Browse exposes the contents of individual entities.
//
// Declared via: types.APIBrowse
type Browse interface {
	// ListKeyValueStoreKeys returns one page of the keys held by a
	// key-value store entity, in key order.
	//
	// Returns an ItemNotFoundError if the entity does not exist and a
	// RequestError if it is not a key-value store.
	//
	// This method MUST be safe for concurrent use.
	ListKeyValueStoreKeys(ctx context.Context, req types.KeyValueStoreIteratorRequest) (types.KeyValueStoreIteratorResponse, error)
}

// Service is a convenience interface embedding every sub-API. Servers
// that serve everything implement it directly.
type Service interface {
	EngineState
	Browse
}

// Connection represents a transport-agnostic connection to a node API.
// Both gRPC clients and in-process adapters implement this.
type Connection interface {
	// APIs returns the sub-APIs the node serves.
	APIs() types.APISet

	// AsEngineState returns the EngineState API if served, or nil.
	AsEngineState() EngineState

	// AsBrowse returns the Browse API if served, or nil.
	AsBrowse() Browse

	// Close terminates the connection.
	Close() error
}
