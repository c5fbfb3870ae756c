// Package local provides an in-process node API connection.
//
// For callers compiled into the same binary as the node, this adapter
// serves the API straight from a store.Reader, with readiness
// enforcement and API discovery and no serialization overhead.
package local

import (
	"context"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/server"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

// Compile-time interface checks.
var (
	_ nodeapi.Connection = (*Connection)(nil)
	_ nodeapi.Service    = (*Connection)(nil)
)

// Connection serves the node API in-process.
type Connection struct {
	srv *server.Server
}

// NewConnection creates a started in-process connection over reader.
func NewConnection(reader store.Reader, opts server.Options) (*Connection, error) {
	srv, err := server.New(reader, opts)
	if err != nil {
		return nil, err
	}
	srv.Start()
	return &Connection{srv: srv}, nil
}

func (c *Connection) ListEntities(ctx context.Context, req types.EntityIteratorRequest) (types.EntityIteratorResponse, error) {
	return c.srv.ListEntities(ctx, req)
}

func (c *Connection) ListKeyValueStoreKeys(ctx context.Context, req types.KeyValueStoreIteratorRequest) (types.KeyValueStoreIteratorResponse, error) {
	return c.srv.ListKeyValueStoreKeys(ctx, req)
}

func (c *Connection) APIs() types.APISet {
	return c.srv.APIs()
}

func (c *Connection) AsEngineState() nodeapi.EngineState {
	if c.srv.AsEngineState() == nil {
		return nil
	}
	return c
}

func (c *Connection) AsBrowse() nodeapi.Browse {
	if c.srv.AsBrowse() == nil {
		return nil
	}
	return c
}

// Close stops the underlying server. The store is left open.
func (c *Connection) Close() error { return c.srv.Close() }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
