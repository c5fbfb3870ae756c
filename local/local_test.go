package local

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/nodeapi/example/demoledger"
	"github.com/blockberries/nodeapi/server"
	"github.com/blockberries/nodeapi/store/memstore"
	"github.com/blockberries/nodeapi/types"
)

func newConnection(t *testing.T, n int, apis types.APISet) *Connection {
	t.Helper()
	s := memstore.New()
	if err := demoledger.Seed(context.Background(), s, demoledger.Generate(n)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	conn, err := NewConnection(s, server.Options{APIs: apis})
	if err != nil {
		t.Fatalf("NewConnection failed: %v", err)
	}
	return conn
}

func TestLocalConnection_PageThrough(t *testing.T) {
	conn := newConnection(t, 25, types.AllAPIs)
	defer conn.Close()

	if conn.APIs() != types.AllAPIs {
		t.Errorf("expected all apis, got %s", conn.APIs())
	}
	es := conn.AsEngineState()
	if es == nil {
		t.Fatal("expected EngineState")
	}

	size := int32(10)
	var (
		tok   *string
		total int
		pages int
	)
	for {
		resp, err := es.ListEntities(context.Background(), types.EntityIteratorRequest{
			MaxPageSize:       &size,
			ContinuationToken: tok,
		})
		if err != nil {
			t.Fatalf("ListEntities failed: %v", err)
		}
		pages++
		total += len(resp.Page)
		if resp.ContinuationToken == nil {
			break
		}
		tok = resp.ContinuationToken
	}
	if pages != 3 || total != 25 {
		t.Fatalf("expected 25 entities in 3 pages, got %d in %d", total, pages)
	}
}

func TestLocalConnection_Browse(t *testing.T) {
	conn := newConnection(t, 10, types.AllAPIs)
	defer conn.Close()

	b := conn.AsBrowse()
	if b == nil {
		t.Fatal("expected Browse")
	}
	resp, err := b.ListKeyValueStoreKeys(context.Background(), types.KeyValueStoreIteratorRequest{
		EntityAddress: demoledger.Address(8),
	})
	if err != nil {
		t.Fatalf("ListKeyValueStoreKeys failed: %v", err)
	}
	if len(resp.Page) != demoledger.EntriesOf(8) {
		t.Fatalf("expected %d keys, got %d", demoledger.EntriesOf(8), len(resp.Page))
	}
}

func TestLocalConnection_APIDiscovery(t *testing.T) {
	conn := newConnection(t, 1, types.APIEngineState)
	defer conn.Close()

	if conn.AsEngineState() == nil {
		t.Error("expected EngineState")
	}
	if conn.AsBrowse() != nil {
		t.Error("expected nil Browse")
	}
}

func TestLocalConnection_Close(t *testing.T) {
	conn := newConnection(t, 1, types.AllAPIs)
	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	_, err := conn.ListEntities(context.Background(), types.EntityIteratorRequest{})
	if !errors.Is(err, server.ErrNotReady) {
		t.Fatalf("expected ErrNotReady after Close, got %v", err)
	}
	if conn.Server().Ready() {
		t.Fatal("server still ready after Close")
	}
}
