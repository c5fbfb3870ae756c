package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/cache"
	"github.com/blockberries/nodeapi/endpoint"
	"github.com/blockberries/nodeapi/logging"
	"github.com/blockberries/nodeapi/metrics"
	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

// Endpoint scopes. Each is mixed into the filter hash of its tokens.
const (
	ScopeEntityIterator  = "engine_state/entity_iterator"
	ScopeKVStoreIterator = "browse/kv_store_iterator"
)

// Request field names used in client errors, beyond the paging ones.
const (
	FieldFilter        = "filter"
	FieldEntityAddress = "entity_address"
)

// ErrAPINotServed is returned for calls to a sub-API the server was not
// configured to serve.
var ErrAPINotServed = errors.New("nodeapi: api not served")

// DefaultEntityMetaCacheSize is used when Options.EntityMetaCacheSize
// is zero.
const DefaultEntityMetaCacheSize = 4096

var (
	_ nodeapi.Service    = (*Server)(nil)
	_ nodeapi.Connection = (*Server)(nil)
)

// Options configures a Server. The zero value serves every API with
// the default limits and no logging or metrics.
type Options struct {
	Limits              endpoint.Limits
	APIs                types.APISet
	Logger              *logrus.Entry
	Metrics             *metrics.Metrics
	Clock               clock.Clock
	EntityMetaCacheSize int
}

type metaKey struct {
	Address string
}

// Server serves the node API over a store.Reader. Its methods are safe
// for concurrent use once Start has been called.
type Server struct {
	reader  store.Reader
	guard   *ReadinessGuard
	apis    types.APISet
	logger  *logrus.Entry
	metrics *metrics.Metrics
	clock   clock.Clock

	entities *endpoint.Endpoint[store.Entity, store.EntityKey]
	kvKeys   *endpoint.Endpoint[store.KVEntry, []byte]
	meta     *cache.LRU[metaKey, store.Entity]
}

// New creates a server in the Init state. Call Start before serving.
func New(reader store.Reader, opts Options) (*Server, error) {
	if opts.Limits == (endpoint.Limits{}) {
		opts.Limits = endpoint.DefaultLimits()
	}
	if err := opts.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("paging limits: %w", err)
	}
	if opts.APIs == 0 {
		opts.APIs = types.AllAPIs
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.EntityMetaCacheSize == 0 {
		opts.EntityMetaCacheSize = DefaultEntityMetaCacheSize
	}
	meta, err := cache.New[metaKey, store.Entity](opts.EntityMetaCacheSize)
	if err != nil {
		return nil, err
	}

	return &Server{
		reader:   reader,
		guard:    NewReadinessGuard(),
		apis:     opts.APIs,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		entities: endpoint.New[store.Entity, store.EntityKey](ScopeEntityIterator, opts.Limits, endpoint.WithClock(opts.Clock)),
		kvKeys:   endpoint.New[store.KVEntry, []byte](ScopeKVStoreIterator, opts.Limits, endpoint.WithClock(opts.Clock)),
		meta:     meta,
	}, nil
}

// Start transitions the server to Ready.
func (s *Server) Start() {
	s.guard.Start()
	s.logger.Infof("serving apis %s", s.apis)
}

// Ready reports whether the server is serving.
func (s *Server) Ready() bool { return s.guard.IsReady() }

// Close stops serving. The store is not closed.
func (s *Server) Close() error {
	if s.guard.Close() {
		s.logger.Info("server closed")
	}
	return nil
}

// APIs returns the sub-APIs served.
func (s *Server) APIs() types.APISet { return s.apis }

// AsEngineState returns the server if it serves the Engine State API.
func (s *Server) AsEngineState() nodeapi.EngineState {
	if s.apis.Has(types.APIEngineState) {
		return s
	}
	return nil
}

// AsBrowse returns the server if it serves the Browse API.
func (s *Server) AsBrowse() nodeapi.Browse {
	if s.apis.Has(types.APIBrowse) {
		return s
	}
	return nil
}

// Limits returns the paging limits.
func (s *Server) Limits() endpoint.Limits { return s.entities.Limits() }

func (s *Server) check(api types.APISet) error {
	if err := s.guard.Check(); err != nil {
		return err
	}
	if !s.apis.Has(api) {
		return fmt.Errorf("%w: %s", ErrAPINotServed, api)
	}
	return nil
}

// ListEntities lists entities in creation order. Safe for concurrent
// use.
func (s *Server) ListEntities(ctx context.Context, req types.EntityIteratorRequest) (types.EntityIteratorResponse, error) {
	start := s.clock.Now()
	if err := s.check(types.APIEngineState); err != nil {
		return types.EntityIteratorResponse{}, err
	}

	filter, err := req.Filter.Decode()
	if err != nil {
		return types.EntityIteratorResponse{}, s.fail(ctx, ScopeEntityIterator, nodeapi.NewRequestError(FieldFilter, err))
	}
	ledger, err := s.reader.LedgerState(ctx)
	if err != nil {
		return types.EntityIteratorResponse{}, s.fail(ctx, ScopeEntityIterator, fmt.Errorf("read ledger state: %w", err))
	}

	page, err := s.entities.GetPage(ctx, endpoint.Request{
		MaxPageSize:       req.MaxPageSize,
		ContinuationToken: req.ContinuationToken,
	}, types.Wire(filter), func(ctx context.Context, from *store.EntityKey) (paging.Iterator[store.Entity], error) {
		return s.reader.IterateEntities(ctx, filter, from)
	}, paging.KeyMethod[store.Entity, store.EntityKey]())
	if err != nil {
		return types.EntityIteratorResponse{}, s.fail(ctx, ScopeEntityIterator, err)
	}

	items := make([]types.ListedEntityItem, len(page.Items))
	for i, e := range page.Items {
		items[i] = e.Listed()
	}
	s.observe(ctx, ScopeEntityIterator, start, len(items), page.ContinuationToken != nil)
	return types.EntityIteratorResponse{
		LedgerState:       ledger,
		Page:              items,
		ContinuationToken: page.ContinuationToken,
	}, nil
}

// ListKeyValueStoreKeys lists the keys of a key-value store entity in
// key order. Safe for concurrent use.
func (s *Server) ListKeyValueStoreKeys(ctx context.Context, req types.KeyValueStoreIteratorRequest) (types.KeyValueStoreIteratorResponse, error) {
	start := s.clock.Now()
	if err := s.check(types.APIBrowse); err != nil {
		return types.KeyValueStoreIteratorResponse{}, err
	}

	address := req.EntityAddress
	if address == "" {
		return types.KeyValueStoreIteratorResponse{}, s.fail(ctx, ScopeKVStoreIterator,
			nodeapi.NewRequestError(FieldEntityAddress, errors.New("required")))
	}
	e, err := s.entityMeta(ctx, address)
	if err != nil {
		return types.KeyValueStoreIteratorResponse{}, s.fail(ctx, ScopeKVStoreIterator, err)
	}
	if e.Type != types.EntityInternalKeyValueStore {
		return types.KeyValueStoreIteratorResponse{}, s.fail(ctx, ScopeKVStoreIterator,
			nodeapi.NewRequestError(FieldEntityAddress, fmt.Errorf("entity %s is a %s, not a key-value store", address, e.Type)))
	}
	ledger, err := s.reader.LedgerState(ctx)
	if err != nil {
		return types.KeyValueStoreIteratorResponse{}, s.fail(ctx, ScopeKVStoreIterator, fmt.Errorf("read ledger state: %w", err))
	}

	page, err := s.kvKeys.GetPeekAheadPage(ctx, endpoint.Request{
		MaxPageSize:       req.MaxPageSize,
		ContinuationToken: req.ContinuationToken,
	}, types.KeyValueStoreFilter{EntityAddress: address}, func(ctx context.Context, from *[]byte, limit int) ([]store.KVEntry, error) {
		var key []byte
		if from != nil {
			key = *from
		}
		return s.reader.ListKeyValueEntries(ctx, address, key, limit)
	}, func(e store.KVEntry) []byte { return e.Key })
	if err != nil {
		return types.KeyValueStoreIteratorResponse{}, s.fail(ctx, ScopeKVStoreIterator, err)
	}

	items := make([]types.KeyValueStoreMapKey, len(page.Items))
	for i, kv := range page.Items {
		items[i] = types.KeyValueStoreMapKey{KeyHex: hex.EncodeToString(kv.Key)}
	}
	s.observe(ctx, ScopeKVStoreIterator, start, len(items), page.ContinuationToken != nil)
	return types.KeyValueStoreIteratorResponse{
		LedgerState:       ledger,
		Page:              items,
		ContinuationToken: page.ContinuationToken,
	}, nil
}

// entityMeta looks an entity up through the metadata cache.
func (s *Server) entityMeta(ctx context.Context, address string) (store.Entity, error) {
	key := metaKey{Address: address}
	if e, ok := s.meta.Get(key); ok {
		s.metrics.ObserveCache(true)
		return e, nil
	}
	s.metrics.ObserveCache(false)

	e, err := s.reader.EntityMeta(ctx, address)
	if errors.Is(err, store.ErrEntityNotFound) {
		return store.Entity{}, nodeapi.NewItemNotFoundError("entity", address)
	}
	if err != nil {
		return store.Entity{}, fmt.Errorf("read entity %s: %w", address, err)
	}
	s.meta.Put(key, e)
	return e, nil
}

// InvalidateEntityMeta evicts cached entity metadata matching pred and
// returns how many entries were evicted.
func (s *Server) InvalidateEntityMeta(pred func(address string, e store.Entity) bool) int {
	return s.meta.Evict(func(k metaKey, e store.Entity) bool {
		return pred(k.Address, e)
	})
}

func (s *Server) observe(ctx context.Context, scope string, start time.Time, items int, hasMore bool) {
	took := s.clock.Since(start)
	s.metrics.ObservePage(scope, items, hasMore, took)
	logging.WithRequest(ctx, s.logger).WithFields(logrus.Fields{
		"endpoint": scope,
		"items":    items,
		"more":     hasMore,
		"took":     took,
	}).Debug("page served")
}

// fail records err against scope and returns it unchanged.
func (s *Server) fail(ctx context.Context, scope string, err error) error {
	logger := logging.WithRequest(ctx, s.logger).WithField("endpoint", scope)
	if reqErr, ok := nodeapi.IsRequestError(err); ok {
		s.metrics.ObserveRequestError(scope, reqErr.Field)
		logger.Debugf("rejected request: %v", err)
		return err
	}
	if _, ok := nodeapi.IsNotFound(err); ok {
		s.metrics.ObserveRequestError(scope, FieldEntityAddress)
		logger.Debugf("item not found: %v", err)
		return err
	}
	s.metrics.ObserveServerError(scope)
	logger.Errorf("request failed: %v", err)
	return err
}
