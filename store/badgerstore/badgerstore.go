// Package badgerstore is a store.Store backed by Badger.
//
// Key layout:
//
//	e/<state version BE><index BE>   cramberry(Entity)
//	a/<address>                      entity key
//	k/<store address>\x00<key>       value
//	m/ledger                         cramberry(LedgerStateSummary)
//
// Badger keeps keys in byte order, so entity keys sort by creation and
// key-value entries sort by their raw key within one store.
package badgerstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/blockberries/nodeapi/paging"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/types"
)

var (
	prefixEntity  = []byte("e/")
	prefixAddress = []byte("a/")
	prefixKV      = []byte("k/")
	keyLedger     = []byte("m/ledger")
)

var _ store.Store = (*Store)(nil)

// Options configures Open.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory.
	InMemory bool
	// Logger receives Badger's own log output. Nil silences it.
	Logger *logrus.Entry
}

// Store is a Badger-backed store.
type Store struct {
	readyMu sync.RWMutex
	ready   bool
	db      *badger.DB

	// iters counts entity iterators whose transaction is still open.
	iters sync.WaitGroup
}

// Open opens (or creates) the database.
func Open(o Options) (*Store, error) {
	opts := badger.DefaultOptions(o.Path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if o.Logger != nil {
		opts = opts.WithLogger(badgerLogger{o.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, ready: true}, nil
}

// lock acquires the ready mutex and checks that the store is still
// open, so that no call races with Close.
func (s *Store) lock(closing bool) (sync.Locker, error) {
	var l sync.Locker = &s.readyMu
	if !closing {
		l = s.readyMu.RLocker()
	}
	l.Lock()
	if !s.ready {
		l.Unlock()
		return nil, store.ErrNotOpen
	}
	return l, nil
}

// Close closes the database once every open entity iterator has been
// closed. New calls fail with store.ErrNotOpen as soon as Close starts.
func (s *Store) Close() error {
	l, err := s.lock(true)
	if err != nil {
		return err
	}
	s.ready = false
	l.Unlock()

	s.iters.Wait()
	return s.db.Close()
}

func entityKey(k store.EntityKey) []byte {
	b := make([]byte, 0, len(prefixEntity)+12)
	b = append(b, prefixEntity...)
	b = binary.BigEndian.AppendUint64(b, k.StateVersion)
	return binary.BigEndian.AppendUint32(b, k.Index)
}

func addressKey(address string) []byte {
	return append(bytes.Clone(prefixAddress), address...)
}

func kvPrefix(storeAddress string) []byte {
	b := append(bytes.Clone(prefixKV), storeAddress...)
	return append(b, 0)
}

func (s *Store) LedgerState(context.Context) (types.LedgerStateSummary, error) {
	l, err := s.lock(false)
	if err != nil {
		return types.LedgerStateSummary{}, err
	}
	defer l.Unlock()

	var out types.LedgerStateSummary
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyLedger)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return cramberry.Unmarshal(v, &out)
		})
	})
	if err != nil {
		return types.LedgerStateSummary{}, fmt.Errorf("read ledger state: %w", err)
	}
	return out, nil
}

func (s *Store) EntityMeta(_ context.Context, address string) (store.Entity, error) {
	l, err := s.lock(false)
	if err != nil {
		return store.Entity{}, err
	}
	defer l.Unlock()

	var e store.Entity
	err = s.db.View(func(txn *badger.Txn) error {
		ref, err := txn.Get(addressKey(address))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", store.ErrEntityNotFound, address)
		}
		if err != nil {
			return err
		}
		k, err := ref.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err := txn.Get(k)
		if err != nil {
			return fmt.Errorf("entity %s: dangling address index: %w", address, err)
		}
		return item.Value(func(v []byte) error {
			return cramberry.Unmarshal(v, &e)
		})
	})
	if err != nil {
		return store.Entity{}, err
	}
	return e, nil
}

func (s *Store) IterateEntities(_ context.Context, filter types.EntityFilter, from *store.EntityKey) (paging.Iterator[store.Entity], error) {
	l, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer l.Unlock()

	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefixEntity
	it := txn.NewIterator(opts)
	if from != nil {
		it.Seek(entityKey(*from))
	} else {
		it.Seek(prefixEntity)
	}
	s.iters.Add(1)
	return store.FilterEntities(&entityIterator{txn: txn, it: it, done: s.iters.Done}, filter), nil
}

// entityIterator decodes entities lazily from a read-only transaction.
// It holds up Store.Close until it is closed.
type entityIterator struct {
	txn    *badger.Txn
	it     *badger.Iterator
	done   func()
	closed bool
}

func (e *entityIterator) Next() (store.Entity, bool, error) {
	if e.closed || !e.it.ValidForPrefix(prefixEntity) {
		return store.Entity{}, false, nil
	}
	var out store.Entity
	err := e.it.Item().Value(func(v []byte) error {
		return cramberry.Unmarshal(v, &out)
	})
	if err != nil {
		return store.Entity{}, false, fmt.Errorf("decode entity %x: %w", e.it.Item().Key(), err)
	}
	e.it.Next()
	return out, true, nil
}

func (e *entityIterator) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.it.Close()
	e.txn.Discard()
	e.done()
	return nil
}

func (s *Store) ListKeyValueEntries(_ context.Context, storeAddress string, from []byte, limit int) ([]store.KVEntry, error) {
	l, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer l.Unlock()

	prefix := kvPrefix(storeAddress)
	out := []store.KVEntry{}
	if limit <= 0 {
		return out, nil
	}
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = min(limit, 100)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append(bytes.Clone(prefix), from...)); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, store.KVEntry{
				StoreAddress: storeAddress,
				Key:          item.KeyCopy(nil)[len(prefix):],
				Value:        v,
			})
			if len(out) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list key-value entries of %s: %w", storeAddress, err)
	}
	return out, nil
}

func (s *Store) PutEntity(_ context.Context, e store.Entity) error {
	if !e.Type.Valid() {
		return fmt.Errorf("put entity %s: unknown entity type %q", e.Address, string(e.Type))
	}
	l, err := s.lock(false)
	if err != nil {
		return err
	}
	defer l.Unlock()

	value, err := cramberry.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entity %s: %w", e.Address, err)
	}
	ek := entityKey(e.CreatedAt)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(addressKey(e.Address)); err == nil {
			return fmt.Errorf("%w: address %s", store.ErrDuplicateEntity, e.Address)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(ek); err == nil {
			return fmt.Errorf("%w: creation key %d/%d", store.ErrDuplicateEntity, e.CreatedAt.StateVersion, e.CreatedAt.Index)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(ek, value); err != nil {
			return err
		}
		return txn.Set(addressKey(e.Address), ek)
	})
}

func (s *Store) PutKeyValueEntry(_ context.Context, e store.KVEntry) error {
	if strings.IndexByte(e.StoreAddress, 0) >= 0 {
		return fmt.Errorf("put key-value entry: store address %q contains a NUL byte", e.StoreAddress)
	}
	l, err := s.lock(false)
	if err != nil {
		return err
	}
	defer l.Unlock()

	k := append(kvPrefix(e.StoreAddress), e.Key...)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, bytes.Clone(e.Value))
	})
}

func (s *Store) SetLedgerState(_ context.Context, ls types.LedgerStateSummary) error {
	l, err := s.lock(false)
	if err != nil {
		return err
	}
	defer l.Unlock()

	value, err := cramberry.Marshal(ls)
	if err != nil {
		return fmt.Errorf("encode ledger state: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyLedger, value)
	})
}

type badgerLogger struct {
	*logrus.Entry
}

func (l badgerLogger) format(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Entry.Error(l.format(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Entry.Warn(l.format(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Entry.Debug(l.format(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Entry.Trace(l.format(format, args...))
}
