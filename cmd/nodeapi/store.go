package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/blockberries/nodeapi/config"
	"github.com/blockberries/nodeapi/example/demoledger"
	"github.com/blockberries/nodeapi/store"
	"github.com/blockberries/nodeapi/store/badgerstore"
	"github.com/blockberries/nodeapi/store/memstore"
)

func openStore(cfg *config.Store, logger *logrus.Entry) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nil
	case config.BackendBadger:
		s, err := badgerstore.Open(badgerstore.Options{
			Path:   cfg.Path,
			Logger: logger.WithField("component", "badger"),
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// seedDemo writes a demo ledger of n entities into s unless s already
// holds a ledger.
func seedDemo(ctx context.Context, s store.Store, n int, logger *logrus.Entry) error {
	state, err := s.LedgerState(ctx)
	if err != nil {
		return err
	}
	if state.StateVersion != 0 {
		logger.Infof("store already at state version %d, not seeding", state.StateVersion)
		return nil
	}
	l := demoledger.Generate(n)
	if err := demoledger.Seed(ctx, s, l); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"entities":      len(l.Entities),
		"kv_entries":    len(l.Entries),
		"state_version": l.State.StateVersion,
	}).Info("seeded demo ledger")
	return nil
}
