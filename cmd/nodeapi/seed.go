package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockberries/nodeapi/config"
	"github.com/blockberries/nodeapi/logging"
)

var cmdSeed = &cobra.Command{
	Use:   "seed",
	Short: "Write a demo ledger into a store",
	Args:  cobra.NoArgs,
	Run:   runSeed,
}

func init() {
	cmdMain.AddCommand(cmdSeed)

	f := cmdSeed.Flags()
	f.String("store-backend", "badger", "Store backend (memory or badger)")
	f.String("store-path", "./data", "Badger data directory")
	f.Int("entities", 1000, "Number of entities to generate")
}

func runSeed(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig(cmd, map[string]string{
		"store.backend": "store-backend",
		"store.path":    "store-path",
		"demo.entities": "entities",
	}, func(v *viper.Viper) {
		v.SetDefault("store.backend", config.BackendBadger)
		v.SetDefault("demo.entities", 1000)
	})
	checkf(err, "load config")
	if cfg.Demo.Entities == 0 {
		fatalf("--entities must be positive")
	}

	logger := logging.Setup(cfg.Logging.Level, "seed")
	st, err := openStore(cfg.Store, logger)
	checkf(err, "open %s store", cfg.Store.Backend)
	defer st.Close()

	ctx := context.Background()
	check(seedDemo(ctx, st, cfg.Demo.Entities, logger))

	state, err := st.LedgerState(ctx)
	check(err)
	fmt.Printf("ledger at state version %d (%s)\n", state.StateVersion, state.HeaderHash)
}
