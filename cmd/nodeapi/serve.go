package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	nodeapigrpc "github.com/blockberries/nodeapi/grpc"
	"github.com/blockberries/nodeapi/httpapi"
	"github.com/blockberries/nodeapi/logging"
	"github.com/blockberries/nodeapi/metrics"
	"github.com/blockberries/nodeapi/server"
)

var cmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Serve the node API over HTTP and gRPC",
	Args:  cobra.NoArgs,
	Run:   runServe,
}

const shutdownTimeout = 10 * time.Second

func init() {
	cmdMain.AddCommand(cmdServe)

	f := cmdServe.Flags()
	f.String("http-addr", ":3333", "HTTP listen address")
	f.String("grpc-addr", ":3334", "gRPC listen address, empty to disable")
	f.StringSlice("apis", []string{"engine_state", "browse"}, "Sub-APIs to serve")
	f.String("store-backend", "memory", "Store backend (memory or badger)")
	f.String("store-path", "./data", "Badger data directory")
	f.Int("max-page-size", 10000, "Largest page a client may request")
	f.Int("demo-entities", 0, "Seed a demo ledger of this many entities, 0 to disable")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig(cmd, map[string]string{
		"server.http_addr":     "http-addr",
		"server.grpc_addr":     "grpc-addr",
		"server.apis":          "apis",
		"store.backend":        "store-backend",
		"store.path":           "store-path",
		"paging.max_page_size": "max-page-size",
		"demo.entities":        "demo-entities",
	})
	checkf(err, "load config")

	logger := logging.Setup(cfg.Logging.Level, "serve")
	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg.Store, logger)
	checkf(err, "open %s store", cfg.Store.Backend)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Errorf("close store: %v", err)
		}
	}()

	if cfg.Demo.Entities > 0 {
		checkf(seedDemo(ctx, st, cfg.Demo.Entities, logger), "seed demo ledger")
	}

	apis, err := cfg.APISet()
	check(err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := server.New(st, server.Options{
		Limits:              cfg.PagingLimits(),
		APIs:                apis,
		Logger:              logging.Setup(cfg.Logging.Level, "server"),
		Metrics:             metrics.NewMetrics(reg),
		EntityMetaCacheSize: cfg.Cache.EntityMetaSize,
	})
	checkf(err, "create server")

	httpSrv := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: httpapi.NewRouter(srv, httpapi.Options{
			Logger:   logging.Setup(cfg.Logging.Level, "http"),
			Gatherer: reg,
			Ready:    srv.Ready,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 2)
	srv.Start()

	go func() {
		logger.Infof("http listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	gs := nodeapigrpc.NewGRPCServer(srv)
	grpcSrv := gs.NewServer()
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		checkf(err, "listen on %s", cfg.Server.GRPCAddr)
		go func() {
			logger.Infof("grpc listening on %s", lis.Addr())
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errc:
		logger.Errorf("server failed: %v", err)
	}

	// Refuse new pages before the listeners drain.
	_ = srv.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	gs.Stop(grpcSrv)
}
