// Command rotad serves the work allocator over HTTP.
//
// State lives either in memory (default), in an external NATS JetStream
// deployment (-config natsUrl / ROTA_NATS_URL), or in an embedded JetStream
// server for durable single-binary deployments (ROTA_EMBEDDED_NATS=true).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	rota "github.com/rotad/rota"
	"github.com/rotad/rota/httpapi"
	"github.com/rotad/rota/internal/logging"
	"github.com/rotad/rota/internal/metrics"
	"github.com/rotad/rota/store"
	"github.com/rotad/rota/types"
)

func main() {
	configURL := flag.String("config", os.Getenv("ROTA_CONFIG"), "config file URL (any afs scheme)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewSlog(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(ctx, *configURL, logger); err != nil {
		logger.Error("rotad exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configURL string, logger types.Logger) error {
	cfg, err := loadConfig(ctx, configURL)
	if err != nil {
		return err
	}

	stores, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	collector := metrics.NewPrometheus(nil, "rota")
	alloc, err := rota.New(&cfg.Allocator, stores,
		rota.WithLogger(logger),
		rota.WithMetrics(collector),
	)
	if err != nil {
		return err
	}

	handler := httpapi.New(alloc,
		httpapi.WithLogger(logger),
		httpapi.WithMetricsHandler(promhttp.Handler()),
		httpapi.WithUploadMapping(cfg.Upload),
	)
	srv := httpapi.NewServer(cfg.HTTPAddr, handler.Router(),
		httpapi.WithServerLogger(logger),
		httpapi.WithShutdownTimeout(cfg.ShutdownTimeout),
	)

	logger.Info("rotad starting",
		"addr", cfg.HTTPAddr,
		"policy", cfg.Allocator.Policy,
		"durable", cfg.NATSURL != "" || cfg.EmbeddedNATS,
	)

	return srv.Run(ctx)
}

// buildStores selects the storage backend. The returned cleanup closes any
// NATS connection and embedded server.
func buildStores(ctx context.Context, cfg daemonConfig, logger types.Logger) (store.Stores, func(), error) {
	if !cfg.EmbeddedNATS && cfg.NATSURL == "" {
		logger.Warn("using in-memory store, state is lost on restart")

		return store.NewMemory().Stores(), func() {}, nil
	}

	url := cfg.NATSURL
	cleanup := func() {}
	if cfg.EmbeddedNATS {
		ns, err := startEmbeddedServer(cfg.StoreDir)
		if err != nil {
			return store.Stores{}, nil, err
		}
		url = ns.ClientURL()
		cleanup = func() {
			ns.Shutdown()
			ns.WaitForShutdown()
		}
		logger.Info("embedded jetstream started", "store_dir", cfg.StoreDir)
	}

	nc, err := nats.Connect(url,
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		cleanup()
		return store.Stores{}, nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		cleanup()
		return store.Stores{}, nil, err
	}
	kv, err := store.NewNATSKV(ctx, js, cfg.Buckets)
	if err != nil {
		nc.Close()
		cleanup()
		return store.Stores{}, nil, err
	}

	closeAll := cleanup

	return kv.Stores(), func() {
		nc.Close()
		closeAll()
	}, nil
}

func startEmbeddedServer(storeDir string) (*natsserver.Server, error) {
	ns, err := natsserver.NewServer(&natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  storeDir,
		NoLog:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedded nats server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready")
	}

	return ns, nil
}
