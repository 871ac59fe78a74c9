// Package main provides the portnorm-api server.
//
// It serves the port catalog over HTTP and, when NATS is configured, bridges
// raw schedule batches to normalised ones. Both run until SIGINT or SIGTERM.
//
// Usage:
//
//	portnorm-api [options]
//
// Options:
//
//	-config FILE        YAML config file (env: PORTNORM_CONFIG)
//	-addr ADDR          HTTP listen address (default: :8080, env: PORTNORM_ADDR)
//	-auth               Enable API key authentication
//	-api-keys KEYS      Comma-separated list of valid API keys
//	-create-schema      Create database tables on startup
//
// API Endpoints:
//
//	GET  /api/v1/health
//	GET  /api/v1/ports[?region=R]
//	GET  /api/v1/ports/resolve?q=TEXT[&trace=1]
//	GET  /api/v1/ports/unresolved[?limit=N]
//	POST /api/v1/ports/standardize      {"ports": [...]}
//	POST /api/v1/ports/sort             {"ports": [...]}
//	GET  /api/v1/regions
//	POST /api/v1/regions/sort           {"regions": [...]}
//	POST /api/v1/sailings/dedupe        {"records": [...]}
//	GET  /metrics
//
// Feed:
//
//	Subscribes to nats.subject (schedule.raw) with queue nats.queue and
//	publishes normalised batches to nats.out_subject (schedule.normalized).
//	Enabled storage backends receive every batch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"shipping_schedule/internal/api"
	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/config"
	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/feed"
	"shipping_schedule/internal/logging"
	"shipping_schedule/internal/metrics"
	"shipping_schedule/internal/resolver"
	"shipping_schedule/internal/storage"
)

func main() {
	configPath := flag.String("config", envOrDefault("PORTNORM_CONFIG", ""), "YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	authEnabled := flag.Bool("auth", false, "Enable API key authentication")
	apiKeys := flag.String("api-keys", envOrDefault("PORTNORM_API_KEYS", ""), "Comma-separated list of valid API keys (when auth enabled)")
	createSchema := flag.Bool("create-schema", false, "Create database tables on startup")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in environment: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.API.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, options{
		authEnabled:  *authEnabled,
		apiKeys:      splitKeys(*apiKeys),
		createSchema: *createSchema,
	}); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

type options struct {
	authEnabled  bool
	apiKeys      []string
	createSchema bool
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, opts options) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Databases.
	db, err := storage.Open(ctx, storage.Config{
		ClickHouse: cfg.ClickHouseConfig(),
		Postgres:   cfg.PostgresConfig(),
	}, cfg.Storage.ClickHouse.Enabled, cfg.Storage.Postgres.Enabled)
	if err != nil {
		return err
	}
	defer db.Close()
	if opts.createSchema {
		if err := db.CreateSchemas(ctx); err != nil {
			return err
		}
	}

	var report *storage.ReportDB
	if cfg.Storage.SQLitePath != "" {
		report, err = storage.OpenReport(cfg.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite report: %w", err)
		}
		defer report.Close()
	}

	// Catalog.
	var src catalog.Source
	switch cfg.Asset.Source {
	case config.AssetFile:
		src = catalog.FileSource{Path: cfg.Asset.Path}
	case config.AssetPostgres:
		src = storage.PostgresSource{DB: db.PG}
	default:
		src = catalog.DefaultSource()
	}
	loader := catalog.NewLoader(src,
		catalog.WithLogger(logger),
		catalog.WithBuildOptions(cfg.BuildOptions()),
	)
	m.SetCatalog(loader.Load(ctx))

	res := resolver.New(loader, resolver.WithLogger(logger), resolver.WithObserver(m))
	d := dedup.New(res, dedup.WithLogger(logger), dedup.WithObserver(m))

	server := api.NewServer(res, api.Config{
		AuthEnabled:    opts.authEnabled,
		APIKeys:        opts.apiKeys,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Dedup:          d,
		Report:         report,
		Gatherer:       reg,
		Logger:         logger,
	})
	httpServer := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("portnorm API starting", "addr", cfg.API.Addr, "auth", opts.authEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.NATS.Enabled {
		var sinks []feed.Sink
		if db.PG != nil {
			sinks = append(sinks, feed.PostgresSink{DB: db.PG})
		}
		if db.CH != nil {
			sinks = append(sinks, feed.ClickHouseSink{DB: db.CH})
		}
		if report != nil {
			sinks = append(sinks, feed.ReportSink{DB: report})
		}
		proc := feed.NewProcessor(res, d,
			feed.WithSinks(sinks...),
			feed.WithMetrics(m),
			feed.WithLogger(logger),
		)

		nc, err := feed.Connect(cfg.NATS.URL, "portnorm-api", logger)
		if err != nil {
			return err
		}
		defer nc.Close()

		bridge := feed.NewBridge(nc, feed.Subjects{
			In:    cfg.NATS.Subject,
			Out:   cfg.NATS.OutSubject,
			Queue: cfg.NATS.Queue,
		}, proc, logger)
		g.Go(func() error {
			return bridge.Run(ctx)
		})
	}

	return g.Wait()
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
