package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/config"
	"shipping_schedule/internal/logging"
	"shipping_schedule/internal/resolver"
	"shipping_schedule/internal/storage"
)

// common holds the flags every subcommand accepts.
type common struct {
	configPath *string
	assetPath  *string
	logLevel   *string
}

func addCommon(fs *flag.FlagSet) *common {
	return &common{
		configPath: fs.String("config", envOrDefault("PORTNORM_CONFIG", ""), "YAML config file"),
		assetPath:  fs.String("asset", "", "Alias asset file (default: embedded asset)"),
		logLevel:   fs.String("log-level", "", "Log level (debug, info, warn, error)"),
	}
}

// env is a loaded configuration with its logger and catalog.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	loader   *catalog.Loader
	resolver *resolver.Resolver
	pg       *storage.PostgresDB
}

func (e *env) Close() {
	if e.pg != nil {
		e.pg.Close()
	}
}

// setup loads configuration and the catalog. Configuration errors are fatal.
func (c *common) setup(ctx context.Context) *env {
	cfg := config.Default()
	if *c.configPath != "" {
		loaded, err := config.Load(*c.configPath)
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
	if *c.assetPath != "" {
		cfg.Asset.Source = config.AssetFile
		cfg.Asset.Path = *c.assetPath
	}
	if *c.logLevel != "" {
		cfg.Log.Level = *c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	e := &env{
		cfg:    cfg,
		logger: logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format),
	}

	src, err := e.source(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening alias source: %v\n", err)
		os.Exit(1)
	}

	e.loader = catalog.NewLoader(src,
		catalog.WithLogger(e.logger),
		catalog.WithBuildOptions(cfg.BuildOptions()),
	)
	e.loader.Load(ctx)
	e.resolver = resolver.New(e.loader, resolver.WithLogger(e.logger))
	return e
}

func (e *env) source(ctx context.Context) (catalog.Source, error) {
	switch e.cfg.Asset.Source {
	case config.AssetFile:
		return catalog.FileSource{Path: e.cfg.Asset.Path}, nil
	case config.AssetPostgres:
		pg, err := e.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return storage.PostgresSource{DB: pg}, nil
	default:
		return catalog.DefaultSource(), nil
	}
}

// postgres opens the configured PostgreSQL database once.
func (e *env) postgres(ctx context.Context) (*storage.PostgresDB, error) {
	if e.pg != nil {
		return e.pg, nil
	}
	pg, err := storage.OpenPostgres(ctx, e.cfg.PostgresConfig())
	if err != nil {
		return nil, err
	}
	e.pg = pg
	return pg, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
