// Command searchd runs the long-lived search service: it loads (or builds)
// the corpus snapshot, serves boolean and ranked queries over HTTP, and
// coordinates cache invalidation with peers through Kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/LudwigAndreas/Infopoisk/internal/catalog"
	"github.com/LudwigAndreas/Infopoisk/internal/engine"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/cache"
	"github.com/LudwigAndreas/Infopoisk/internal/server"
	"github.com/LudwigAndreas/Infopoisk/pkg/config"
	"github.com/LudwigAndreas/Infopoisk/pkg/health"
	"github.com/LudwigAndreas/Infopoisk/pkg/kafka"
	"github.com/LudwigAndreas/Infopoisk/pkg/logger"
	"github.com/LudwigAndreas/Infopoisk/pkg/metrics"
	"github.com/LudwigAndreas/Infopoisk/pkg/postgres"
	pkgredis "github.com/LudwigAndreas/Infopoisk/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"corpus", cfg.Corpus.DataDir,
		"catalog_source", cfg.Catalog.Source,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	loadCatalog, closeCatalog, err := catalogLoader(cfg)
	if err != nil {
		slog.Error("catalog source unavailable", "error", err)
		os.Exit(1)
	}
	defer closeCatalog()

	deps := engine.Deps{Metrics: m}
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			deps.Cache = cache.New(redisClient, cfg.Redis)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer producer.Close()
		deps.Publisher = producer
	}

	eng := engine.New(cfg, loadCatalog, deps)
	if err := eng.Rebuild(ctx, cfg.Index.RebuildOnStart); err != nil {
		slog.Error("initial snapshot build failed", "error", err)
		os.Exit(1)
	}

	if cfg.Kafka.Enabled && deps.Cache != nil {
		// Peers publish to the cache-invalidate topic after their rebuilds.
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CacheInvalidate,
			func(ctx context.Context, key, value []byte) error {
				eng.InvalidateCache(ctx)
				return nil
			})
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("cache-invalidate consumer stopped", "error", err)
			}
		}()
	}

	checker := health.NewChecker()
	checker.Register("snapshot", func(ctx context.Context) health.ComponentHealth {
		if eng.Snapshot() == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "no snapshot"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if redisClient != nil {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	srv := server.New(cfg, eng, m, checker)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}
}

// catalogLoader selects the configured catalog source. The returned close
// function releases the Postgres pool when that source is active.
func catalogLoader(cfg *config.Config) (engine.CatalogLoader, func(), error) {
	switch cfg.Catalog.Source {
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		loader := func(ctx context.Context) (*catalog.Catalog, error) {
			return catalog.LoadPostgres(ctx, client.DB, cfg.Catalog.Table)
		}
		return loader, func() { client.Close() }, nil
	default:
		path := cfg.Corpus.CatalogFilePath()
		loader := func(ctx context.Context) (*catalog.Catalog, error) {
			return catalog.LoadFile(path)
		}
		return loader, func() {}, nil
	}
}
