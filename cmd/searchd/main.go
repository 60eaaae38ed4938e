package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kgoto/aliasearch/internal/corpus"
	"github.com/kgoto/aliasearch/internal/engine"
	"github.com/kgoto/aliasearch/internal/ingest"
	"github.com/kgoto/aliasearch/internal/server"
	"github.com/kgoto/aliasearch/internal/server/qcache"
	"github.com/kgoto/aliasearch/pkg/config"
	"github.com/kgoto/aliasearch/pkg/health"
	"github.com/kgoto/aliasearch/pkg/kafka"
	"github.com/kgoto/aliasearch/pkg/logger"
	"github.com/kgoto/aliasearch/pkg/metrics"
	"github.com/kgoto/aliasearch/pkg/postgres"
	pkgredis "github.com/kgoto/aliasearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting searchd",
		"port", cfg.Server.Port,
		"variant", cfg.Engine.Variant,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx := engine.New(engine.Options{
		Variant:        variantFromConfig(cfg.Engine.Variant),
		SplitWideSpace: cfg.Engine.SplitWideSpace,
		DefaultLimit:   cfg.Engine.DefaultLimit,
	})

	m := metrics.New()

	var queryCache *qcache.Cache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = qcache.New(redisClient, cfg.Redis, m)
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	store := server.NewStore(idx, queryCache, m)

	if cfg.Postgres.Enabled {
		pg, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		docs, err := corpus.Load(ctx, pg, cfg.Postgres.Table)
		if err != nil {
			pg.Close()
			slog.Error("corpus bootstrap failed", "error", err)
			os.Exit(1)
		}
		store.AddMany(ctx, docs)
		pg.Close()
		slog.Info("index bootstrapped", "documents", idx.Len(), "tokens", idx.Tokens())
	}

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.DocumentTopic, ingest.Handler(store))
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("document consumer stopped", "error", err)
			}
		}()
		slog.Info("document consumer started",
			"topic", cfg.Kafka.DocumentTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
	}

	checker := health.NewChecker()
	registerHealthChecks(checker, idx, redisClient, cfg.Redis.Enabled)

	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", metrics.Handler())
		metricsServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metricsMux,
		}
		go func() {
			slog.Info("metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
	}

	h := server.NewHandler(store, m, cfg.Engine.DefaultLimit, cfg.Engine.MaxResults)
	router := server.NewRouter(h, checker, m, cfg.Server.WriteTimeout)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("searchd listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("searchd stopped")
}

// registerHealthChecks wires the readiness probes. The redis check is only
// registered when Redis is enabled in config, so a deliberately cache-less
// deployment still reports ready.
func registerHealthChecks(checker *health.Checker, idx *engine.Index, redisClient *pkgredis.Client, redisEnabled bool) {
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents", idx.Len()),
		}
	})
	if !redisEnabled {
		return
	}
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "unavailable at startup"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
}

func variantFromConfig(name string) engine.Variant {
	if name == "scan" {
		return engine.VariantScan
	}
	return engine.VariantPostings
}
