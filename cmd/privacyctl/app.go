package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"reviewprivacy/internal/platform/config"
	"reviewprivacy/internal/platform/httpserver"
	platformkafka "reviewprivacy/internal/platform/kafka"
	"reviewprivacy/internal/platform/logger"
	"reviewprivacy/internal/platform/metrics"
	"reviewprivacy/internal/platform/postgres"
	"reviewprivacy/internal/platform/redis"
	"reviewprivacy/internal/platform/tracing"
	"reviewprivacy/internal/privacy/registry"
	"reviewprivacy/internal/privacy/service"
	"reviewprivacy/internal/products"
	"reviewprivacy/internal/reviews/cache"
	"reviewprivacy/internal/reviews/store"
	audit "reviewprivacy/pkg/platform/audit"
	kafkapublisher "reviewprivacy/pkg/platform/audit/publishers/kafka"
	"reviewprivacy/pkg/platform/audit/publishers/ops"
	auditmemory "reviewprivacy/pkg/platform/audit/store/memory"
	"reviewprivacy/pkg/platform/privacy"
)

// runApp wires the infrastructure from the environment and runs the job. The
// ops server, when configured, lives as long as the job.
func runApp(ctx context.Context, logOut io.Writer, j job) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(logOut, cfg.Log.Level, cfg.Log.Format)

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(cfg.Postgres.DSN, log); err != nil {
			return err
		}
	}
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	publisher, err := newAuditPublisher(ctx, cfg.Kafka, log, promRegistry)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc, err := newService(cfg, db, redisClient, publisher, m, log)
	if err != nil {
		return err
	}
	hostRegistry := registry.New()
	if err := svc.Register(hostRegistry); err != nil {
		return err
	}
	runner := registry.NewRunner(hostRegistry,
		registry.WithMaxPages(cfg.Privacy.MaxPages),
		registry.WithMaxSweeps(cfg.Privacy.MaxSweeps),
		registry.WithLogger(log),
	)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	g, gctx := errgroup.WithContext(runCtx)

	if cfg.Ops.Addr != "" {
		checks := map[string]httpserver.Check{"postgres": db.PingContext}
		if redisClient != nil {
			checks["redis"] = redisClient.Health
		}
		srv := httpserver.New(cfg.Ops.Addr, httpserver.Router(promRegistry, checks))
		g.Go(func() error {
			return httpserver.Serve(gctx, srv, log)
		})
	}
	g.Go(func() error {
		defer cancelRun()
		return j.run(gctx, runner, log)
	})
	return g.Wait()
}

func newService(cfg config.Config, db *sql.DB, redisClient *redis.Client, publisher audit.Publisher, m *metrics.Metrics, log *slog.Logger) (*service.Service, error) {
	masker, err := newMasker(cfg.Privacy)
	if err != nil {
		return nil, err
	}

	var invalidator service.CacheInvalidator = cache.Noop{}
	if redisClient != nil {
		invalidator = cache.NewRedis(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.CacheTTL)
	}

	resolver := products.NewResolver(
		products.NewPostgres(db),
		cfg.Privacy.ProductCacheSize,
		cfg.Privacy.ProductCacheTTL,
		products.WithMetrics(m),
	)

	return service.New(store.NewPostgres(db), resolver,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithMasker(masker),
		service.WithCacheInvalidator(invalidator),
		service.WithAuditPublisher(publisher),
		service.WithAnonymousAuthor(cfg.Privacy.AnonymousAuthor),
		service.WithCountBasedExportDone(cfg.Privacy.CountBasedExportDone),
	)
}

func newMasker(cfg config.Privacy) (privacy.Masker, error) {
	if cfg.Masker == config.MaskerHash {
		return privacy.NewHashMasker([]byte(cfg.MaskKey), 16)
	}
	return privacy.FixedMasker{}, nil
}

// newAuditPublisher publishes to Kafka behind a circuit breaker, or keeps events
// in memory when no brokers are configured.
func newAuditPublisher(ctx context.Context, cfg config.Kafka, log *slog.Logger, reg prometheus.Registerer) (audit.Publisher, error) {
	client, err := platformkafka.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("no kafka brokers configured, audit events kept in memory")
		return auditmemory.NewInMemoryStore(), nil
	}
	if cfg.EnsureTopic {
		if err := platformkafka.EnsureTopic(ctx, client, cfg.AuditTopic, cfg.Partitions); err != nil {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
	}
	sink := kafkapublisher.New(client, cfg.AuditTopic, kafkapublisher.WithCloser(client.Close))
	return ops.New(sink,
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics(reg)),
	), nil
}
