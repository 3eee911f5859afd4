package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/resilience"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
	"github.com/vladislavdragonenkov/storefront/internal/storage/redisstore"
)

const (
	cacheBreakerFailures = 5
	cacheBreakerReset    = 10 * time.Second
)

// startupRetry переживает медленный старт postgres рядом с сервисом.
var startupRetry = resilience.DefaultRetryConfig()

// runtimeDependencies — хранилища и клиенты внешних систем одного запуска.
type runtimeDependencies struct {
	store           domain.Store
	idempotencyRepo domain.IdempotencyRepository
	// purger задан, когда просроченные ключи идемпотентности надо чистить самим (без Redis TTL).
	purger         idempotency.ExpiredPurger
	sqlIdempotency *postgres.IdempotencyRepository
	productCache   domain.ProductCache
	redisClient    *redis.Client
	kafkaProducer  *kafka.Producer
	checkers       map[string]health.Checker
	closers        []func() error
}

// initRuntimeDependencies открывает хранилище, Redis и Kafka согласно cfg.
// Redis и Kafka необязательны: их недоступность понижает сервис до degraded.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	deps := &runtimeDependencies{checkers: make(map[string]health.Checker)}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		deps.store = memory.NewStore()
		deps.checkers["storage"] = health.NewSimpleChecker("storage", func(context.Context) error { return nil })
		logger.Info("using in-memory storage")
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires SF_POSTGRES_DSN")
		}
		var store *postgres.Store
		err := resilience.Retry(ctx, startupRetry, "open postgres", logger, func(ctx context.Context) error {
			var openErr error
			store, openErr = postgres.Open(ctx, cfg.PostgresDSN)
			return openErr
		})
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, store.Close)
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = deps.close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		deps.store = store
		deps.sqlIdempotency = postgres.NewIdempotencyRepository(store)
		deps.checkers["storage"] = health.NewSimpleChecker("storage", store.Ping)
		logger.Info("using postgres storage")
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	deps.initRedis(ctx, cfg, logger)
	switch {
	case deps.idempotencyRepo != nil:
	case deps.sqlIdempotency != nil:
		deps.idempotencyRepo = deps.sqlIdempotency
		deps.purger = deps.sqlIdempotency
	default:
		repo := memory.NewIdempotencyRepository()
		deps.idempotencyRepo = repo
		deps.purger = repo
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaClientID, logger)
		if err == nil {
			deps.kafkaProducer = producer
			deps.closers = append(deps.closers, func() error {
				closeKafka(producer, logger)
				return nil
			})
		}
	}

	return deps, nil
}

func (d *runtimeDependencies) initRedis(ctx context.Context, cfg Config, logger *log.Entry) {
	if cfg.RedisAddr == "" {
		return
	}
	client, err := redisstore.NewClient(ctx, redisstore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, continuing without product cache")
		return
	}

	d.redisClient = client
	breaker := resilience.NewCircuitBreaker("redis-product-cache", cacheBreakerFailures, cacheBreakerReset, logger)
	d.productCache = resilience.NewGuardedCache(redisstore.NewProductCache(client, cfg.ProductCacheTTL), breaker)
	d.idempotencyRepo = redisstore.NewIdempotencyRepository(client)
	d.closers = append(d.closers, client.Close)
	d.checkers["redis"] = health.DegradedChecker{Checker: health.NewSimpleChecker("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})}
	logger.WithField("addr", cfg.RedisAddr).Info("redis product cache enabled")
}

// close освобождает ресурсы в порядке, обратном открытию.
func (d *runtimeDependencies) close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// logPublisher замещает Kafka, когда брокеры не настроены: outbox не копится без конца.
type logPublisher struct {
	logger *log.Entry
}

func (p logPublisher) Publish(event domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID,
		"created_at":   event.CreatedAt.Format(time.RFC3339),
	}).Info("outbox event")
	return nil
}
