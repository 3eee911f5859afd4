// Package app собирает сервис витрины: хранилище, сервисы, gRPC, REST и фоновые воркеры.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/cart"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	grpcsvc "github.com/vladislavdragonenkov/storefront/internal/service/grpc"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
	"github.com/vladislavdragonenkov/storefront/internal/transport/rest"
	"github.com/vladislavdragonenkov/storefront/internal/version"
	storefrontv1 "github.com/vladislavdragonenkov/storefront/proto/storefront/v1"
)

// server — собранный экземпляр сервиса с уже открытыми listener'ами.
type server struct {
	cfg    Config
	logger *log.Entry
	deps   *runtimeDependencies

	grpcServer   *grpc.Server
	grpcHealth   *health.Server
	restServer   *http.Server
	metricsSrv   *http.Server
	grpcLis      net.Listener
	restLis      net.Listener
	metricsLis   net.Listener
	outboxRelay  *outbox.Relay
	purger       *idempotency.Purger
	consumer     *kafka.Consumer
}

// Run запускает сервис и блокируется до отмены ctx или падения одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	root, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	logger := root.WithField("component", "app")

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return srv.serve(ctx)
}

func newServer(ctx context.Context, cfg Config, logger *log.Entry) (_ *server, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	s := &server{cfg: cfg, logger: logger, deps: deps}
	defer func() {
		if err != nil {
			s.closeListeners()
			_ = deps.close()
		}
	}()

	workflowMetrics := metrics.NewWorkflowMetrics()
	guard := idempotency.NewGuard(deps.idempotencyRepo, cfg.IdempotencyTTL, logger.WithField("component", "idempotency"))

	catalogOpts := []catalog.Option{
		catalog.WithLogger(logger.WithField("component", "catalog")),
		catalog.WithMetrics(workflowMetrics),
	}
	workflowOpts := []workflow.Option{
		workflow.WithLogger(logger.WithField("component", "workflow")),
		workflow.WithMetrics(workflowMetrics),
		workflow.WithRestockOnCancel(cfg.RestockOnCancel),
	}
	if deps.productCache != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(deps.productCache))
		workflowOpts = append(workflowOpts, workflow.WithProductCache(deps.productCache))
	}
	catalogSvc := catalog.New(deps.store, catalogOpts...)
	cartSvc := cart.New(deps.store, cart.WithLogger(logger.WithField("component", "cart")))
	workflowSvc := workflow.New(deps.store, workflowOpts...)

	s.grpcServer, s.grpcHealth = newGRPCServer(workflowSvc, guard, logger)

	restOpts := []rest.Option{
		rest.WithLogger(logger.WithField("component", "rest")),
		rest.WithIdempotency(guard),
		rest.WithRequestTimeout(cfg.RequestTimeout),
	}
	if cfg.PlaceRateLimit > 0 {
		restOpts = append(restOpts, rest.WithPlaceRateLimit(rate.NewLimiter(rate.Limit(cfg.PlaceRateLimit), cfg.PlaceRateBurst)))
	}
	s.restServer = &http.Server{
		Handler:           rest.NewHandler(catalogSvc, cartSvc, workflowSvc, restOpts...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthHandler := healthcheck.NewHandler(version.Version())
	for name, checker := range deps.checkers {
		healthHandler.RegisterChecker(name, checker)
	}
	s.metricsSrv = &http.Server{Handler: newMetricsMux(healthHandler), ReadHeaderTimeout: 5 * time.Second}

	backgroundMetrics := metrics.NewBackgroundMetrics()
	s.outboxRelay = newOutboxRelay(cfg, deps, backgroundMetrics, logger)
	if deps.purger != nil {
		s.purger = idempotency.NewPurger(deps.purger, idempotency.PurgeConfig{
			Interval:   cfg.IdempotencyCleanupInterval,
			BatchSize:  cfg.IdempotencyCleanupBatchSize,
			MaxBatches: cfg.IdempotencyCleanupMaxBatch,
		}, backgroundMetrics, logger.WithField("component", "idempotency-purger"))
	}
	s.consumer, _ = initCacheInvalidationConsumer(cfg, deps.productCache, deps.kafkaProducer, logger)

	if s.grpcLis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
		return nil, err
	}
	if s.restLis, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
		return nil, err
	}
	if s.metricsLis, err = net.Listen("tcp", cfg.MetricsAddr); err != nil {
		return nil, err
	}
	return s, nil
}

func newGRPCServer(workflowSvc *workflow.Service, guard *idempotency.Guard, logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	storefrontv1.RegisterOrderWorkflowServer(grpcServer, grpcsvc.NewOrderService(workflowSvc, guard, logger.WithField("layer", "grpc")))
	grpcMetrics.InitializeMetrics(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcsvc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return grpcServer, healthServer
}

func newOutboxRelay(cfg Config, deps *runtimeDependencies, m *metrics.BackgroundMetrics, logger *log.Entry) *outbox.Relay {
	relayLogger := logger.WithField("component", "outbox-relay")
	relayCfg := outbox.DefaultRelayConfig()
	relayCfg.PollInterval = cfg.OutboxPollInterval
	relayCfg.BatchSize = cfg.OutboxBatchSize
	relayCfg.Retry.MaxAttempts = cfg.OutboxMaxAttempts
	relayCfg.Retry.InitialDelay = cfg.OutboxRetryDelay

	var publisher domain.OutboxPublisher = logPublisher{logger: relayLogger}
	opts := []outbox.RelayOption{outbox.WithLogger(relayLogger), outbox.WithMetrics(m)}
	if deps.kafkaProducer != nil {
		publisher = kafka.NewOutboxPublisher(deps.kafkaProducer, cfg.KafkaTopic)
		opts = append(opts, outbox.WithDeadLetters(kafka.NewOutboxPublisher(deps.kafkaProducer, kafka.TopicDeadLetterQueue)))
	}
	return outbox.NewRelay(deps.store.Outbox(), publisher, relayCfg, opts...)
}

// newMetricsMux отдаёт /metrics и пробы здоровья.
func newMetricsMux(healthHandler *healthcheck.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	return mux
}

func (s *server) serve(ctx context.Context) error {
	defer func() {
		if err := s.deps.close(); err != nil {
			s.logger.WithError(err).Warn("failed to release dependencies")
		}
	}()

	s.logger.WithFields(version.Fields()).WithFields(log.Fields{
		"grpc_addr":    s.grpcLis.Addr().String(),
		"http_addr":    s.restLis.Addr().String(),
		"metrics_addr": s.metricsLis.Addr().String(),
		"storage":      s.cfg.StorageDriver,
	}).Info("storefront started")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.grpcServer.Serve(s.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error { return serveHTTP(s.restServer, s.restLis) })
	g.Go(func() error { return serveHTTP(s.metricsSrv, s.metricsLis) })
	g.Go(func() error {
		s.outboxRelay.Run(gctx)
		return nil
	})
	if s.purger != nil {
		g.Go(func() error {
			s.purger.Run(gctx)
			return nil
		})
	}
	if s.consumer != nil {
		s.consumer.Start(gctx)
	}

	g.Go(func() error {
		<-gctx.Done()
		s.shutdown()
		return ctx.Err()
	})

	return g.Wait()
}

func serveHTTP(srv *http.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdown останавливает приём запросов: сначала gRPC и REST, затем метрики и consumer.
func (s *server) shutdown() {
	s.logger.Info("получен сигнал остановки, останавливаем серверы")
	s.grpcHealth.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(s.cfg.ShutdownTimeout):
		s.logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		s.grpcServer.Stop()
	}

	shutdownHTTP(s.restServer, s.cfg.ShutdownTimeout, s.logger)
	shutdownHTTP(s.metricsSrv, s.cfg.ShutdownTimeout, s.logger)

	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			s.logger.WithError(err).Warn("failed to stop kafka consumer")
		}
	}
}

func (s *server) closeListeners() {
	for _, lis := range []net.Listener{s.grpcLis, s.restLis, s.metricsLis} {
		if lis != nil {
			_ = lis.Close()
		}
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
