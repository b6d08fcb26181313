package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"healx/internal/batch"
	batchmetrics "healx/internal/batch/metrics"
	batchservice "healx/internal/batch/service"
	"healx/internal/batch/store"
	"healx/internal/distribution"
	distmetrics "healx/internal/distribution/metrics"
	distservice "healx/internal/distribution/service"
	"healx/internal/identity"
	identitymetrics "healx/internal/identity/metrics"
	identityservice "healx/internal/identity/service"
	identitystore "healx/internal/identity/store"
	jwttoken "healx/internal/jwt_token"
	"healx/internal/platform/config"
	"healx/internal/platform/httpserver"
	"healx/internal/platform/kafka"
	"healx/internal/platform/logger"
	httpmetrics "healx/internal/platform/metrics"
	"healx/internal/platform/postgres"
	"healx/internal/platform/redis"
	"healx/internal/provenance"
	"healx/internal/ratelimit"
	ratelimitmetrics "healx/internal/ratelimit/metrics"
	"healx/internal/review"
	reviewmetrics "healx/internal/review/metrics"
	reviewservice "healx/internal/review/service"
	httptransport "healx/internal/transport/http"
	"healx/internal/verification"
	verificationmetrics "healx/internal/verification/metrics"
	verificationservice "healx/internal/verification/service"
	"healx/pkg/platform/audit"
	"healx/pkg/platform/audit/publisher"
	"healx/pkg/platform/audit/publishers/failover"
	kafkasink "healx/pkg/platform/audit/publishers/kafka"
	logsink "healx/pkg/platform/audit/publishers/logger"
	auditpostgres "healx/pkg/platform/audit/store/postgres"
	"healx/pkg/platform/circuit"
)

const (
	jwtIssuer       = "healx"
	auditBufferSize = 1024
	topicPartitions = 3
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// lifecycleStore is satisfied by both batch store implementations.
type lifecycleStore interface {
	batchservice.BatchStore
	reviewservice.Store
	distservice.Store
	verificationservice.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDevSigningKey() {
		log.Warn("JWT_SIGNING_KEY is not set; using the development key")
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	checks := map[string]httptransport.HealthCheck{}

	var (
		lifecycle lifecycleStore
		profiles  identityservice.Store
		db        *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(startCtx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(startCtx, db); err != nil {
			return err
		}
		lifecycle = store.NewPostgres(db)
		profiles = identitystore.NewPostgres(db)
		checks["postgres"] = db.PingContext
		log.Info("using postgres stores")
	} else {
		lifecycle = store.NewInMemoryStore()
		profiles = identitystore.NewInMemoryStore()
		log.Warn("DATABASE_URL is not set; state is kept in memory")
	}

	var (
		guard    provenance.ReplayGuard
		counters ratelimit.Store
	)
	redisClient, err := redis.New(startCtx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		guard = provenance.NewRedisReplayGuard(redisClient.Client, cfg.Redis.MarkerTTL)
		counters = ratelimit.NewRedisStore(redisClient.Client)
		checks["redis"] = redisClient.Health
	} else {
		guard = provenance.NewMemoryReplayGuard(cfg.Redis.MarkerTTL)
		counters = ratelimit.NewInMemoryStore()
	}
	limiter := ratelimit.New(counters, map[ratelimit.Class]ratelimit.Rule{
		ratelimit.ClassVerify: {Limit: cfg.RateLimit.VerifyPerMinute, Window: time.Minute},
		ratelimit.ClassAuth:   {Limit: cfg.RateLimit.AuthPerMinute, Window: time.Minute},
	}, log,
		ratelimit.WithMetrics(ratelimitmetrics.New()),
		ratelimit.WithDisabled(cfg.RateLimit.Disabled))

	signer, err := newSigner(cfg.SignerSeed)
	if err != nil {
		return err
	}
	if cfg.SignerSeed == "" {
		log.Warn("SIGNER_SEED is not set; markers are minted with a throwaway key",
			"notary", signer.Address())
	}
	attestor := provenance.NewAttestor(provenance.NewNotary(signer, signer.Address()), guard)

	sink, closeSink, err := newLifecycleSink(startCtx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeSink()
	events := publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithAppendTimeout(cfg.Kafka.DeliveryTimeout),
		publisher.WithLogger(log))
	defer events.Close()

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer)

	batches := batch.NewService(lifecycle, attestor,
		batchservice.WithLogger(log),
		batchservice.WithAuditPublisher(events),
		batchservice.WithMetrics(batchmetrics.New()),
		batchservice.WithDateOrder(cfg.Lifecycle.EnforceDateOrder))
	reviews := review.NewService(lifecycle, attestor,
		reviewservice.WithLogger(log),
		reviewservice.WithAuditPublisher(events),
		reviewservice.WithMetrics(reviewmetrics.New()),
		reviewservice.WithDefaultComplianceScore(cfg.Lifecycle.DefaultComplianceScore))
	ledger := distribution.NewService(lifecycle, attestor,
		distservice.WithLogger(log),
		distservice.WithAuditPublisher(events),
		distservice.WithMetrics(distmetrics.New()),
		distservice.WithChainContinuity(cfg.Lifecycle.EnforceTransferChain))
	verifier := verification.NewService(lifecycle,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(events),
		verificationservice.WithMetrics(verificationmetrics.New()))
	identities := identity.NewService(profiles, tokens,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(events),
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithSessionTTL(cfg.SessionTTL))

	router := httptransport.NewRouter(httptransport.Config{
		Logger:           log,
		Sessions:         jwttoken.NewSessionValidatorAdapter(tokens),
		TrustedProxyHops: cfg.TrustedProxyHops,
		Metrics:          httpmetrics.New(),
		RateLimiter:      limiter,
		Identity:         identity.NewHandler(identities, log),
		Public: []httptransport.Routes{
			verification.NewHandler(verifier, log),
		},
		Protected: []httptransport.Routes{
			batch.NewHandler(batches, log),
			review.NewHandler(reviews, log),
			distribution.NewHandler(ledger, log),
		},
		HealthChecks: checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting healx", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newSigner(seed string) (*provenance.LocalSigner, error) {
	if seed == "" {
		return provenance.GenerateLocalSigner()
	}
	signer, err := provenance.NewLocalSigner(seed)
	if err != nil {
		return nil, fmt.Errorf("SIGNER_SEED: %w", err)
	}
	return signer, nil
}

// newLifecycleSink builds the event sink: Kafka behind a circuit breaker with
// the log sink as fallback, and the lifecycle_events table when a database is
// configured.
func newLifecycleSink(ctx context.Context, cfg config.Server, db *sql.DB, log *slog.Logger) (audit.Store, func(), error) {
	var sink audit.Store = logsink.NewSink(log)
	closer := func() {}

	client, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if client != nil {
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, topicPartitions); err != nil {
			client.Close()
			return nil, nil, err
		}
		sink = failover.NewSink(
			kafkasink.NewSink(client, cfg.Kafka.Topic),
			sink,
			circuit.New("kafka-lifecycle"),
			log,
		)
		closer = client.Close
		log.Info("lifecycle events published to kafka", "topic", cfg.Kafka.Topic)
	}

	if db != nil {
		sink = failover.Fanout{auditpostgres.New(db), sink}
	}
	return sink, closer, nil
}
