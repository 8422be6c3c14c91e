package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/nimson07/postFlow/internal/activity"
	"github.com/nimson07/postFlow/internal/auth"
	"github.com/nimson07/postFlow/internal/config"
	"github.com/nimson07/postFlow/internal/event"
	"github.com/nimson07/postFlow/internal/gate"
	handler "github.com/nimson07/postFlow/internal/handler/http"
	"github.com/nimson07/postFlow/internal/repository/postgres"
	"github.com/nimson07/postFlow/internal/service"
	"github.com/nimson07/postFlow/migrations"
	"github.com/nimson07/postFlow/pkg/breaker"
	"github.com/nimson07/postFlow/pkg/database"
	"github.com/nimson07/postFlow/pkg/health"
	pkgkafka "github.com/nimson07/postFlow/pkg/kafka"
	"github.com/nimson07/postFlow/pkg/middleware"
	"github.com/nimson07/postFlow/pkg/tracing"
)

// ServiceVersion is reported in traces.
const ServiceVersion = "0.1.0"

// App wires together all dependencies and runs the PostFlow API.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	tracker        activity.Tracker
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
	stopSweeper    context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.OTELEnabled,
		ServiceName:    handler.ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTELEndpoint,
		Insecure:       cfg.OTELInsecure,
		SampleRate:     cfg.OTELSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	if err := a.init(ctx); err != nil {
		a.closeResources()
		_ = tracerShutdown(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Activity store.
	if cfg.ActivityStore == config.ActivityStoreRedis {
		client, err := database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}
	a.tracker = a.newTracker()

	// Domain events.
	var events event.Publisher = event.Noop{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, breaker.New(breaker.DefaultConfig("kafka-events"), logger), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	userRepo := postgres.NewUserRepository(pool)
	postRepo := postgres.NewPostRepository(pool)

	authService := service.NewAuthService(userRepo, issuer, events, cfg.BcryptCost, logger)
	userService := service.NewUserService(userRepo, a.tracker, events, logger)
	postService := service.NewPostService(postRepo, events, logger)
	authGate := gate.New(issuer, a.tracker, userRepo, logger)

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		AuthService:       authService,
		UserService:       userService,
		PostService:       postService,
		Authorizer:        authGate,
		Health:            a.healthHandler(),
		Logger:            logger,
		CORS:              a.corsConfig(),
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return nil
}

// newTracker returns the Redis tracker when a Redis client is configured and
// the in-process tracker otherwise. The in-process tracker gets a sweeper
// when ACTIVITY_SWEEP_INTERVAL is positive.
func (a *App) newTracker() activity.Tracker {
	if a.redis != nil {
		return activity.NewRedisTracker(a.redis, a.cfg.InactivityWindow,
			activity.WithRedisTokenLifetime(a.cfg.JWTExpiry))
	}

	tracker := activity.NewMemoryTracker(a.cfg.InactivityWindow,
		activity.WithTokenLifetime(a.cfg.JWTExpiry))
	if a.cfg.ActivitySweepInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopSweeper = cancel
		go tracker.RunSweeper(ctx, a.cfg.ActivitySweepInterval, a.logger)
	}
	return tracker
}

func (a *App) healthHandler() *health.Handler {
	h := health.NewHandler()
	if a.pool != nil {
		pool := a.pool
		h.RegisterCritical("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}
	if a.redis != nil {
		client := a.redis
		h.RegisterNonCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		producer := a.producer
		h.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}
	return h
}

func (a *App) corsConfig() middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = a.cfg.CORSAllowedOrigins
	cors.Environment = a.cfg.Environment
	return cors
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Activity sweeper, Kafka producer, Redis and PostgreSQL
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	if a.httpServer != nil {
		httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer httpCancel()
		if err := a.httpServer.Shutdown(httpCtx); err != nil {
			a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	errs = append(errs, a.closeResources()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources releases everything opened after the tracer. It is safe to
// call on a partially initialized App.
func (a *App) closeResources() []error {
	var errs []error

	if a.stopSweeper != nil {
		a.stopSweeper()
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errs
}
