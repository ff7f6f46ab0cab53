//go:generate swag init -g cmd/ledger_backend/main.go -o cmd/docs -d ../../

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/mfg_ledger/internal/adapters/cache"
	"github.com/SscSPs/mfg_ledger/internal/adapters/events"
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/core/services"
	"github.com/SscSPs/mfg_ledger/internal/handlers"
	"github.com/SscSPs/mfg_ledger/internal/middleware"
	"github.com/SscSPs/mfg_ledger/internal/platform/config"
	"github.com/SscSPs/mfg_ledger/internal/platform/database"
	"github.com/SscSPs/mfg_ledger/internal/platform/metrics"
	"github.com/SscSPs/mfg_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/mfg_ledger/internal/repositories/memory"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// @title Manufacturing Ledger API
// @version 1.0
// @description Accounts, transactions, receivables, payables, payroll and reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx := context.Background()

	repos, pool, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(pool, logger)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder("ledger")
	if err := recorder.Register(registry); err != nil {
		logger.Error("Failed to register metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// reports and rate limiting fall back to in-process operation
			logger.Warn("Redis unavailable, continuing without it", slog.String("error", err.Error()))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var reportCache portssvc.ReportCache
	publisher := portssvc.EventPublisher(events.LogPublisher{Logger: logger})
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, recorder)
		if err != nil {
			logger.Error("Failed to connect to message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = events.FanOut{publisher, amqpPublisher}
	}
	if redisClient != nil {
		redisCache := cache.NewRedisReportCache(redisClient,
			cache.WithTTL(cfg.ReportCacheTTL),
			cache.WithKeyPrefix("ledger:reports:"),
			cache.WithMetrics(recorder),
			cache.WithLogger(logger),
		)
		reportCache = redisCache
		publisher = cache.NewInvalidatingPublisher(redisCache, publisher, logger)
	}

	container := services.NewServiceContainer(cfg, repos, reportCache,
		services.WithEventPublisher(publisher),
		services.WithMetrics(recorder),
	)

	rateLimiter, err := newRateLimiter(cfg, redisClient)
	if err != nil {
		logger.Error("Failed to initialize rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.MetricsMiddleware(recorder),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	if cfg.EnableDBCheck && pool != nil {
		r.GET("/ready", func(c *gin.Context) {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.String(http.StatusServiceUnavailable, "database unavailable")
				return
			}
			c.String(http.StatusOK, "OK")
		})
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-stopCtx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped gracefully")
}

// setupStorage returns the repositories for the configured driver. The pool is
// nil for in-memory storage.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, *pgxpool.Pool, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("Using in-memory storage")
		return memory.NewRepositoryProvider(memory.NewStore()), nil, nil
	}

	if cfg.RunMigrations {
		logger.Info("Running database migrations...")
		applied, err := database.RunMigrations(cfg.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		if applied {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(pool), pool, nil
}

// newRateLimiter shares limits across instances through Redis when it is
// available and keeps them per process otherwise.
func newRateLimiter(cfg *config.Config, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	if client != nil {
		store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "ledger:ratelimit"})
		if err != nil {
			return nil, err
		}
		return limiter.New(store, rate), nil
	}
	return limiter.New(limitermemory.NewStore(), rate), nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
