package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"
	"shareit/internal/seed"
	"shareit/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := initStore(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	bus := events.NewEventBus()
	metrics.ObserveEvents(bus)

	clock := domain.SystemClock{}
	deps := api.Dependencies{
		Users:    service.NewUserService(store, logging.Component(logger, "users")),
		Items:    service.NewItemService(store, bus, clock, logging.Component(logger, "items")),
		Bookings: service.NewBookingService(store, bus, clock, logging.Component(logger, "bookings")),
		Requests: service.NewRequestService(store, bus, clock, logging.Component(logger, "requests")),
		Clock:    clock,
	}
	if db != nil {
		deps.Ready = db.PingContext
	}

	if err := applySeed(ctx, cfg, deps, logger); err != nil {
		return err
	}

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	deps.RateLimiter = initRateLimiter(redisClient, logger)

	if db != nil {
		backup := database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup"))
		go backup.Start(ctx)
	}

	startMetrics(ctx, cfg, logger)

	httpServer := api.NewHTTPServer(cfg.API, deps, logger)
	return startServer(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, baseLogger, closer, nil
}

// initStore opens the configured storage. db is nil for the memory driver.
func initStore(cfg *config.Config, logger *zerolog.Logger) (domain.Store, *database.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil, nil
	}

	db, err := database.NewDB(cfg.Database.Path, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, nil, err
	}
	return db, db, nil
}

func applySeed(ctx context.Context, cfg *config.Config, deps api.Dependencies, logger *zerolog.Logger) error {
	if cfg.SeedPath == "" {
		return nil
	}

	data, err := seed.Load(cfg.SeedPath)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", cfg.SeedPath).Msg("load seed")
		return err
	}
	if _, err := seed.Apply(ctx, data, deps.Users, deps.Items, logger); err != nil {
		logger.Error().Err(err).Msg("apply seed")
		return err
	}
	return nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		// лимитер сам переключится на память и будет периодически пробовать redis
		logger.Warn().Err(err).Msg("redis connection failed, rate limiting starts in memory")
		return redisClient
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initRateLimiter(redisClient *redis.Client, logger *zerolog.Logger) domain.RateLimiter {
	memory := repository.NewMemoryRateLimiter()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverRateLimiter(
		repository.NewRedisRateLimiter(redisClient),
		memory,
		logging.Component(logger, "rate-limit"),
	)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("driver", cfg.Database.Driver).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
