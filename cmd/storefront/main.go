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

	"github.com/redis/go-redis/v9"

	"github.com/jz3el/luxemart-ecommerce/internal/auth"
	"github.com/jz3el/luxemart-ecommerce/internal/cache"
	"github.com/jz3el/luxemart-ecommerce/internal/config"
	h "github.com/jz3el/luxemart-ecommerce/internal/http"
	"github.com/jz3el/luxemart-ecommerce/internal/logger"
	"github.com/jz3el/luxemart-ecommerce/internal/publisher"
	"github.com/jz3el/luxemart-ecommerce/internal/repository"
	"github.com/jz3el/luxemart-ecommerce/internal/service"
	"github.com/jz3el/luxemart-ecommerce/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel))

	tracing, err := telemetry.Setup(context.Background(), telemetry.Config{
		ServiceName:  "storefront",
		Version:      version,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRatio:  cfg.TraceSampleRatio,
	})
	if err != nil {
		fatal("failed to set up tracing", err)
	}

	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		fatal("failed to connect to database", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		fatal("failed to run migrations", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fatal("redis connection failed", err)
	}
	slog.Info("redis ping succeeded", "addr", cfg.RedisAddr)

	productCache := cache.NewRedisCache(redisClient, cfg.ProductCacheTTL)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)

	handlers := h.Handlers{
		Auth:    h.NewAuthHandler(service.NewAccountService(repo, tokens), cfg.RequestTimeout),
		Catalog: h.NewCatalogHandler(service.NewCatalogService(repo, productCache), cfg.RequestTimeout),
		Cart:    h.NewCartHandler(service.NewCartService(repo), cfg.RequestTimeout),
		Orders:  h.NewOrdersHandler(service.NewOrderService(repo, productCache), cfg.RequestTimeout),
		Admin:   h.NewAdminHandler(service.NewAdminService(repo, repo), cfg.RequestTimeout),
	}

	writer := publisher.NewKafkaWriter(cfg.OutboxTopic, cfg.KafkaBrokers...)
	defer writer.Close()
	poller := publisher.NewOutboxPoller(repo, writer)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	router := h.NewRouter(h.RouterConfig{
		AllowedOrigins:     cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	}, handlers, tokens,
		repo,
		h.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	cancel()
	<-pollerDone
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to flush traces", "error", err)
	}
	slog.Info("storefront stopped")
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
