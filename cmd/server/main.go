package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/api"
	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/extract"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/postgres"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/redis"
	"github.com/saadsaiyed/pdf-to-shopify/internal/service"
	"github.com/saadsaiyed/pdf-to-shopify/internal/shopify"
	"github.com/saadsaiyed/pdf-to-shopify/migrations"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting PDF purchase order server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("shop_domain", cfg.Shopify.ShopDomain),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(ctx, db, migrations.FS, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := postgres.NewRepositories(db, logger)

	// Sync lock and idempotency keys live in Redis when configured
	var locker service.SyncLocker
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = redis.NewLocker(rdb)
		logger.Info("Using redis locks", zap.String("addr", cfg.Redis.Addr))
	} else {
		locker = redis.NewLocalLocker()
		logger.Warn("REDIS_ADDR not set; sync lock and idempotency keys are process-local")
	}

	client := shopify.NewClient(cfg.Shopify, logger)
	gateway := service.NewShopifyGateway(client, logger)

	syncSvc := service.NewSyncService(gateway, client, repos, locker, cfg.Sync, logger)
	composer := service.NewOrderComposer(repos.Catalog, gateway, cfg.Order, logger)
	submissions := service.NewSubmissionService(gateway, composer, extract.NewExtractor(logger), repos, cfg.Order, logger)
	skus := service.NewSKUService(gateway, repos, logger)

	router := api.NewRouter(cfg, api.Services{
		Submissions: submissions,
		Catalog:     skus,
		Sync:        syncSvc,
		Idempotency: locker,
	}, logger)

	// Submissions make several Admin API round trips before responding
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	if cfg.Sync.Interval > 0 {
		go syncSvc.RunCatalogSyncLoop(ctx, cfg.Sync.Interval)
		logger.Info("Catalog sync job started", zap.Duration("interval", cfg.Sync.Interval))
	}

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newLogger picks the production or development preset and applies LOG_LEVEL
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = level
	return zapCfg.Build()
}
