package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/postgres"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/redis"
	"github.com/saadsaiyed/pdf-to-shopify/internal/service"
	"github.com/saadsaiyed/pdf-to-shopify/internal/shopify"
)

// Runs one catalog sync in the foreground and prints the report.
// Usage: go run ./cmd/sync-catalog
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	// Share the server's lock when Redis is configured so the two never overlap
	var locker service.SyncLocker = redis.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to redis: %v\n", err)
			os.Exit(1)
		}
		defer rdb.Close()
		locker = redis.NewLocker(rdb)
	}

	client := shopify.NewClient(cfg.Shopify, logger)
	gateway := service.NewShopifyGateway(client, logger)
	syncSvc := service.NewSyncService(gateway, client, repos, locker, cfg.Sync, logger)

	fmt.Printf("Syncing catalog from %s (poll every %s, at most %d polls)...\n\n",
		cfg.Shopify.ShopDomain, cfg.Sync.PollInterval, cfg.Sync.MaxPolls)

	report, err := syncSvc.RunSync(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Sync failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println("✅ Sync completed")
	fmt.Println(string(out))
}
