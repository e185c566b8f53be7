package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/postgres"
	"github.com/saadsaiyed/pdf-to-shopify/internal/service"
	"github.com/saadsaiyed/pdf-to-shopify/internal/shopify"
)

// Looks a SKU up in the local catalog cache for the current shop and, with -live,
// compares it to the variant Shopify returns now.
// Usage: go run ./cmd/find-sku [-live] A.B-111
func main() {
	liveFlag := flag.Bool("live", false, "Also fetch the variant from Shopify")
	flag.Parse()

	sku := strings.TrimSpace(flag.Arg(0))
	if sku == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/find-sku [-live] <sku>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gateway := service.NewShopifyGateway(shopify.NewClient(cfg.Shopify, logger), logger)
	skus := service.NewSKUService(gateway, postgres.NewRepositories(db, logger), logger)

	entry, err := skus.LookupSKU(ctx, sku)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(entry, "", "  ")
	fmt.Println("Cached entry:")
	fmt.Println(string(out))

	if !*liveFlag {
		return
	}

	live, err := gateway.ProductVariant(ctx, entry.VariantID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Live lookup failed: %v\n", err)
		os.Exit(1)
	}
	if live == nil {
		fmt.Println("\n⚠️  Variant no longer exists in Shopify; run a catalog sync")
		return
	}

	fmt.Println("\nLive variant:")
	fmt.Printf("  Title:     %s\n", live.Title)
	fmt.Printf("  Price:     %s (cached %s)\n", live.Price.StringFixed(2), entry.Price.StringFixed(2))
	fmt.Printf("  Inventory: %d (cached %d)\n", live.InventoryQuantity, entry.InventoryQuantity)
	fmt.Printf("  Available: %t\n", live.AvailableForSale)
}
