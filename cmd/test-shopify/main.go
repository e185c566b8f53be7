package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/service"
	"github.com/saadsaiyed/pdf-to-shopify/internal/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing Shopify connection...\n\n")
	fmt.Printf("Shop Domain: %s\n", cfg.Shopify.ShopDomain)
	fmt.Printf("API Version: %s\n", cfg.Shopify.APIVersion)
	fmt.Printf("Access Token: %s...%s\n",
		cfg.Shopify.AccessToken[:min(10, len(cfg.Shopify.AccessToken))],
		cfg.Shopify.AccessToken[max(0, len(cfg.Shopify.AccessToken)-4):])
	fmt.Println()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gateway := service.NewShopifyGateway(shopify.NewClient(cfg.Shopify, logger), logger)

	name, err := gateway.ShopName(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Connection failed: %v\n\n", err)
		fmt.Println("Please check:")
		fmt.Println("  1. SHOPIFY_SHOP_DOMAIN format: should be 'store-name.myshopify.com' (no https://)")
		fmt.Println("  2. SHOPIFY_ACCESS_TOKEN: should start with 'shpat_' and be the full token")
		fmt.Println("  3. Token permissions: needs read_products, read_customers and write_draft_orders")
		os.Exit(1)
	}

	fmt.Println("✅ Connection successful!")
	fmt.Printf("Shop name: %s\n", name)
	if cfg.Order.DefaultCustomerID == "" {
		fmt.Println("⚠️  DEFAULT_CUSTOMER_ID is not set; submissions for unknown customers will be rejected")
	}
}
