package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/shopify"
)

// AccessScopesQuery lists the scopes granted to the installed app; it has no side effects
const AccessScopesQuery = `
query {
  currentAppInstallation {
    accessScopes {
      handle
    }
  }
}
`

// scopes the server needs, with what each one is used for
var requiredScopes = []struct {
	handle string
	usage  string
}{
	{"read_products", "catalog bulk export and live variant lookups"},
	{"read_customers", "matching the submitted customer name"},
	{"write_draft_orders", "creating the draft order"},
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := shopify.NewClient(cfg.Shopify, logger)

	fmt.Println("Checking API permissions...")

	resp, err := client.Execute(ctx, AccessScopesQuery, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to read access scopes: %v\n", err)
		os.Exit(1)
	}

	var result struct {
		CurrentAppInstallation struct {
			AccessScopes []struct {
				Handle string `json:"handle"`
			} `json:"accessScopes"`
		} `json:"currentAppInstallation"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Unexpected response: %v\n", err)
		os.Exit(1)
	}

	granted := make(map[string]bool)
	for _, s := range result.CurrentAppInstallation.AccessScopes {
		granted[s.Handle] = true
	}

	missing := 0
	for i, scope := range requiredScopes {
		// write_* implies read_* in Shopify's scope model
		ok := granted[scope.handle]
		if !ok && strings.HasPrefix(scope.handle, "read_") {
			ok = granted["write_"+strings.TrimPrefix(scope.handle, "read_")]
		}
		if ok {
			fmt.Printf("%d. ✅ %s (%s)\n", i+1, scope.handle, scope.usage)
		} else {
			fmt.Printf("%d. ❌ %s (%s)\n", i+1, scope.handle, scope.usage)
			missing++
		}
	}

	if missing == 0 {
		fmt.Println("\nAll required scopes are granted.")
		return
	}

	fmt.Println("\nTo add scopes:")
	fmt.Println("   1. Go to Shopify Admin → Settings → Apps and sales channels")
	fmt.Println("   2. Click 'Develop apps' → Your app")
	fmt.Println("   3. Click 'Configure Admin API scopes'")
	fmt.Println("   4. Add the missing scopes and reinstall the app")
	os.Exit(1)
}
