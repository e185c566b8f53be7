package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/saadsaiyed/pdf-to-shopify/internal/api/middleware"
)

// Prints a bcrypt hash for ADMIN_API_KEY_HASH. Without --api-key a random key is generated.
func main() {
	apiKeyFlag := flag.String("api-key", "", "API key to hash (generated when empty; save it, it cannot be retrieved later)")
	flag.Parse()

	// Trim so the stored hash matches what the server receives (AuthMiddleware trims the Bearer token)
	apiKey := strings.TrimSpace(*apiKeyFlag)
	if apiKey == "" && flag.NArg() > 0 {
		apiKey = strings.TrimSpace(flag.Arg(0))
	}
	generated := false
	if apiKey == "" {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate API key: %v\n", err)
			os.Exit(1)
		}
		apiKey = hex.EncodeToString(buf)
		generated = true
	}

	hash, err := middleware.HashAPIKey(apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	if generated {
		fmt.Printf("API key:            %s\n", apiKey)
	}
	fmt.Printf("ADMIN_API_KEY_HASH=%s\n", hash)
	fmt.Println()
	fmt.Println("Clients send: Authorization: Bearer <api key>")
}
