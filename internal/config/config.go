package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Shopify     ShopifyConfig
	Sync        SyncConfig
	Redis       RedisConfig
	Order       OrderConfig
	API         APIConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ShopifyConfig struct {
	ShopDomain        string
	AccessToken       string
	APIVersion        string
	RequestsPerSecond float64 // client-side throttle for Admin API calls
	Burst             int
}

// SyncConfig controls the bulk catalog sync
type SyncConfig struct {
	PollInterval time.Duration // SYNC_POLL_INTERVAL: delay between bulk operation status checks
	MaxPolls     int           // SYNC_MAX_POLLS: status checks before giving up
	Timeout      time.Duration // SYNC_TIMEOUT: wall-clock bound for one sync run
	Interval     time.Duration // SYNC_INTERVAL: periodic sync in the server; 0 disables
	LockTTL      time.Duration // SYNC_LOCK_TTL: lease on the Redis sync lock
}

// RedisConfig is optional; empty Addr means the sync lock is in-process only
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// OrderConfig holds draft order defaults
type OrderConfig struct {
	DefaultCustomerID string // used when no Shopify customer matches the submitted name
	ShippingTitle     string
	ShippingPrice     decimal.Decimal
}

type APIConfig struct {
	AdminKeyHash   string // bcrypt hash of the admin API key; empty disables auth
	MaxUploadBytes int64  // MAX_UPLOAD_MB: request body cap for submissions
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	// .env is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	shippingPrice, err := decimal.NewFromString(getEnvOrViper("ORDER_SHIPPING_PRICE", "0.00"))
	if err != nil {
		return nil, fmt.Errorf("ORDER_SHIPPING_PRICE: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "pdforders"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:        strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken:       strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:        getEnvOrViper("SHOPIFY_API_VERSION", "2024-01"),
			RequestsPerSecond: getFloat("SHOPIFY_RPS", 2),
			Burst:             getInt("SHOPIFY_BURST", 4),
		},
		Sync: SyncConfig{
			PollInterval: getDuration("SYNC_POLL_INTERVAL", 10*time.Second),
			MaxPolls:     getInt("SYNC_MAX_POLLS", 180),
			Timeout:      getDuration("SYNC_TIMEOUT", 30*time.Minute),
			Interval:     getDuration("SYNC_INTERVAL", 0),
			LockTTL:      getDuration("SYNC_LOCK_TTL", 35*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Order: OrderConfig{
			DefaultCustomerID: strings.TrimSpace(getEnvOrViper("DEFAULT_CUSTOMER_ID", "")),
			ShippingTitle:     getEnvOrViper("ORDER_SHIPPING_TITLE", "Standard Shipping"),
			ShippingPrice:     shippingPrice,
		},
		API: APIConfig{
			AdminKeyHash:   strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
			MaxUploadBytes: int64(getInt("MAX_UPLOAD_MB", 20)) << 20,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and bounds
func (c *Config) Validate() error {
	if c.Shopify.ShopDomain == "" {
		return fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if c.Shopify.AccessToken == "" {
		return fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("SYNC_POLL_INTERVAL must be positive")
	}
	if c.Sync.MaxPolls < 1 {
		return fmt.Errorf("SYNC_MAX_POLLS must be at least 1")
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("SYNC_TIMEOUT must be positive")
	}
	if c.API.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnvOrViper(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnvOrViper(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getDuration accepts Go duration strings ("10s", "30m") or plain seconds
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnvOrViper(key, ""))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
