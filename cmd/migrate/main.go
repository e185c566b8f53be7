package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/config"
	"github.com/saadsaiyed/pdf-to-shopify/internal/repository/postgres"
	"github.com/saadsaiyed/pdf-to-shopify/migrations"
)

// Usage: go run ./cmd/migrate [migrations-dir]
// Without an argument the migrations embedded in the binary are applied.
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Only the database settings are needed here, so Shopify credentials may be absent
	dbCfg := config.DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "pdforders"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	// First, connect to the postgres database to create the target database if needed
	adminCfg := dbCfg
	adminCfg.DBName = "postgres"
	adminDB, err := sql.Open("postgres", postgres.DSN(adminCfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to postgres database: %v\n", err)
		os.Exit(1)
	}
	defer adminDB.Close()

	var exists bool
	if err := adminDB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbCfg.DBName,
	).Scan(&exists); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check database existence: %v\n", err)
		os.Exit(1)
	}
	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", dbCfg.DBName)
		if _, err := adminDB.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbCfg.DBName)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create database: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database '%s' created successfully.\n", dbCfg.DBName)
	}

	db, err := postgres.NewConnection(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	var source fs.FS = migrations.FS
	if len(os.Args) > 1 {
		source = os.DirFS(os.Args[1])
	}

	if err := postgres.RunMigrations(ctx, db, source, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migrations: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
