package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"souk/common/database"
	"souk/common/database/schema"
	"souk/common/database/schema/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	down := flag.Int("down", 0, "roll back the given migration version instead of migrating up")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		DSN:      getEnv("CLICKHOUSE_DSN", "127.0.0.1:9000"),
		Username: getEnv("CLICKHOUSE_USERNAME", "default"),
		Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		Database: getEnv("CLICKHOUSE_DATABASE", "souk"),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if *down > 0 {
		for _, migration := range migrations.All {
			if migration.Version != *down {
				continue
			}
			if err := migrator.RollbackMigration(ctx, migration); err != nil {
				logger.Fatal("Failed to roll back migration",
					zap.Int("version", migration.Version),
					zap.Error(err),
				)
			}
			logger.Info("Rolled back migration", zap.Int("version", migration.Version))
			return
		}
		logger.Fatal("Unknown migration version", zap.String("version", strconv.Itoa(*down)))
	}

	applied, err := migrator.Migrate(ctx, migrations.All)
	if err != nil {
		logger.Fatal("Failed to apply migrations",
			zap.Int("applied", applied),
			zap.Error(err),
		)
	}

	logger.Info("All migrations completed successfully", zap.Int("applied", applied))
}
