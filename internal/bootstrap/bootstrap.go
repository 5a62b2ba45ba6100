// Package bootstrap holds the startup steps shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"rentalmarket/internal/config"
	"rentalmarket/internal/database"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/lock"
	"rentalmarket/internal/server"
)

// Config loads .env (outside production), then the optional CONFIG_FILE and
// the environment, and initializes the logger.
func Config() (*config.Config, error) {
	if !config.IsProdLike(os.Getenv("APP_ENV")) {
		_ = godotenv.Load()
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// Database connects and migrates every table the API uses.
func Database(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db, server.Models()...); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Locker returns a Redis locker when REDIS_ADDR is set, otherwise a no-op
// locker. The close func is always non-nil.
func Locker(ctx context.Context, cfg config.RedisConfig) (lock.Locker, func() error, error) {
	if cfg.Addr == "" {
		logger.Info("redis not configured, distributed locking disabled")
		return lock.NopLocker{}, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("redis connected", "addr", cfg.Addr)
	return lock.NewRedisLocker(client, cfg.LockTTL, cfg.LockWait), client.Close, nil
}
