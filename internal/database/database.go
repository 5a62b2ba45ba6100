package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "rentalmarket/internal/logger"

	_ "modernc.org/sqlite"
)

// Connect opens the database named by dsn with the server's GORM settings.
func Connect(dsn string) (*gorm.DB, error) {
	return Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// Open picks PostgreSQL for postgres:// URLs and SQLite (modernc driver) otherwise.
func Open(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	if IsPostgres(dsn) {
		applog.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), gcfg)
	}

	applog.Info("using SQLite", "dsn", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		gcfg,
	)
	if err != nil {
		return nil, err
	}

	// SQLite has a single writer and every in-memory connection is its own database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate creates or updates the tables for the given models.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint failure on
// either supported database.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
