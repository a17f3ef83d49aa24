// Package sqlstore is the MySQL record store. Connection handling follows
// the rest of the data layer's fail-fast rule: the pool is pinged eagerly at
// startup and the process refuses to serve when the database is unreachable.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// maxOpenConns bounds the connection pool; callers beyond the limit wait,
// bounded only by their request context deadline.
const maxOpenConns = 10

// Open establishes the MySQL pool and verifies connectivity with an eager
// ping. A failed ping is a connectivity error, never a degraded start.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := mysql.NewConfig()
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	dsn.User = cfg.User
	dsn.Passwd = cfg.Password
	dsn.DBName = cfg.Database
	dsn.ParseTime = true
	// UPDATE must report matched rows, not changed rows, so a no-op
	// replace of an existing id still counts as found.
	dsn.ClientFoundRows = true

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}

	return db, nil
}

// RunMigrations executes all pending database migrations
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", migrationsDir))

	if err := goose.Up(db, migrationsDir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}
