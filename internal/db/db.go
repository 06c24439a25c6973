// Package db opens the database, applies the schema and seeds the initial user.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/ebill/internal/config"
	"github.com/diewo77/ebill/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection attempts before giving up; postgres may still be starting.
const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Open connects with the configured driver, retrying while the server is
// not yet reachable, and checks connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logging.GormLevel(cfg.Debug))}

	slog.Info("connecting to database", "driver", cfg.Driver, "dsn", MaskDSN(cfg.ConnString()))
	var db *gorm.DB
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = db.WithContext(ctx).Exec("SELECT 1").Error
		}
		if err == nil || !cfg.IsPostgres() {
			break
		}
		slog.Warn("database not ready, retrying", "attempt", i, "of", connectAttempts, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch {
	case cfg.IsPostgres():
		return postgres.Open(NormalizeDSN(cfg.ConnString())), nil
	case cfg.Driver == "sqlite" || cfg.Driver == "sqlite3":
		return sqlite.Open(SQLiteDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
