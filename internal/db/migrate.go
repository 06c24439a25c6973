package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/ebill/internal/config"
	"github.com/diewo77/ebill/internal/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationsFS embed.FS

// Models lists every persisted model, in dependency order.
func Models() []any {
	return []any{&models.User{}, &models.Bill{}, &models.BillItem{}}
}

// Migrate brings the schema up to date. With cfg.App.Migrations set it runs
// the embedded SQL migrations through golang-migrate; otherwise it falls back
// to gorm AutoMigrate for development.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations {
		slog.Info("running sql migrations", "driver", cfg.Database.Driver)
		if err := RunSQLMigrations(cfg.Database); err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
	} else {
		for _, m := range Models() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}

	for _, table := range []string{"users", "bills", "bill_items"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded migrations for the configured driver
// over a dedicated connection.
func RunSQLMigrations(cfg config.DatabaseConfig) error {
	dir, driverName, dsn := "migrations/sqlite", "sqlite3", SQLiteDSN(cfg.DSN)
	if cfg.IsPostgres() {
		dir, driverName, dsn = "migrations/postgres", "postgres", ToURLDSN(NormalizeDSN(cfg.ConnString()))
	}

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer conn.Close()

	var driver database.Driver
	if cfg.IsPostgres() {
		driver, err = migratepg.WithInstance(conn, &migratepg.Config{})
	} else {
		driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("create %s driver: %w", driverName, err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
