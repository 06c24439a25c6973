package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/internal/config"
	"github.com/diewo77/ebill/internal/db"
	"github.com/diewo77/ebill/internal/logging"
	"github.com/diewo77/ebill/internal/metrics"
	"github.com/diewo77/ebill/internal/receipt"
	"github.com/diewo77/ebill/internal/store/gormstore"
	"github.com/diewo77/ebill/view"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.App.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	st := gormstore.New(dbConn)

	if err := db.Migrate(dbConn, cfg); err != nil {
		return err
	}
	if *migrateOnlyFlag {
		slog.Info("migrations completed")
		return nil
	}

	if err := db.Seed(ctx, dbConn, st, cfg.App.SeedUsername, cfg.App.SeedPassword); err != nil {
		return err
	}
	if *seedOnlyFlag {
		slog.Info("seeding completed")
		return nil
	}

	view.SetCurrency(cfg.Receipt.Currency)
	view.SetDev(cfg.App.Dev)
	if fi, err := os.Stat("templates"); cfg.App.Dev && err == nil && fi.IsDir() {
		view.SetFS(os.DirFS("templates"))
	}

	app := NewApp(Deps{
		Store:    st,
		Sessions: auth.NewManager(cfg.Session.Secret, cfg.Session.TTL),
		Receipts: receipt.NewRenderer(cfg.Receipt.Currency, cfg.Receipt.Location()),
		Metrics:  metrics.New(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("server stopped gracefully")
		return nil
	})
	return g.Wait()
}
