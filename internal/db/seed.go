package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/internal/store"
	"gorm.io/gorm"
)

// Seed provisions the login user when it does not exist yet. It is a no-op
// without a password. Users are never updated here.
func Seed(ctx context.Context, db *gorm.DB, st store.Store, username, password string) error {
	if username == "" || password == "" {
		slog.Info("seed skipped: no seed credentials configured")
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := st.CreateUser(ctx, username, password); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	slog.Info("seeded user", "username", username)
	return nil
}
