package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/internal/store"
)

// AuthService checks credentials and sets or clears the session marker.
type AuthService struct {
	store store.Store
}

func NewAuthService(s store.Store) *AuthService {
	return &AuthService{store: s}
}

// Login authenticates username/password. On success the session is marked
// for username; on failure ErrInvalidCredentials is returned and the session
// is left untouched.
func (s *AuthService) Login(ctx context.Context, sess auth.Session, username, password string) (*models.User, error) {
	user, err := s.store.FindUserByCredentials(ctx, username, password)
	if errors.Is(err, store.ErrNotFound) {
		slog.InfoContext(ctx, "login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := sess.SetUser(user.Username); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	slog.InfoContext(ctx, "login", "username", user.Username)
	return user, nil
}

// Logout clears the session marker. It is safe to call without a session.
func (s *AuthService) Logout(sess auth.Session) {
	sess.Clear()
}
