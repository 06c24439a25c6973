package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	sessionCookieName = "session"
	usernameCtxKey    = ctxKey("username")
)

// Session is the per-request session marker. It is passed explicitly to
// whoever needs to set or clear it.
type Session interface {
	// SetUser marks the session as authenticated for username.
	SetUser(username string) error
	// User returns the authenticated username, if any.
	User() (string, bool)
	// Clear removes the marker. Clearing an empty session is not an error.
	Clear()
}

// Manager issues and validates signed session cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager signing cookies with secret.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source (tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Sign returns a signed token for username.
func (m *Manager) Sign(username string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates a token and returns its username.
func (m *Manager) Parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("session without subject")
	}
	return claims.Subject, nil
}

// Session binds the cookie session of one request/response pair.
func (m *Manager) Session(w http.ResponseWriter, r *http.Request) *CookieSession {
	return &CookieSession{m: m, w: w, r: r}
}

// CookieSession stores the session marker in a signed HttpOnly cookie.
type CookieSession struct {
	m    *Manager
	w    http.ResponseWriter
	r    *http.Request
	user string
	set  bool
}

func (s *CookieSession) SetUser(username string) error {
	token, err := s.m.Sign(username)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.m.now().Add(s.m.ttl),
	})
	s.user, s.set = username, true
	return nil
}

func (s *CookieSession) User() (string, bool) {
	if s.set {
		return s.user, s.user != ""
	}
	return UsernameFromContext(s.r.Context())
}

func (s *CookieSession) Clear() {
	http.SetCookie(s.w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	s.user, s.set = "", true
}

// WithUsername stores the authenticated username in context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameCtxKey, username)
}

// UsernameFromContext extracts the authenticated username.
func UsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameCtxKey).(string)
	return v, ok && v != ""
}

// Middleware attaches the username to the request context if the cookie is valid.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
			if username, err := m.Parse(c.Value); err == nil {
				r = r.WithContext(WithUsername(r.Context(), username))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login if not authenticated (HTML) or returns 401 JSON.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UsernameFromContext(r.Context()); !ok {
			accept := r.Header.Get("Accept")
			if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"unauthorized"}`)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
