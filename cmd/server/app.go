package main

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/internal/handlers"
	"github.com/diewo77/ebill/internal/logging"
	"github.com/diewo77/ebill/internal/metrics"
	"github.com/diewo77/ebill/internal/receipt"
	"github.com/diewo77/ebill/internal/services"
	"github.com/diewo77/ebill/internal/store"
)

// Deps are the collaborators the application is built from.
type Deps struct {
	Store    store.Store
	Sessions *auth.Manager
	Receipts *receipt.Renderer
	Metrics  *metrics.Metrics
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	deps    Deps
	handler http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(d Deps) *App {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	app := &App{mux: http.NewServeMux(), deps: d}
	app.setupRoutes()
	app.handler = logging.Middleware(recoverer(d.Sessions.Middleware(app.mux)))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ah := handlers.NewAuthHandler(services.NewAuthService(a.deps.Store), a.deps.Sessions)
	bh := handlers.NewBillHandler(services.NewBillService(a.deps.Store), a.deps.Receipts, a.deps.Metrics)

	// Public routes
	a.handle("GET /{$}", http.RedirectHandler("/bills", http.StatusSeeOther))
	a.handle("GET /login", http.HandlerFunc(ah.Login))
	a.handle("POST /login", http.HandlerFunc(ah.Login))
	a.handle("GET /logout", http.HandlerFunc(ah.Logout))
	a.handle("POST /logout", http.HandlerFunc(ah.Logout))
	a.handle("GET /healthz", handlers.Health(a.deps.Store))
	a.mux.Handle("GET /metrics", a.deps.Metrics.Handler())

	// Bills (require a signed-in user)
	a.protected("GET /bills", bh.List)
	a.protected("GET /bills/new", bh.New)
	a.protected("POST /bills", bh.Create)
	a.protected("GET /bills/{id}", bh.Show)
	a.protected("GET /bills/{id}/edit", bh.Edit)
	a.protected("POST /bills/{id}", bh.Update)
	a.protected("GET /bills/{id}/delete", bh.ConfirmDelete)
	a.protected("POST /bills/{id}/delete", bh.Delete)
	a.protected("GET /bills/{id}/pdf", bh.PDF)
}

// handle registers h under pattern and counts its requests under that pattern.
func (a *App) handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, a.deps.Metrics.Instrument(pattern, h))
}

func (a *App) protected(pattern string, h http.HandlerFunc) {
	a.handle(pattern, auth.RequireAuth(h))
}

// recoverer turns a handler panic into a 500 response.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				slog.ErrorContext(r.Context(), "panic serving request", "panic", v, "stack", string(debug.Stack()))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
