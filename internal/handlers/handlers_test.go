package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/internal/metrics"
	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/internal/receipt"
	"github.com/diewo77/ebill/internal/services"
	"github.com/diewo77/ebill/internal/store/gormstore"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	store    *gormstore.Store
	bills    *services.BillService
	sessions *auth.Manager
	mux      *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Bill{}, &models.BillItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := gormstore.New(db, gormstore.WithBcryptCost(bcrypt.MinCost))
	bills := services.NewBillService(st)
	sessions := auth.NewManager("test-secret", time.Hour)

	bh := NewBillHandler(bills, &receipt.Renderer{Now: func() time.Time { return fixedNow }, Currency: "$"}, metrics.New())
	ah := NewAuthHandler(services.NewAuthService(st), sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", ah.Login)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)
	mux.HandleFunc("GET /bills", bh.List)
	mux.HandleFunc("GET /bills/new", bh.New)
	mux.HandleFunc("POST /bills", bh.Create)
	mux.HandleFunc("GET /bills/{id}", bh.Show)
	mux.HandleFunc("GET /bills/{id}/edit", bh.Edit)
	mux.HandleFunc("POST /bills/{id}", bh.Update)
	mux.HandleFunc("GET /bills/{id}/delete", bh.ConfirmDelete)
	mux.HandleFunc("POST /bills/{id}/delete", bh.Delete)
	mux.HandleFunc("GET /bills/{id}/pdf", bh.PDF)

	return &testEnv{db: db, store: st, bills: bills, sessions: sessions, mux: mux}
}

func (e *testEnv) do(r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.sessions.Middleware(e.mux).ServeHTTP(rr, r)
	return rr
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(r)
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	return e.do(r)
}

func (e *testEnv) seedBill(t *testing.T) *models.Bill {
	t.Helper()
	bill, err := e.bills.Create(context.Background(), &models.Bill{
		CustomerName: "Acme",
		Items: []models.BillItem{
			{ProductName: "Widget", Quantity: 2, Price: decimal.RequireFromString("9.99")},
			{ProductName: "Gadget", Quantity: 1, Price: decimal.RequireFromString("15.00")},
		},
	})
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	return bill
}

func (e *testEnv) countBills(t *testing.T) int64 {
	t.Helper()
	var n int64
	e.db.Model(&models.Bill{}).Count(&n)
	return n
}
