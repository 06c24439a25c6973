package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rr.Code)
	}
	return rr.Body.String()
}

func TestInstrumentCountsRequests(t *testing.T) {
	m := New()
	h := m.Instrument("GET /bills/{id}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bills/7", nil))
	}

	want := `ebill_http_requests_total{code="404",method="GET",route="GET /bills/{id}"} 2`
	if out := scrape(t, m); !strings.Contains(out, want) {
		t.Fatalf("exposition missing %q:\n%s", want, out)
	}
}

func TestObserveBillOp(t *testing.T) {
	m := New()
	m.ObserveBillOp("create", "ok")
	m.ObserveBillOp("create", "invalid")
	m.ObserveBillOp("create", "ok")

	out := scrape(t, m)
	for _, want := range []string{
		`ebill_bill_operations_total{op="create",outcome="ok"} 2`,
		`ebill_bill_operations_total{op="create",outcome="invalid"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
