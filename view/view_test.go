package view

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/templates"
	"github.com/diewo77/ebill/validation"
	"github.com/shopspring/decimal"
)

func TestRenderWithLayout(t *testing.T) {
	SetFS(fstest.MapFS{
		"layout.html":         {Data: []byte(`<html>{{if .IsLoggedIn}}{{.Username}}{{end}}|{{template "content" .}}</html>`)},
		"page.html":           {Data: []byte(`{{define "content"}}{{money .Amount}} {{fieldError .Errors "name"}}{{end}}`)},
		"partials/empty.html": {Data: []byte(`{{define "empty"}}{{end}}`)},
	})
	defer SetFS(templates.FS)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(auth.WithUsername(r.Context(), "alice"))
	rr := httptest.NewRecorder()

	errs := validation.Violations{}
	errs.Add("name", "is required")
	err := RenderStatus(rr, r, http.StatusUnprocessableEntity, "page.html", map[string]any{
		"Amount": decimal.RequireFromString("1234.5"),
		"Errors": errs,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	if got, want := rr.Body.String(), "<html>alice|$1,234.50 is required</html>"; got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestRenderMissingTemplate(t *testing.T) {
	rr := httptest.NewRecorder()
	err := Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), "nope.html", nil)
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("partial output written: %q", rr.Body.String())
	}
}

func TestEmbeddedPagesParse(t *testing.T) {
	for _, name := range []string{"login.html", "bills/index.html", "bills/form.html", "bills/show.html", "bills/delete.html"} {
		if _, err := lookup(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestDict(t *testing.T) {
	dict := Funcs()["dict"].(func(...any) map[string]any)
	m := dict("a", 1, "b", "two")
	if m["a"] != 1 || m["b"] != "two" {
		t.Fatalf("dict = %#v", m)
	}
	if dict("odd") != nil {
		t.Fatal("odd arguments should yield nil")
	}
}
