// Package view renders html/template pages from the embedded templates.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/internal/receipt"
	"github.com/diewo77/ebill/templates"
	"github.com/diewo77/ebill/validation"
	"github.com/shopspring/decimal"
)

var (
	mu       sync.RWMutex
	source   fs.FS = templates.FS
	currency       = "$"
	noCache  bool
	tplCache = map[string]*template.Template{}
)

// partials are parsed alongside every page.
const partials = "partials/*.html"

// SetFS overrides the template source, e.g. os.DirFS("templates") during
// development. It clears the cache.
func SetFS(fsys fs.FS) {
	mu.Lock()
	defer mu.Unlock()
	source = fsys
	tplCache = map[string]*template.Template{}
}

// SetCurrency sets the symbol used by the money template func.
func SetCurrency(symbol string) {
	mu.Lock()
	defer mu.Unlock()
	if symbol != "" {
		currency = symbol
	}
}

// SetDev disables the template cache so edits show up on reload.
func SetDev(dev bool) {
	mu.Lock()
	defer mu.Unlock()
	noCache = dev
}

// Funcs returns the func map shared by all templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			mu.RLock()
			symbol := currency
			mu.RUnlock()
			return receipt.FormatMoney(symbol, d)
		},
		"fieldError": func(v validation.Violations, field string) string {
			return v.First(field)
		},
		"hasError": func(v validation.Violations, field string) bool {
			return v.Has(field)
		},
		"year": func() int { return time.Now().Year() },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// Render executes the page name inside layout.html with status 200.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus executes the page name inside layout.html and writes it with
// status. Nothing is written if the template fails.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Username"]; !exists {
		username, loggedIn := auth.UsernameFromContext(r.Context())
		data["Username"] = username
		data["IsLoggedIn"] = loggedIn
	}

	t, err := lookup(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func lookup(name string) (*template.Template, error) {
	mu.RLock()
	t, ok := tplCache[name]
	fsys, dev := source, noCache
	mu.RUnlock()
	if ok && !dev {
		return t, nil
	}

	t, err := template.New("layout.html").Funcs(Funcs()).ParseFS(fsys, "layout.html", name, partials)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if !dev {
		mu.Lock()
		tplCache[name] = t
		mu.Unlock()
	}
	return t, nil
}
