package db

import "testing"

func TestNormalizeDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{`  "postgres://u:p@h/db"  `, "postgres://u:p@h/db"},
		{"host=h   user=u dbname=d", "host=h user=u dbname=d sslmode=disable"},
		{"host=h user=u dbname=d sslmode=require", "host=h user=u dbname=d sslmode=require"},
		{"not a dsn", "not a dsn"},
	}
	for _, tt := range tests {
		if got := NormalizeDSN(tt.in); got != tt.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=u password=p dbname=bills sslmode=disable")
	if want := "postgres://u:p@db:5432/bills?sslmode=disable"; got != want {
		t.Fatalf("ToURLDSN = %q, want %q", got, want)
	}
	if got := ToURLDSN("host=db"); got != "host=db" {
		t.Fatalf("incomplete DSN changed: %q", got)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ebill.db", "ebill.db?_foreign_keys=1"},
		{"file:x?mode=memory", "file:x?mode=memory&_foreign_keys=1"},
		{"x.db?_foreign_keys=0", "x.db?_foreign_keys=0"},
	}
	for _, tt := range tests {
		if got := SQLiteDSN(tt.in); got != tt.want {
			t.Errorf("SQLiteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"host=h password=hunter2 dbname=d", "host=h password=*** dbname=d"},
		{"postgres://u:hunter2@h:5432/d", "postgres://u:***@h:5432/d"},
		{"ebill.db", "ebill.db"},
	}
	for _, tt := range tests {
		if got := MaskDSN(tt.in); got != tt.want {
			t.Errorf("MaskDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
