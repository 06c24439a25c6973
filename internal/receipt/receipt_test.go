package receipt

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/ebill/internal/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleBill() *models.Bill {
	return &models.Bill{
		ID:           42,
		CustomerName: "Acme",
		Total:        dec("34.98"),
		Items: []models.BillItem{
			{ID: 1, ProductName: "Widget", Quantity: 2, Price: dec("9.99")},
			{ID: 2, ProductName: "Gadget", Quantity: 1, Price: dec("15.00")},
		},
	}
}

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "$0.00"},
		{"9.99", "$9.99"},
		{"15", "$15.00"},
		{"1234.5", "$1,234.50"},
		{"1000000", "$1,000,000.00"},
		{"0.999", "$1.00"},
		{"-1", "-$1.00"},
		{"-1234.567", "-$1,234.57"},
		{"-0.001", "$0.00"},
		{"9999999999.99", "$9,999,999,999.99"},
	}
	for _, tt := range tests {
		if got := FormatMoney("$", dec(tt.amount)); got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestLayout(t *testing.T) {
	r := &Renderer{Currency: "$"}
	rec := r.Layout(sampleBill(), fixedNow)

	checks := []struct{ got, want string }{
		{rec.Title, "Bill Receipt"},
		{rec.BillID, "Bill ID: 42"},
		{rec.Date, "Date: 05/03/2024 14:07"},
		{rec.Customer, "Customer Name: Acme"},
		{rec.ItemCount, "Number of Items: 2"},
		{rec.GrandTotal, "Grand Total: $34.98"},
		{rec.Footer, "Generated on 05/03/2024 14:07"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}

	want := []Row{
		{Product: "Widget", Quantity: "2", Price: "$9.99", Subtotal: "$19.98"},
		{Product: "Gadget", Quantity: "1", Price: "$15.00", Subtotal: "$15.00"},
	}
	if len(rec.Rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rec.Rows), len(want))
	}
	for i := range want {
		if rec.Rows[i] != want[i] {
			t.Errorf("row %d = %#v, want %#v", i, rec.Rows[i], want[i])
		}
	}
}

func TestLayoutUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	rec := (&Renderer{Location: loc}).Layout(sampleBill(), fixedNow)
	if rec.Date != "Date: 05/03/2024 16:07" {
		t.Fatalf("date = %q", rec.Date)
	}
}

func TestLayoutUsesStoredTotal(t *testing.T) {
	bill := sampleBill()
	bill.Total = dec("1.00")
	rec := (&Renderer{}).Layout(bill, fixedNow)
	if rec.GrandTotal != "Grand Total: $1.00" {
		t.Fatalf("grand total = %q", rec.GrandTotal)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := &Renderer{Now: func() time.Time { return fixedNow }, Currency: "$"}

	first, err := r.Render(sampleBill())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := r.Render(sampleBill())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(first, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", first[:min(len(first), 16)])
	}
	if !bytes.Equal(first, second) {
		t.Fatal("renders of the same bill differ")
	}
}

func TestRenderEmptyBill(t *testing.T) {
	r := &Renderer{Now: func() time.Time { return fixedNow }}
	out, err := r.Render(&models.Bill{ID: 1, CustomerName: "Nobody"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(&models.Bill{ID: 7}); got != "Bill_7.pdf" {
		t.Fatalf("Filename = %q", got)
	}
}

// pageStreams inflates the content streams of a rendered PDF, one per page.
func pageStreams(t *testing.T, pdf []byte) []string {
	t.Helper()
	var pages []string
	for {
		start := bytes.Index(pdf, []byte("stream\n"))
		if start < 0 {
			return pages
		}
		pdf = pdf[start+len("stream\n"):]
		end := bytes.Index(pdf, []byte("endstream"))
		if end < 0 {
			t.Fatal("unterminated stream")
		}
		zr, err := zlib.NewReader(bytes.NewReader(pdf[:end]))
		if err != nil {
			t.Fatalf("inflate: %v", err)
		}
		body, err := io.ReadAll(zr)
		if err != nil {
			t.Fatalf("inflate: %v", err)
		}
		pages = append(pages, string(body))
		pdf = pdf[end+len("endstream"):]
	}
}

func TestRenderRepeatsHeadersOnEveryPage(t *testing.T) {
	bill := &models.Bill{ID: 42, CustomerName: "Acme"}
	for i := range 60 {
		bill.Items = append(bill.Items, models.BillItem{
			ID: uint(i + 1), ProductName: fmt.Sprintf("Part %d", i+1), Quantity: 1, Price: dec("1.00"),
		})
	}
	bill.Total = models.SumItems(bill.Items)

	out, err := (&Renderer{Now: func() time.Time { return fixedNow }}).Render(bill)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	pages := pageStreams(t, out)
	if len(pages) < 3 {
		t.Fatalf("pages = %d, want at least 3", len(pages))
	}
	for i, page := range pages {
		for _, want := range []string{"(Bill ID: 42)", "(Date: 05/03/2024 14:07)", "(Subtotal)", "(Generated on 05/03/2024 14:07)"} {
			if !strings.Contains(page, want) {
				t.Errorf("page %d missing %s", i+1, want)
			}
		}
	}
	if !strings.Contains(pages[0], "(Customer Name: Acme)") || strings.Contains(pages[1], "(Customer Name: Acme)") {
		t.Error("customer block should appear on the first page only")
	}
	if !strings.Contains(pages[len(pages)-1], "(Part 60)") {
		t.Error("last item missing from the last page")
	}
}

func TestRenderWrapsLongProductNames(t *testing.T) {
	name := "Industrial grade stainless steel widget with extended warranty and installation kit"
	bill := &models.Bill{ID: 3, CustomerName: "Acme", Total: dec("5.00"), Items: []models.BillItem{
		{ID: 1, ProductName: name, Quantity: 1, Price: dec("5.00")},
	}}

	out, err := (&Renderer{Now: func() time.Time { return fixedNow }}).Render(bill)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := pageStreams(t, out)[0]
	if strings.Contains(page, "("+name+")") {
		t.Fatal("product name drawn on a single line")
	}
	if !strings.Contains(page, "(Industrial grade") {
		t.Fatalf("first product line missing:\n%s", page)
	}
	if !strings.Contains(page, "kit)") {
		t.Fatalf("last product line missing:\n%s", page)
	}
}
