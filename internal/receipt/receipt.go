// Package receipt renders a bill as a printable PDF receipt.
package receipt

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/diewo77/ebill/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// ContentType is the MIME type of a rendered receipt.
const ContentType = "application/pdf"

// DateLayout formats receipt timestamps as DD/MM/YYYY HH:MM.
const DateLayout = "02/01/2006 15:04"

// Page geometry in millimetres.
const (
	margin      = 20.0
	pageWidth   = 210.0
	bodyWidth   = pageWidth - 2*margin
	qtyWidth    = 25.0
	priceWidth  = 35.0
	amountWidth = 35.0
	rowHeight   = 8.0
	lineHeight  = 6.0
)

// Row is one line of the item table, already formatted.
type Row struct {
	Product  string
	Quantity string
	Price    string
	Subtotal string
}

// Receipt is the text model of a rendered bill.
type Receipt struct {
	Title      string
	BillID     string
	Date       string
	Customer   string
	ItemCount  string
	Columns    [4]string
	Rows       []Row
	GrandTotal string
	Footer     string
}

// Renderer lays out and renders receipts. The zero value renders with the
// wall clock, a "$" symbol and UTC.
type Renderer struct {
	Now      func() time.Time
	Currency string
	Location *time.Location
}

// NewRenderer returns a Renderer using the wall clock.
func NewRenderer(currency string, loc *time.Location) *Renderer {
	return &Renderer{Now: time.Now, Currency: currency, Location: loc}
}

// Filename is the download name of a bill's receipt.
func Filename(bill *models.Bill) string {
	return fmt.Sprintf("Bill_%d.pdf", bill.ID)
}

// FormatMoney renders an amount with the currency symbol, thousands
// separators and two decimals. Negative amounts read -$1.00.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	rounded := amount.Round(2)
	fixed := rounded.Abs().StringFixed(2)
	out := symbol + humanize.BigComma(rounded.Abs().BigInt()) + fixed[len(fixed)-3:]
	if rounded.IsNegative() {
		return "-" + out
	}
	return out
}

// Layout computes the receipt text for bill at time now. Items keep their
// bill order and the grand total is the stored total.
func (r *Renderer) Layout(bill *models.Bill, now time.Time) Receipt {
	stamp := now.In(r.location()).Format(DateLayout)
	rec := Receipt{
		Title:      "Bill Receipt",
		BillID:     "Bill ID: " + strconv.FormatUint(uint64(bill.ID), 10),
		Date:       "Date: " + stamp,
		Customer:   "Customer Name: " + bill.CustomerName,
		ItemCount:  "Number of Items: " + strconv.Itoa(len(bill.Items)),
		Columns:    [4]string{"Product", "Qty", "Price", "Subtotal"},
		Rows:       make([]Row, 0, len(bill.Items)),
		GrandTotal: "Grand Total: " + r.money(bill.Total),
		Footer:     "Generated on " + stamp,
	}
	for i := range bill.Items {
		item := &bill.Items[i]
		rec.Rows = append(rec.Rows, Row{
			Product:  item.ProductName,
			Quantity: strconv.Itoa(item.Quantity),
			Price:    r.money(item.Price),
			Subtotal: r.money(item.Subtotal()),
		})
	}
	return rec
}

// Render produces the PDF for bill. Output is byte-identical for the same
// bill and clock reading. The bill header and the column header row repeat
// on every page.
func (r *Renderer) Render(bill *models.Bill) ([]byte, error) {
	now := r.now()
	rec := r.Layout(bill, now)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(rec.Title, true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 20)
		pdf.CellFormat(0, 12, tr(rec.Title), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 7, tr(rec.BillID), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(rec.Date), "", 1, "L", false, 0, "")
		pdf.Ln(6)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin + 5)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(rec.Footer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, tr(rec.Customer), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 7, tr(rec.ItemCount), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := [4]float64{bodyWidth - qtyWidth - priceWidth - amountWidth, qtyWidth, priceWidth, amountWidth}
	aligns := [4]string{"L", "R", "R", "R"}
	columns := func() {
		pdf.SetFont("Arial", "B", 12)
		for i, col := range rec.Columns {
			pdf.CellFormat(widths[i], rowHeight, col, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 12)
	}
	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - margin

	columns()
	for _, row := range rec.Rows {
		lines := pdf.SplitLines([]byte(tr(row.Product)), widths[0])
		if len(lines) == 0 {
			lines = [][]byte{nil}
		}
		height := float64(len(lines)) * lineHeight
		if height < rowHeight {
			height = rowHeight
		}
		if pdf.GetY()+height > limit {
			pdf.AddPage()
			columns()
		}

		x, y := pdf.GetXY()
		pdf.Rect(x, y, widths[0], height, "D")
		for i, line := range lines {
			pdf.SetXY(x, y+float64(i)*lineHeight)
			pdf.CellFormat(widths[0], lineHeight, string(line), "", 0, aligns[0], false, 0, "")
		}
		pdf.SetXY(x+widths[0], y)
		cells := [3]string{row.Quantity, row.Price, row.Subtotal}
		for i, cell := range cells {
			pdf.CellFormat(widths[i+1], height, tr(cell), "1", 0, aligns[i+1], false, 0, "")
		}
		pdf.SetXY(x, y+height)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, rowHeight, tr(rec.GrandTotal), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt for bill %d: %w", bill.ID, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) money(d decimal.Decimal) string {
	symbol := r.Currency
	if symbol == "" {
		symbol = "$"
	}
	return FormatMoney(symbol, d)
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Renderer) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}
