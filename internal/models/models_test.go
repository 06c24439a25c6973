package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBillItem_Subtotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    string
		want     string
	}{
		{"two widgets", 2, "9.99", "19.98"},
		{"single gadget", 1, "15.00", "15"},
		{"zero quantity", 0, "12.50", "0"},
		{"free item", 4, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &BillItem{Quantity: tt.quantity, Price: decimal.RequireFromString(tt.price)}
			if got := item.Subtotal(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Subtotal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBill_ComputeTotal(t *testing.T) {
	bill := &Bill{
		Items: []BillItem{
			{ProductName: "Widget", Quantity: 2, Price: decimal.RequireFromString("9.99")},  // 19.98
			{ProductName: "Gadget", Quantity: 1, Price: decimal.RequireFromString("15.00")}, // 15.00
		},
	}
	want := decimal.RequireFromString("34.98")
	if got := bill.ComputeTotal(); !got.Equal(want) {
		t.Errorf("ComputeTotal() = %s, want %s", got, want)
	}
}

func TestBill_ComputeTotalEmpty(t *testing.T) {
	bill := &Bill{}
	if got := bill.ComputeTotal(); !got.IsZero() {
		t.Errorf("ComputeTotal() = %s, want 0", got)
	}
}
