package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale of the price and total columns.
const MoneyPlaces = 2

// Bill is an invoice for a customer made of line items.
// Total is derived from the items and recomputed on every create or edit.
type Bill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CustomerName string          `gorm:"size:255;not null" json:"customer_name" validate:"required"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	// Items are owned by the bill and removed with it.
	Items []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items" validate:"dive"`
}

// ComputeTotal returns the sum of the item subtotals.
func (b *Bill) ComputeTotal() decimal.Decimal {
	return SumItems(b.Items)
}

// BillItem represents a line item on a bill.
type BillItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Parent bill
	BillID uint `gorm:"index;not null" json:"bill_id"`

	ProductName string          `gorm:"size:255;not null" json:"product_name" validate:"required"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
}

// Subtotal is the line amount, price times quantity.
func (item *BillItem) Subtotal() decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// SumItems adds up the subtotals of items.
func SumItems(items []BillItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Subtotal())
	}
	return total
}
