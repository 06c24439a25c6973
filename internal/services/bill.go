package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/internal/store"
	"github.com/diewo77/ebill/validation"
)

// BillService owns the bill lifecycle: totals, validation and item reconciliation.
type BillService struct {
	store store.Store
}

func NewBillService(s store.Store) *BillService {
	return &BillService{store: s}
}

// List returns all bills with their items.
func (s *BillService) List(ctx context.Context) ([]models.Bill, error) {
	return s.store.ListBills(ctx)
}

// Get loads a bill with its items. It returns ErrNotFound if the bill does not exist.
func (s *BillService) Get(ctx context.Context, id uint) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bill %d: %w", id, err)
	}
	return bill, nil
}

// Create validates and stores a new bill with its items.
// On validation failure nothing is written and the input is returned with a *ValidationError.
func (s *BillService) Create(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	applyTotal(bill)
	if v := validation.Struct(bill); !v.Empty() {
		slog.WarnContext(ctx, "bill rejected", "op", "create", "violations", v)
		return bill, &ValidationError{Bill: bill, Violations: v}
	}

	created := &models.Bill{
		CustomerName: bill.CustomerName,
		Total:        bill.Total,
		Items:        make([]models.BillItem, len(bill.Items)),
	}
	for i, item := range bill.Items {
		created.Items[i] = models.BillItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	if err := s.store.InsertBill(ctx, created); err != nil {
		return bill, fmt.Errorf("create bill: %w", err)
	}
	slog.InfoContext(ctx, "bill created", "bill_id", created.ID, "items", len(created.Items), "total", created.Total.StringFixed(2))
	return created, nil
}

// Edit replaces the customer name, total and item set of an existing bill.
// Items are matched by ID: unmatched existing items are removed, matched ones
// are updated in place and the rest are inserted. Everything runs in one transaction.
func (s *BillService) Edit(ctx context.Context, bill *models.Bill) (*models.Bill, error) {
	applyTotal(bill)
	if v := validation.Struct(bill); !v.Empty() {
		slog.WarnContext(ctx, "bill rejected", "op", "edit", "bill_id", bill.ID, "violations", v)
		return bill, &ValidationError{Bill: bill, Violations: v}
	}

	var plan Plan
	err := s.store.Tx(ctx, func(tx store.Store) error {
		existing, err := tx.GetBill(ctx, bill.ID)
		if err != nil {
			return err
		}
		existing.CustomerName = bill.CustomerName
		existing.Total = bill.Total
		if err := tx.UpdateBillScalars(ctx, existing); err != nil {
			return err
		}

		plan = Reconcile(existing.Items, bill.Items)
		if err := tx.RemoveItems(ctx, existing.ID, plan.Remove); err != nil {
			return err
		}
		for i := range plan.Update {
			plan.Update[i].BillID = existing.ID
			if err := tx.UpdateItem(ctx, &plan.Update[i]); err != nil {
				return err
			}
		}
		for i := range plan.Insert {
			plan.Insert[i].BillID = existing.ID
			if err := tx.InsertItem(ctx, &plan.Insert[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return bill, ErrNotFound
	}
	if err != nil {
		return bill, fmt.Errorf("edit bill %d: %w", bill.ID, err)
	}
	slog.InfoContext(ctx, "bill edited", "bill_id", bill.ID,
		"removed", len(plan.Remove), "updated", len(plan.Update), "inserted", len(plan.Insert))
	return s.Get(ctx, bill.ID)
}

// Delete removes a bill and its items. Deleting a missing bill succeeds.
func (s *BillService) Delete(ctx context.Context, id uint) error {
	if _, err := s.store.GetBill(ctx, id); errors.Is(err, store.ErrNotFound) {
		return nil
	} else if err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	if err := s.store.RemoveBillAndItems(ctx, id); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	slog.InfoContext(ctx, "bill deleted", "bill_id", id)
	return nil
}

// applyTotal rounds prices to the stored scale and derives the total from
// the items. A bill without items keeps the submitted total, rounded.
func applyTotal(bill *models.Bill) {
	for i := range bill.Items {
		bill.Items[i].Price = bill.Items[i].Price.Round(models.MoneyPlaces)
	}
	if len(bill.Items) > 0 {
		bill.Total = bill.ComputeTotal()
		return
	}
	bill.Total = bill.Total.Round(models.MoneyPlaces)
}
