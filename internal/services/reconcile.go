package services

import "github.com/diewo77/ebill/internal/models"

// Plan is the set of item changes that turns the current items of a bill
// into the submitted ones.
type Plan struct {
	Remove []uint            // current - submitted
	Update []models.BillItem // current ∩ submitted, carrying the submitted fields
	Insert []models.BillItem // submitted - current, IDs cleared
}

// Reconcile diffs two item sets by ID.
// Submitted items whose ID is zero or unknown among current are inserted
// as new items; their IDs are never reused.
func Reconcile(current, submitted []models.BillItem) Plan {
	known := make(map[uint]bool, len(current))
	for _, item := range current {
		known[item.ID] = true
	}

	var plan Plan
	kept := make(map[uint]bool, len(submitted))
	for _, item := range submitted {
		if item.ID != 0 && known[item.ID] && !kept[item.ID] {
			kept[item.ID] = true
			plan.Update = append(plan.Update, models.BillItem{
				ID:          item.ID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Price:       item.Price,
			})
			continue
		}
		plan.Insert = append(plan.Insert, models.BillItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	for _, item := range current {
		if !kept[item.ID] {
			plan.Remove = append(plan.Remove, item.ID)
		}
	}
	return plan
}
