// Package store defines the persistence boundary used by the bill services.
// Implementations must apply every method as one atomic unit and run the
// callback given to Tx inside a single transaction.
package store

import (
	"context"
	"errors"

	"github.com/diewo77/ebill/internal/models"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound = errors.New("store: not found")
)

// Store is the storage gateway over users, bills and bill items.
type Store interface {
	// FindUserByCredentials returns the user whose username and password both
	// match. It returns ErrNotFound on any mismatch.
	FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error)

	// CreateUser stores a user with a hashed password.
	CreateUser(ctx context.Context, username, password string) (*models.User, error)

	// ListBills returns every bill with its items, in storage order.
	ListBills(ctx context.Context) ([]models.Bill, error)

	// GetBill returns a bill with its items or ErrNotFound.
	GetBill(ctx context.Context, id uint) (*models.Bill, error)

	// InsertBill persists a new bill together with its items.
	// IDs are assigned on bill and items.
	InsertBill(ctx context.Context, bill *models.Bill) error

	// UpdateBillScalars writes customer name and total of an existing bill.
	UpdateBillScalars(ctx context.Context, bill *models.Bill) error

	// RemoveItems deletes the given items of a bill.
	RemoveItems(ctx context.Context, billID uint, ids []uint) error

	// UpdateItem overwrites product name, quantity and price of an item in place.
	UpdateItem(ctx context.Context, item *models.BillItem) error

	// InsertItem adds a new item to item.BillID and assigns its ID.
	InsertItem(ctx context.Context, item *models.BillItem) error

	// RemoveBillAndItems deletes the items of a bill, then the bill.
	RemoveBillAndItems(ctx context.Context, id uint) error

	// Tx runs fn inside a transaction. fn must only use the Store it receives.
	// Returning an error from fn rolls back every change made through it.
	Tx(ctx context.Context, fn func(tx Store) error) error

	// Ping checks connectivity to the underlying database.
	Ping(ctx context.Context) error
}
