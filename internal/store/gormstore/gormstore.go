// Package gormstore implements store.Store on top of gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/internal/store"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var _ store.Store = (*Store)(nil)

// Store is a gorm backed storage gateway.
type Store struct {
	db         *gorm.DB
	bcryptCost int
}

// Option configures a Store.
type Option func(*Store)

// WithBcryptCost overrides the cost used when hashing passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

// New wraps an open gorm connection.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: username, Password: string(hashed)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return &user, nil
}

func (s *Store) ListBills(ctx context.Context) ([]models.Bill, error) {
	var bills []models.Bill
	if err := s.db.WithContext(ctx).Preload("Items", orderItems).Order("id").Find(&bills).Error; err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (s *Store) GetBill(ctx context.Context, id uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.WithContext(ctx).Preload("Items", orderItems).First(&bill, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &bill, nil
}

func (s *Store) InsertBill(ctx context.Context, bill *models.Bill) error {
	// Create saves the items association in the same statement batch and transaction.
	if err := s.db.WithContext(ctx).Create(bill).Error; err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (s *Store) UpdateBillScalars(ctx context.Context, bill *models.Bill) error {
	res := s.db.WithContext(ctx).Model(&models.Bill{}).Where("id = ?", bill.ID).Updates(map[string]any{
		"customer_name": bill.CustomerName,
		"total":         bill.Total,
	})
	if res.Error != nil {
		return fmt.Errorf("update bill %d: %w", bill.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) RemoveItems(ctx context.Context, billID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Where("bill_id = ? AND id IN ?", billID, ids).Delete(&models.BillItem{}).Error
	if err != nil {
		return fmt.Errorf("remove items of bill %d: %w", billID, err)
	}
	return nil
}

func (s *Store) UpdateItem(ctx context.Context, item *models.BillItem) error {
	res := s.db.WithContext(ctx).Model(&models.BillItem{}).
		Where("id = ? AND bill_id = ?", item.ID, item.BillID).
		Updates(map[string]any{
			"product_name": item.ProductName,
			"quantity":     item.Quantity,
			"price":        item.Price,
		})
	if res.Error != nil {
		return fmt.Errorf("update item %d: %w", item.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) InsertItem(ctx context.Context, item *models.BillItem) error {
	if item.BillID == 0 {
		return errors.New("insert item: missing bill id")
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *Store) RemoveBillAndItems(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", id).Delete(&models.BillItem{}).Error; err != nil {
			return fmt.Errorf("remove items of bill %d: %w", id, err)
		}
		if err := tx.Delete(&models.Bill{}, id).Error; err != nil {
			return fmt.Errorf("remove bill %d: %w", id, err)
		}
		return nil
	})
}

func (s *Store) Tx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, bcryptCost: s.bcryptCost})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("SELECT 1").Error
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("bill_items.id")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
