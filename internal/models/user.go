package models

import (
	"time"
)

// User represents an account allowed to sign in.
// Users are provisioned by seeding; the application only reads them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;size:255;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
}
