package services

import (
	"errors"
	"strings"

	"github.com/diewo77/ebill/internal/models"
	"github.com/diewo77/ebill/validation"
)

// Sentinel errors returned by the services.
var (
	ErrNotFound           = errors.New("bill not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError carries the rejected input back to the caller so it can be
// redisplayed together with the field messages.
type ValidationError struct {
	Bill       *models.Bill
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations.Fields(), ", ")
}
