package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound covers every scoped miss: unknown id, or an id that exists
// under a different store. Callers must not distinguish the two cases.
var ErrNotFound = errors.New("not found")

// ErrDuplicateSubdomain is returned when a store creation collides with an
// existing subdomain.
var ErrDuplicateSubdomain = errors.New("subdomain already taken")

// InsufficientStockError names the variant and the shortfall.
type InsufficientStockError struct {
	VariantName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.VariantName, e.Requested, e.Available)
}

// ErrInsufficientStock lets callers match any InsufficientStockError with
// errors.Is.
var ErrInsufficientStock = errors.New("insufficient stock")

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
