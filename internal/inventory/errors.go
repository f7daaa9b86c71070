package inventory

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrItemNotFound      = errors.New("Item not found")
	ErrSaleNotFound      = errors.New("Sale not found")
	ErrCategoryNotFound  = errors.New("Category not found")
	ErrInvalidQuantity   = errors.New("Quantity must be a positive integer")
	ErrInsufficientStock = errors.New("Insufficient stock")
)

// InsufficientStockError carries the quantity that was available when the
// request was rejected. It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Only %d items available", e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
