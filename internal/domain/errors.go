package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity          = errors.New("quantity must be positive")
	ErrEmptyCart                = errors.New("cart has no line items")
	ErrMissingClerk             = errors.New("no clerk identity attached")
	ErrCustomerRequired         = errors.New("customer required for email delivery")
	ErrDocumentCustomerMismatch = errors.New("customer document does not match document type")
	ErrDuplicateDocumentNumber  = errors.New("customer document number already registered")
	ErrProductNotFound          = errors.New("product not found")
	ErrCustomerNotFound         = errors.New("customer not found")
	ErrSaleNotFound             = errors.New("sale not found")
)

// InsufficientStockError names the product whose available stock cannot cover
// the requested quantity.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// PersistenceError wraps any failure of the atomic commit after rollback.
// It is never retried automatically.
type PersistenceError struct {
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("sale commit failed: %v", e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}
