package cart

import (
	"fmt"

	"vietfood/internal/domain"
)

// NotFoundError means the product or the requested variant is absent or inactive.
type NotFoundError struct {
	ProductID string
	VariantID string
}

func (e *NotFoundError) Error() string {
	if e.VariantID != "" {
		return fmt.Sprintf("product %s variant %s not found", e.ProductID, e.VariantID)
	}
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *NotFoundError) Unwrap() error { return domain.ErrNotFound }

// InsufficientStockError means Requested (incoming plus already in cart)
// exceeds Available.
type InsufficientStockError struct {
	ProductID string
	VariantID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return domain.ErrInsufficientStock }

// LookupError wraps a transport failure from the product lookup.
type LookupError struct {
	ProductID string
	Err       error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup product %s: %v", e.ProductID, e.Err)
}

func (e *LookupError) Unwrap() []error { return []error{domain.ErrLookupFailed, e.Err} }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

const (
	MinQuantity = 1
	MaxQuantity = 99
)

func validateQuantity(quantity, lower int) error {
	if quantity < lower || quantity > MaxQuantity {
		return &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be between %d and %d", lower, MaxQuantity)}
	}
	return nil
}
