package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock indicates a quantity exceeds the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrLookupFailed indicates the product lookup could not be completed.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrInvalidInput indicates a request failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
