package inventory

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStockConflict is returned by ProductStore.AdjustStock when the
	// conditional update did not apply (resulting stock would drop below
	// the floor). The ledger translates it before callers see it.
	ErrStockConflict = errors.New("stock adjustment conflict")
)
