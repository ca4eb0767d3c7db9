package inventory

import (
	"context"
	"errors"
	"fmt"
)

// ProductStore is the stock authority the ledger drives. AdjustStock must
// apply delta and the floor check in ONE atomic step (single conditional
// statement, no read-then-write), returning the resulting stock.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	// AdjustStock adds delta to the product's stock only if the result
	// stays >= floor. Returns ErrStockConflict when the guard fails,
	// ErrProductNotFound when the product does not exist.
	AdjustStock(ctx context.Context, id string, delta, floor int) (int, error)
}

// Ledger is the single point of truth for stock mutation. All reservations
// and releases go through here; concurrent callers on the same product are
// serialized by the store's conditional update, not by any lock held here.
type Ledger struct {
	Store ProductStore
}

// Reserve decrements stock by qty, succeeding only if qty units are
// available. Returns the remaining stock.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("reserve %s: qty must be positive, got %d", productID, qty)
	}
	left, err := l.Store.AdjustStock(ctx, productID, -qty, 0)
	if err == nil {
		return left, nil
	}
	if errors.Is(err, ErrStockConflict) {
		// the guard fired: either the row is gone or stock ran short
		if _, ferr := l.Store.FindByID(ctx, productID); errors.Is(ferr, ErrProductNotFound) {
			return 0, fmt.Errorf("reserve %s: %w", productID, ErrProductNotFound)
		}
		return 0, fmt.Errorf("reserve %s x%d: %w", productID, qty, ErrInsufficientStock)
	}
	if errors.Is(err, ErrProductNotFound) {
		return 0, fmt.Errorf("reserve %s: %w", productID, ErrProductNotFound)
	}
	return 0, fmt.Errorf("reserve %s: %w", productID, err)
}

// Release increments stock by qty. Used for compensation after a failed
// order attempt and for restocking on cancellation. The ledger itself does
// not dedup: callers must release each reservation exactly once.
func (l *Ledger) Release(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("release %s: qty must be positive, got %d", productID, qty)
	}
	left, err := l.Store.AdjustStock(ctx, productID, qty, 0)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrStockConflict) {
			return 0, fmt.Errorf("release %s: %w", productID, ErrProductNotFound)
		}
		return 0, fmt.Errorf("release %s: %w", productID, err)
	}
	return left, nil
}
