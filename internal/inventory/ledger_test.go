package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id string, stock int) Product {
	return Product{ID: id, SellerID: "s1", Name: "p-" + id, PriceCents: 500, Stock: stock, Category: "test"}
}

func TestReserve(t *testing.T) {
	l := &Ledger{Store: NewMemStore(testProduct("A", 5))}

	left, err := l.Reserve(context.Background(), "A", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	left, err = l.Reserve(context.Background(), "A", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	_, err = l.Reserve(context.Background(), "A", 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestReserveUnknownProduct(t *testing.T) {
	l := &Ledger{Store: NewMemStore()}
	_, err := l.Reserve(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReserveRejectsNonPositiveQty(t *testing.T) {
	l := &Ledger{Store: NewMemStore(testProduct("A", 5))}
	_, err := l.Reserve(context.Background(), "A", 0)
	assert.Error(t, err)
	_, err = l.Reserve(context.Background(), "A", -2)
	assert.Error(t, err)
}

func TestRelease(t *testing.T) {
	store := NewMemStore(testProduct("A", 2))
	l := &Ledger{Store: store}

	left, err := l.Release(context.Background(), "A", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, left)

	_, err = l.Release(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReleaseBumpsUpdatedAt(t *testing.T) {
	store := NewMemStore(testProduct("A", 2))
	l := &Ledger{Store: store}

	before, _ := store.FindByID(context.Background(), "A")
	_, err := l.Release(context.Background(), "A", 1)
	require.NoError(t, err)
	after, _ := store.FindByID(context.Background(), "A")
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}

// Many concurrent reservations on one product must behave like some strict
// sequential order: exactly `stock` units handed out, never more.
func TestConcurrentReserveNeverOversells(t *testing.T) {
	const initial = 30
	const callers = 50

	store := NewMemStore(testProduct("A", initial))
	l := &Ledger{Store: store}

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Reserve(context.Background(), "A", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	granted := 0
	for err := range errs {
		if err == nil {
			granted++
		} else {
			require.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, initial, granted)

	p, err := store.FindByID(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestAdjustStockGuard(t *testing.T) {
	store := NewMemStore(testProduct("A", 4))

	_, err := store.AdjustStock(context.Background(), "A", -5, 0)
	assert.ErrorIs(t, err, ErrStockConflict)

	left, err := store.AdjustStock(context.Background(), "A", -4, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, left)
}
