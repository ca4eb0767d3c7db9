package inventory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore holds products in memory behind a single mutex. Used by tests
// and local runs without Postgres; same contract as PGStore.
type MemStore struct {
	mu       sync.Mutex
	products map[string]*Product
}

func NewMemStore(products ...Product) *MemStore {
	m := &MemStore{products: make(map[string]*Product, len(products))}
	for _, p := range products {
		cp := p
		m.products[p.ID] = &cp
	}
	return m
}

func (m *MemStore) FindByID(ctx context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return *p, nil
}

func (m *MemStore) List(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) AdjustStock(ctx context.Context, id string, delta, floor int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return 0, ErrProductNotFound
	}
	next := p.Stock + delta
	if next < floor {
		return 0, ErrStockConflict
	}
	p.Stock = next
	p.UpdatedAt = time.Now().UTC()
	return next, nil
}
