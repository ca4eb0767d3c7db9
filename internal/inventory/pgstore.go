package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps stock in the products table. The conditional adjustment is
// one UPDATE round trip; the WHERE guard is what makes reservations safe
// under concurrent requests.
type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) FindByID(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
		SELECT id, seller_id, name, price_cents, stock, category, images, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.PriceCents, &p.Stock, &p.Category, &p.Images, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, seller_id, name, price_cents, stock, category, images, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.PriceCents, &p.Stock, &p.Category, &p.Images, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AdjustStock applies delta only when the resulting stock stays >= floor.
// Check and write happen in the same statement, so no interleaving between
// concurrent adjusters can be observed.
func (s *PGStore) AdjustStock(ctx context.Context, id string, delta, floor int) (int, error) {
	var stock int
	err := s.DB.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= $3
		RETURNING stock`, id, delta, floor).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		// guard failed or row missing; callers classify
		return 0, ErrStockConflict
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}
