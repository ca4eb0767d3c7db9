package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists the order aggregate. The order row and its items are
// written in one transaction; items are immutable after that.
type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) Create(ctx context.Context, o *Order) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, seller_id, status, total_cents,
		                   shipping_address, payment_intent_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.CustomerID, o.SellerID, string(o.Status), o.TotalCents,
		o.ShippingAddress, nullable(o.PaymentIntentID), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, qty, price_cents)
			VALUES ($1,$2,$3,$4,$5)`,
			it.ID, it.OrderID, it.ProductID, it.Qty, it.PriceCents)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*Order, error) {
	var o Order
	var status string
	var paymentIntent *string
	err := s.DB.QueryRow(ctx, `
		SELECT id, customer_id, seller_id, status, total_cents,
		       shipping_address, payment_intent_id, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.CustomerID, &o.SellerID, &status, &o.TotalCents,
			&o.ShippingAddress, &paymentIntent, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	if paymentIntent != nil {
		o.PaymentIntentID = *paymentIntent
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, order_id, product_id, qty, price_cents
		FROM order_items WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus is a compare-and-swap on the status column: the WHERE guard
// makes the losing caller of a concurrent transition fail cleanly instead
// of overwriting the winner.
func (s *PGStore) UpdateStatus(ctx context.Context, id string, from, to Status) (*Order, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`, id, string(from), string(to))
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		var cur string
		err := s.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&cur)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrTransitionConflict
	}
	return s.FindByID(ctx, id)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
