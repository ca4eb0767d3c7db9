package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dwiandhika/go-order-core/internal/inventory"
	"github.com/dwiandhika/go-order-core/internal/metrics"
	"github.com/google/uuid"
)

// OrderStore is durable storage for the order aggregate.
type OrderStore interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// UpdateStatus applies the change only while the order is still in
	// from; returns ErrTransitionConflict when another caller won.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Order, error)
}

type CreateOrderInput struct {
	CustomerID      string          `json:"customer_id"`
	SellerID        string          `json:"seller_id"`
	Items           []LineItem      `json:"items"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
}

func (in CreateOrderInput) validate() error {
	if in.CustomerID == "" || in.SellerID == "" {
		return fmt.Errorf("%w: customer_id and seller_id required", ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: at least one item required", ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: item without product_id", ErrInvalidInput)
		}
		if it.Qty <= 0 {
			return fmt.Errorf("%w: qty must be positive for product %s", ErrInvalidInput, it.ProductID)
		}
		if it.PriceCents < 0 {
			return fmt.Errorf("%w: negative price for product %s", ErrInvalidInput, it.ProductID)
		}
	}
	return nil
}

// Workflow runs order creation as a saga: reserve stock per line item,
// persist the aggregate, and on any failure release exactly what was
// reserved. There is no cross-store transaction; the per-product
// conditional update in the ledger is the only serialization point.
type Workflow struct {
	Ledger  *inventory.Ledger
	Store   OrderStore
	Events  Publisher                // optional
	Metrics *metrics.WorkflowMetrics // optional
}

// CreateOrder reserves stock for every item in input order, then persists
// the order as PENDING. Callers see exactly one terminal result: the
// persisted order, or one error with no stock consumed.
func (w *Workflow) CreateOrder(ctx context.Context, in CreateOrderInput) (o *Order, err error) {
	start := time.Now()
	defer func() {
		w.observeCreate(start, err)
	}()

	if err = in.validate(); err != nil {
		return nil, err
	}

	total := 0
	for _, it := range in.Items {
		total += it.Qty * it.PriceCents
	}

	// Compensation must run on every failure path, including panics and
	// caller aborts, so it hangs off a defer and a detached context.
	reserved := make([]LineItem, 0, len(in.Items))
	committed := false
	defer func() {
		if !committed {
			w.releaseAll(context.WithoutCancel(ctx), reserved)
		}
	}()

	for _, it := range in.Items {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		if _, rerr := w.Ledger.Reserve(ctx, it.ProductID, it.Qty); rerr != nil {
			return nil, rerr
		}
		reserved = append(reserved, it)
	}

	now := time.Now().UTC()
	o = &Order{
		ID:              uuid.NewString(),
		CustomerID:      in.CustomerID,
		SellerID:        in.SellerID,
		Status:          StatusPending,
		TotalCents:      total,
		ShippingAddress: in.ShippingAddress,
		PaymentIntentID: in.PaymentIntentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.Items = make([]OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		o.Items = append(o.Items, OrderItem{
			ID:         uuid.NewString(),
			OrderID:    o.ID,
			ProductID:  it.ProductID,
			Qty:        it.Qty,
			PriceCents: it.PriceCents,
		})
	}

	if serr := w.Store.Create(ctx, o); serr != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, serr)
	}
	committed = true

	if w.Events != nil {
		w.Events.OrderCreated(o)
	}
	return o, nil
}

// TransitionStatus moves an order forward through the state machine.
// PENDING/PAID -> CANCELLED restocks every item; the conditional status
// update guarantees only one caller wins, so restock runs at most once.
func (w *Workflow) TransitionStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	if !ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	o, err := w.Store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	updated, err := w.Store.UpdateStatus(ctx, orderID, o.Status, next)
	if err != nil {
		return nil, err
	}

	var restocked []LineItem
	if next == StatusCancelled {
		restocked = make([]LineItem, 0, len(o.Items))
		for _, it := range o.Items {
			restocked = append(restocked, LineItem{ProductID: it.ProductID, Qty: it.Qty, PriceCents: it.PriceCents})
		}
		w.releaseAll(context.WithoutCancel(ctx), restocked)
	}

	if w.Events != nil {
		w.Events.StatusChanged(updated, o.Status, restocked)
	}
	return updated, nil
}

// releaseAll returns every given reservation to stock, exactly once each.
// A failed release is logged and skipped; stopping early would strand the
// remaining reservations for certain.
func (w *Workflow) releaseAll(ctx context.Context, items []LineItem) {
	for _, it := range items {
		if _, err := w.Ledger.Release(ctx, it.ProductID, it.Qty); err != nil {
			log.Printf("release %s x%d failed: %v", it.ProductID, it.Qty, err)
			continue
		}
		if w.Metrics != nil {
			w.Metrics.StockReleases.Inc()
		}
	}
}

func (w *Workflow) observeCreate(start time.Time, err error) {
	if w.Metrics == nil {
		return
	}
	w.Metrics.CreateLatencyMS.Observe(float64(time.Since(start).Milliseconds()))
	if err == nil {
		w.Metrics.OrdersCreated.Inc()
		return
	}
	w.Metrics.OrdersRejected.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, inventory.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "aborted"
	default:
		return "other"
	}
}
