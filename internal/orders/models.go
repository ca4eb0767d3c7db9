package orders

import (
	"encoding/json"
	"time"
)

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	SellerID        string          `json:"seller_id"`
	Status          Status          `json:"status"` // see status.go
	TotalCents      int             `json:"total_cents"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"` // opaque, stored as-is
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is written once with its order and never mutated. PriceCents is
// the price snapshot at purchase time, not the product's current price.
type OrderItem struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

// LineItem is one product/qty/price entry of a create request.
type LineItem struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}
