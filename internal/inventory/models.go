package inventory

import "time"

type Product struct {
	ID         string    `json:"id"`
	SellerID   string    `json:"seller_id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	Category   string    `json:"category"`
	Images     []string  `json:"images,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
