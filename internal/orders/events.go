package orders

import (
	"encoding/json"
	"time"

	kafkax "github.com/dwiandhika/go-order-core/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "order-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string     `json:"order_id"`
	CustomerID string     `json:"customer_id"`
	SellerID   string     `json:"seller_id"`
	Items      []LineItem `json:"items"`
	TotalCents int        `json:"total_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	// Restocked is set on cancellation: the quantities returned to stock.
	Restocked []LineItem `json:"restocked,omitempty"`
}

// Publisher receives workflow outcomes. Implementations must not block the
// workflow; failures to publish never fail the order.
type Publisher interface {
	OrderCreated(o *Order)
	StatusChanged(o *Order, from Status, restocked []LineItem)
}

// KafkaPublisher emits envelopes on the order topics, one producer per
// topic like the rest of the pipeline.
type KafkaPublisher struct {
	Created *kafkax.Producer
	Status  *kafkax.Producer
	Service string
}

func (p *KafkaPublisher) OrderCreated(o *Order) {
	items := make([]LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, LineItem{ProductID: it.ProductID, Qty: it.Qty, PriceCents: it.PriceCents})
	}
	p.publish(p.Created, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		SellerID:   o.SellerID,
		Items:      items,
		TotalCents: o.TotalCents,
	})
}

func (p *KafkaPublisher) StatusChanged(o *Order, from Status, restocked []LineItem) {
	p.publish(p.Status, EventOrderStatusChanged, o.ID, OrderStatusChangedPayload{
		OrderID:   o.ID,
		From:      from,
		To:        o.Status,
		Restocked: restocked,
	})
}

func (p *KafkaPublisher) publish(prod *kafkax.Producer, eventType, orderID string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	prod.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
