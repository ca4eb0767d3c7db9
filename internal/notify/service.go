package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkax "github.com/dwiandhika/go-order-core/internal/kafka"
	"github.com/dwiandhika/go-order-core/internal/orders"
	"github.com/dwiandhika/go-order-core/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Service consumes order events and fans out notifications. Delivery here
// is just a log line; the contract is at-least-once with redis dedup.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is wired as the consumer handler for both order topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup by event_id across redeliveries
	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify customer=%s: order %s placed, total=%d cents, items=%d",
			p.CustomerID, p.OrderID, p.TotalCents, len(p.Items))
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("notify: order %s %s -> %s (restocked %d items)",
			p.OrderID, p.From, p.To, len(p.Restocked))
	default:
		// ignore unknown event types
	}
	return nil
}
