package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dwiandhika/go-order-core/internal/config"
	kafkax "github.com/dwiandhika/go-order-core/internal/kafka"
	"github.com/dwiandhika/go-order-core/internal/notify"
	"github.com/dwiandhika/go-order-core/internal/orders"
	"github.com/dwiandhika/go-order-core/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	// one consumer per topic, same handler
	for _, topic := range []string{orders.TopicOrderCreated, orders.TopicOrderStatusChanged} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, svc.HandleEvent); err != nil {
				log.Printf("consumer %s exit: %v", topic, err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
