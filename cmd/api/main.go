package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dwiandhika/go-order-core/internal/config"
	"github.com/dwiandhika/go-order-core/internal/httpx"
	"github.com/dwiandhika/go-order-core/internal/inventory"
	kafkax "github.com/dwiandhika/go-order-core/internal/kafka"
	"github.com/dwiandhika/go-order-core/internal/metrics"
	"github.com/dwiandhika/go-order-core/internal/orders"
	"github.com/dwiandhika/go-order-core/internal/postgres"
	"github.com/dwiandhika/go-order-core/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	pStatus.Start(ctx)

	products := &inventory.PGStore{DB: db}
	wf := &orders.Workflow{
		Ledger: &inventory.Ledger{Store: products},
		Store:  &orders.PGStore{DB: db},
		Events: &orders.KafkaPublisher{
			Created: pCreated,
			Status:  pStatus,
			Service: cfg.ServiceName,
		},
		Metrics: metrics.NewWorkflowMetrics("api"),
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Workflow: wf,
		Products: products,
		Redis:    rdb,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close() // close inbox -> flush & close writer
	pStatus.Close()
	pCreated.WaitClosed()
	pStatus.WaitClosed()
}
