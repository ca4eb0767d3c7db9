package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkflowMetrics struct {
	OrdersCreated   prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	StockReleases   prometheus.Counter
	CreateLatencyMS prometheus.Histogram
}

func NewWorkflowMetrics(service string) *WorkflowMetrics {
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ordercore",
		Subsystem: service,
		Name:      "orders_created_total",
		Help:      "Orders persisted successfully.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ordercore",
		Subsystem: service,
		Name:      "orders_rejected_total",
		Help:      "Create attempts that ended in an error, by reason.",
	}, []string{"reason"})
	releases := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ordercore",
		Subsystem: service,
		Name:      "stock_releases_total",
		Help:      "Stock releases issued for compensation or restocking.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ordercore",
		Subsystem: service,
		Name:      "order_create_duration_ms",
		Help:      "CreateOrder latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	prometheus.MustRegister(created, rejected, releases, latency)
	return &WorkflowMetrics{
		OrdersCreated:   created,
		OrdersRejected:  rejected,
		StockReleases:   releases,
		CreateLatencyMS: latency,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
