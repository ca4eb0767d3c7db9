package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dwiandhika/go-order-core/internal/inventory"
	"github.com/dwiandhika/go-order-core/internal/orders"
	"github.com/dwiandhika/go-order-core/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type OrdersHandler struct {
	Workflow *orders.Workflow
	Products inventory.ProductStore
	Redis    *redis.Client
}

type transitionReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Post("/orders/{id}/status", h.transitionStatus)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/products", h.listProducts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, orders.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, inventory.ErrProductNotFound), errors.Is(err, orders.ErrOrderNotFound):
		code = http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrTransitionConflict):
		code = http.StatusConflict
	case errors.Is(err, orders.ErrPersistence):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Workflow.CreateOrder(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) transitionStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Workflow.TransitionStatus(ctx, orderID, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// status cache first, DB stays the source of truth for the full order
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	o, err := h.Workflow.Store.FindByID(ctx, orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, o *orders.Order) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(o)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}
