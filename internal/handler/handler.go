// Package handler exposes the order and analytics services over HTTP.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/order-management/internal/analytics"
	"github.com/xenking/order-management/internal/domain/customer"
	"github.com/xenking/order-management/internal/domain/money"
	"github.com/xenking/order-management/internal/domain/order"
)

// Handler routes HTTP requests to the order and analytics services.
type Handler struct {
	orders    *order.Service
	analytics *analytics.Service
	lg        *zap.Logger
}

// New creates a Handler.
func New(orders *order.Service, analytics *analytics.Service, lg *zap.Logger) *Handler {
	return &Handler{
		orders:    orders,
		analytics: analytics,
		lg:        lg,
	}
}

// Routes returns the API route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/status", h.UpdateOrderStatus)
	})
	r.Get("/customers/{id}/orders", h.ListCustomerOrders)
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/orders", h.OrderAnalytics)
		r.Get("/orders/range", h.OrderAnalyticsRange)
	})

	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeDomainError maps domain errors to HTTP statuses. Anything not
// recognized is a 500 and gets logged; domain failures are the client's
// problem and are not.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, customer.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrEmptyProductName),
		errors.Is(err, order.ErrInvalidPrice),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrNegativeDiscount),
		errors.Is(err, order.ErrDiscountExceedsAmount),
		errors.Is(err, money.ErrCurrencyMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var transitionErr *order.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		writeError(w, http.StatusConflict, transitionErr.Error())
		return
	}

	h.lg.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
