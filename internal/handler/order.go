package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/order-management/internal/domain/order"
)

type createOrderRequest struct {
	CustomerID string             `json:"customerId"`
	Notes      string             `json:"notes"`
	Items      []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customerId"`
	Items          []orderItemResponse `json:"items"`
	Amount         float64             `json:"amount"`
	DiscountAmount float64             `json:"discountAmount"`
	FinalAmount    float64             `json:"finalAmount"`
	Currency       string              `json:"currency"`
	Status         string              `json:"status"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	FulfilledAt    *time.Time          `json:"fulfilledAt,omitempty"`
}

// CreateOrder places a new order for a customer.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "customerId is required")
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.ItemRequest{
			ProductName: item.ProductName,
			Price:       decimal.NewFromFloat(item.Price),
			Quantity:    item.Quantity,
		}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		CustomerID: req.CustomerID,
		Notes:      req.Notes,
		Items:      items,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrder returns a single order by ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders returns every order, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// ListCustomerOrders returns the orders of one customer, newest first.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// UpdateOrderStatus transitions an order to a new lifecycle status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductName: item.ProductName,
			Price:       item.Price.Amount.InexactFloat64(),
			Quantity:    item.Quantity,
		}
	}

	return orderResponse{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Items:          items,
		Amount:         o.Amount.Amount.InexactFloat64(),
		DiscountAmount: o.DiscountAmount.Amount.InexactFloat64(),
		FinalAmount:    o.FinalAmount().Amount.InexactFloat64(),
		Currency:       o.Amount.Currency,
		Status:         string(o.Status),
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		FulfilledAt:    o.FulfilledAt,
	}
}

func toOrderResponses(orders []*order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}
