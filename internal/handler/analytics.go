package handler

import (
	"net/http"
	"time"

	"github.com/xenking/order-management/internal/analytics"
)

const dateLayout = "2006-01-02"

type analyticsResponse struct {
	AverageOrderValue      float64        `json:"averageOrderValue"`
	AverageFulfillmentSecs float64        `json:"averageFulfillmentTimeSeconds"`
	TotalOrders            int            `json:"totalOrders"`
	TotalRevenue           float64        `json:"totalRevenue"`
	OrdersByStatus         map[string]int `json:"ordersByStatus"`
}

// OrderAnalytics returns aggregate metrics over all orders.
func (h *Handler) OrderAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.Overview(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnalyticsResponse(report))
}

// OrderAnalyticsRange returns aggregate metrics for orders created within
// the [start, end] date range. Dates use the YYYY-MM-DD format.
func (h *Handler) OrderAnalyticsRange(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be a YYYY-MM-DD date")
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be a YYYY-MM-DD date")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	report, err := h.analytics.ByDateRange(r.Context(), start, end)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnalyticsResponse(report))
}

func toAnalyticsResponse(report analytics.Report) analyticsResponse {
	return analyticsResponse{
		AverageOrderValue:      report.AverageOrderValue.InexactFloat64(),
		AverageFulfillmentSecs: report.AverageFulfillmentTime.Seconds(),
		TotalOrders:            report.TotalOrders,
		TotalRevenue:           report.TotalRevenue.InexactFloat64(),
		OrdersByStatus:         report.OrdersByStatus,
	}
}
