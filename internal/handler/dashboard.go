package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pestaway/backoffice/internal/store"
)

// DashboardStore defines the database methods needed by the dashboard.
// Satisfied by *store.Store.
type DashboardStore interface {
	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	MonthRevenue(ctx context.Context) (string, error)
	ListRecentOrders(ctx context.Context, limit int32) ([]store.Order, error)
}

// DashboardHandler serves the landing-page stats.
type DashboardHandler struct {
	store DashboardStore
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.Stats)
}

type dashboardResponse struct {
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	TotalCustomers int64            `json:"total_customers"`
	TotalProducts  int64            `json:"total_products"`
	MonthRevenue   string           `json:"month_revenue"`
	RecentOrders   []orderResponse  `json:"recent_orders"`
}

// Stats returns order counts by status, customer and product totals, the
// current month's delivered revenue, and the five most recent orders.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	byStatus, err := h.store.CountOrdersByStatus(ctx)
	if err != nil {
		log.Printf("ERROR: failed to count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	customers, err := h.store.CountCustomers(ctx)
	if err != nil {
		log.Printf("ERROR: failed to count customers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	products, err := h.store.CountProducts(ctx)
	if err != nil {
		log.Printf("ERROR: failed to count products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	revenue, err := h.store.MonthRevenue(ctx)
	if err != nil {
		log.Printf("ERROR: failed to sum month revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	recent, err := h.store.ListRecentOrders(ctx, 5)
	if err != nil {
		log.Printf("ERROR: failed to list recent orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	recentResp := make([]orderResponse, 0, len(recent))
	for _, o := range recent {
		recentResp = append(recentResp, toOrderResponse(o, nil))
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		OrdersByStatus: byStatus,
		TotalCustomers: customers,
		TotalProducts:  products,
		MonthRevenue:   revenue,
		RecentOrders:   recentResp,
	})
}
