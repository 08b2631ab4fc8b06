package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pestaway/backoffice/internal/rates"
)

// RatesHandler serves the shipping rate reference data the order form needs.
type RatesHandler struct {
	table *rates.Table
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(table *rates.Table) *RatesHandler {
	return &RatesHandler{table: table}
}

// RegisterRoutes registers shipping rate endpoints on the given Chi router.
func (h *RatesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shipping/governorates", h.ListGovernorates)
	r.Get("/shipping/governorates/{governorate}/cities", h.ListCities)
}

type cityResponse struct {
	Name        string `json:"name"`
	ShippingFee string `json:"shipping_fee"`
}

// ListGovernorates returns all governorate names, sorted.
func (h *RatesHandler) ListGovernorates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.table.Governorates())
}

// ListCities returns the cities of one governorate with their fees.
func (h *RatesHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	governorate := chi.URLParam(r, "governorate")

	cities := h.table.Cities(governorate)
	if cities == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown governorate"})
		return
	}

	resp := make([]cityResponse, 0, len(cities))
	for _, c := range cities {
		resp = append(resp, cityResponse{Name: c.Name, ShippingFee: c.ShippingFee.StringFixed(2)})
	}
	writeJSON(w, http.StatusOK, resp)
}
