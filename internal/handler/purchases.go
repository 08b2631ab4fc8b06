package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/store"
)

// PurchaseStore defines the database methods needed by purchase handlers.
// Satisfied by *store.Store.
type PurchaseStore interface {
	CreatePurchase(ctx context.Context, arg store.CreatePurchaseParams) (store.RawMaterialPurchase, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (store.RawMaterialPurchase, error)
	ListPurchases(ctx context.Context) ([]store.RawMaterialPurchase, error)
	UpdatePurchase(ctx context.Context, arg store.UpdatePurchaseParams) (store.RawMaterialPurchase, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error
}

// PurchaseHandler handles raw-material purchase endpoints.
type PurchaseHandler struct {
	store PurchaseStore
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(store PurchaseStore) *PurchaseHandler {
	return &PurchaseHandler{store: store}
}

// RegisterRoutes registers purchase endpoints on the given Chi router.
func (h *PurchaseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/purchases", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// --- Request / Response types ---

// purchaseRequest carries a raw-material purchase. total_cost is not
// accepted: it is always quantity * unit_cost, computed server-side.
type purchaseRequest struct {
	ItemName     string `json:"item_name"`
	Supplier     string `json:"supplier"`
	PurchaseDate string `json:"purchase_date"` // YYYY-MM-DD
	Quantity     string `json:"quantity"`
	Unit         string `json:"unit"`
	UnitCost     string `json:"unit_cost"`
	ShippingCost string `json:"shipping_cost"`
	Notes        string `json:"notes"`
	InvoiceURL   string `json:"invoice_url"`
}

type purchaseResponse struct {
	ID           uuid.UUID `json:"id"`
	ItemName     string    `json:"item_name"`
	Supplier     string    `json:"supplier,omitempty"`
	PurchaseDate string    `json:"purchase_date"`
	Quantity     string    `json:"quantity"`
	Unit         string    `json:"unit"`
	UnitCost     string    `json:"unit_cost"`
	TotalCost    string    `json:"total_cost"`
	ShippingCost string    `json:"shipping_cost"`
	Notes        string    `json:"notes,omitempty"`
	InvoiceURL   string    `json:"invoice_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPurchaseResponse(p store.RawMaterialPurchase) purchaseResponse {
	var date string
	if p.PurchaseDate.Valid {
		date = p.PurchaseDate.Time.Format("2006-01-02")
	}
	return purchaseResponse{
		ID:           p.ID,
		ItemName:     p.ItemName,
		Supplier:     p.Supplier.String,
		PurchaseDate: date,
		Quantity:     numericToString(p.Quantity),
		Unit:         p.Unit,
		UnitCost:     numericToString(p.UnitCost),
		TotalCost:    numericToString(p.TotalCost),
		ShippingCost: numericToString(p.ShippingCost),
		Notes:        p.Notes.String,
		InvoiceURL:   p.InvoiceUrl.String,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// --- Handlers ---

// List returns all purchases, most recent purchase date first.
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.store.ListPurchases(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list purchases: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, toPurchaseResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single purchase record.
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	purchase, err := h.store.GetPurchase(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase not found"})
			return
		}
		log.Printf("ERROR: failed to get purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPurchaseResponse(purchase))
}

// Create records a raw-material purchase.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	fields, ok := parsePurchase(w, req)
	if !ok {
		return
	}

	purchase, err := h.store.CreatePurchase(r.Context(), store.CreatePurchaseParams{
		ItemName:     req.ItemName,
		Supplier:     textOrNull(req.Supplier),
		PurchaseDate: fields.date,
		Quantity:     decimalToNumeric(fields.quantity),
		Unit:         req.Unit,
		UnitCost:     decimalToNumeric(fields.unitCost),
		TotalCost:    decimalToNumeric(fields.totalCost),
		ShippingCost: decimalToNumeric(fields.shippingCost),
		Notes:        textOrNull(req.Notes),
		InvoiceUrl:   textOrNull(req.InvoiceURL),
	})
	if err != nil {
		log.Printf("ERROR: failed to create purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toPurchaseResponse(purchase))
}

// Update replaces a purchase record's editable fields.
func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	fields, ok := parsePurchase(w, req)
	if !ok {
		return
	}

	purchase, err := h.store.UpdatePurchase(r.Context(), store.UpdatePurchaseParams{
		ID:           id,
		ItemName:     req.ItemName,
		Supplier:     textOrNull(req.Supplier),
		PurchaseDate: fields.date,
		Quantity:     decimalToNumeric(fields.quantity),
		Unit:         req.Unit,
		UnitCost:     decimalToNumeric(fields.unitCost),
		TotalCost:    decimalToNumeric(fields.totalCost),
		ShippingCost: decimalToNumeric(fields.shippingCost),
		Notes:        textOrNull(req.Notes),
		InvoiceUrl:   textOrNull(req.InvoiceURL),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase not found"})
			return
		}
		log.Printf("ERROR: failed to update purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPurchaseResponse(purchase))
}

// Delete removes a purchase record.
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetPurchase(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase not found"})
			return
		}
		log.Printf("ERROR: failed to get purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.DeletePurchase(r.Context(), id); err != nil {
		log.Printf("ERROR: failed to delete purchase: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

type purchaseFields struct {
	date         pgtype.Date
	quantity     decimal.Decimal
	unitCost     decimal.Decimal
	totalCost    decimal.Decimal
	shippingCost decimal.Decimal
}

// parsePurchase validates the request and derives total_cost, writing the
// error response itself on failure.
func parsePurchase(w http.ResponseWriter, req purchaseRequest) (purchaseFields, bool) {
	var f purchaseFields

	if req.ItemName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_name is required"})
		return f, false
	}
	if !isValidUnit(req.Unit) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit must be liter, kg or piece"})
		return f, false
	}

	if req.PurchaseDate != "" {
		t, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "purchase_date must be YYYY-MM-DD"})
			return f, false
		}
		f.date = pgtype.Date{Time: t, Valid: true}
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be greater than zero"})
		return f, false
	}
	unitCost, err := decimal.NewFromString(req.UnitCost)
	if err != nil || unitCost.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unit_cost must be a non-negative amount"})
		return f, false
	}

	f.shippingCost = decimal.Zero
	if req.ShippingCost != "" {
		f.shippingCost, err = decimal.NewFromString(req.ShippingCost)
		if err != nil || f.shippingCost.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shipping_cost must be a non-negative amount"})
			return f, false
		}
	}

	f.quantity = quantity
	f.unitCost = unitCost
	f.totalCost = quantity.Mul(unitCost)
	return f, true
}

func isValidUnit(u string) bool {
	switch u {
	case enum.UnitLiter, enum.UnitKg, enum.UnitPiece:
		return true
	}
	return false
}
