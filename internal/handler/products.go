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

	"github.com/pestaway/backoffice/internal/money"
	"github.com/pestaway/backoffice/internal/store"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *store.Store.
type ProductStore interface {
	CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
	ListProducts(ctx context.Context) ([]store.Product, error)
	UpdateProduct(ctx context.Context, arg store.UpdateProductParams) (store.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles product endpoints.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// --- Request / Response types ---

// productRequest accepts prices either as plain decimals ("150.00") or in
// the legacy display form ("150 EGP"); both parse to the same amount.
type productRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	SalePrice    string `json:"sale_price"`
	OnSale       bool   `json:"on_sale"`
	FreeDelivery bool   `json:"free_delivery"`
	ImageURL     string `json:"image_url"`
	InStock      bool   `json:"in_stock"`
}

type productResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        string    `json:"price"`
	SalePrice    string    `json:"sale_price"`
	OnSale       bool      `json:"on_sale"`
	FreeDelivery bool      `json:"free_delivery"`
	ImageURL     string    `json:"image_url,omitempty"`
	InStock      bool      `json:"in_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toProductResponse(p store.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description.String,
		Price:        numericToString(p.Price),
		SalePrice:    numericToString(p.SalePrice),
		OnSale:       p.OnSale,
		FreeDelivery: p.FreeDelivery,
		ImageURL:     p.ImageUrl.String,
		InStock:      p.InStock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// --- Handlers ---

// List returns the full catalog, alphabetical.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: failed to get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Create creates a catalog entry.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, salePrice, ok := parsePrices(w, req)
	if !ok {
		return
	}

	product, err := h.store.CreateProduct(r.Context(), store.CreateProductParams{
		Name:         req.Name,
		Description:  textOrNull(req.Description),
		Price:        decimalToNumeric(price),
		SalePrice:    decimalToNumeric(salePrice),
		OnSale:       req.OnSale,
		FreeDelivery: req.FreeDelivery,
		ImageUrl:     textOrNull(req.ImageURL),
		InStock:      req.InStock,
	})
	if err != nil {
		log.Printf("ERROR: failed to create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update replaces a product's editable fields. In-flight orders keep their
// price snapshots regardless.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, salePrice, ok := parsePrices(w, req)
	if !ok {
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), store.UpdateProductParams{
		ID:           id,
		Name:         req.Name,
		Description:  textOrNull(req.Description),
		Price:        decimalToNumeric(price),
		SalePrice:    decimalToNumeric(salePrice),
		OnSale:       req.OnSale,
		FreeDelivery: req.FreeDelivery,
		ImageUrl:     textOrNull(req.ImageURL),
		InStock:      req.InStock,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: failed to update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete removes a product from the catalog. Order items keep their
// snapshots, so history is unaffected.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetProduct(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: failed to get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		log.Printf("ERROR: failed to delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// parsePrices validates the name and parses both price fields, writing the
// error response itself on failure.
func parsePrices(w http.ResponseWriter, req productRequest) (price, salePrice decimal.Decimal, ok bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, decimal.Zero, false
	}

	price = money.ClampNonNegative(money.ParseDisplay(req.Price))
	if !price.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be greater than zero"})
		return decimal.Zero, decimal.Zero, false
	}

	salePrice = money.ClampNonNegative(money.ParseDisplay(req.SalePrice))
	if req.OnSale && !salePrice.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sale_price is required when on_sale is set"})
		return decimal.Zero, decimal.Zero, false
	}

	return price, salePrice, true
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
