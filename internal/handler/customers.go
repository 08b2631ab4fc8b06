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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/phone"
	"github.com/pestaway/backoffice/internal/store"
)

// CustomerStore defines the database methods needed by customer handlers.
// Satisfied by *store.Store.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, arg store.CreateCustomerParams) (store.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (store.Customer, error)
	ListCustomers(ctx context.Context, arg store.ListCustomersParams) ([]store.Customer, error)
	UpdateCustomer(ctx context.Context, arg store.UpdateCustomerParams) (store.Customer, error)
	SetCustomerStatus(ctx context.Context, id uuid.UUID, status string) (store.Customer, error)
	ListOrders(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error)
}

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	store CustomerStore
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// RegisterRoutes registers customer endpoints on the given Chi router.
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/status", h.SetStatus)
		r.Get("/{id}/orders", h.ListOrders)
	})
}

// --- Request / Response types ---

type customerRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	SecondPhone string `json:"second_phone"`
	Email       string `json:"email"`
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	LandMark    string `json:"land_mark"`
	FullAddress string `json:"full_address"`
	Notes       string `json:"notes"`
}

type customerStatusRequest struct {
	Status string `json:"status"`
}

type customerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	SecondPhone string    `json:"second_phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Governorate string    `json:"governorate,omitempty"`
	City        string    `json:"city,omitempty"`
	LandMark    string    `json:"land_mark,omitempty"`
	FullAddress string    `json:"full_address,omitempty"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCustomerResponse(c store.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		SecondPhone: c.SecondPhone.String,
		Email:       c.Email.String,
		Governorate: c.Governorate.String,
		City:        c.City.String,
		LandMark:    c.LandMark.String,
		FullAddress: c.FullAddress.String,
		Status:      c.Status,
		Notes:       c.Notes.String,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// --- Handlers ---

// List returns customers, newest first, optionally filtered by status.
// Soft-deleted customers are never included.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	status := r.URL.Query().Get("status")
	if status != "" && status != enum.CustomerStatusActive && status != enum.CustomerStatusArchived {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
		return
	}

	customers, err := h.store.ListCustomers(r.Context(), store.ListCustomersParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.Printf("ERROR: failed to list customers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single customer.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	customer, err := h.store.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		log.Printf("ERROR: failed to get customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// Create creates a customer. The phone is normalized before storage; a
// duplicate phone is a conflict.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	normalized := phone.Normalize(req.Phone)
	if !phone.IsValid(normalized) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone must normalize to 11 digits"})
		return
	}

	customer, err := h.store.CreateCustomer(r.Context(), store.CreateCustomerParams{
		Name:        req.Name,
		Phone:       normalized,
		SecondPhone: textOrNull(phone.Normalize(req.SecondPhone)),
		Email:       textOrNull(req.Email),
		Governorate: textOrNull(req.Governorate),
		City:        textOrNull(req.City),
		LandMark:    textOrNull(req.LandMark),
		FullAddress: textOrNull(req.FullAddress),
		Status:      enum.CustomerStatusActive,
		Notes:       textOrNull(req.Notes),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a customer with this phone already exists"})
			return
		}
		log.Printf("ERROR: failed to create customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

// Update replaces a customer's editable fields.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	normalized := phone.Normalize(req.Phone)
	if !phone.IsValid(normalized) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone must normalize to 11 digits"})
		return
	}

	customer, err := h.store.UpdateCustomer(r.Context(), store.UpdateCustomerParams{
		ID:          id,
		Name:        req.Name,
		Phone:       normalized,
		SecondPhone: textOrNull(phone.Normalize(req.SecondPhone)),
		Email:       textOrNull(req.Email),
		Governorate: textOrNull(req.Governorate),
		City:        textOrNull(req.City),
		LandMark:    textOrNull(req.LandMark),
		FullAddress: textOrNull(req.FullAddress),
		Notes:       textOrNull(req.Notes),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a customer with this phone already exists"})
			return
		}
		log.Printf("ERROR: failed to update customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// SetStatus moves a customer between active and archived.
func (h *CustomerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req customerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status != enum.CustomerStatusActive && req.Status != enum.CustomerStatusArchived {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be active or archived"})
		return
	}

	customer, err := h.store.SetCustomerStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		log.Printf("ERROR: failed to set customer status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// Delete soft-deletes a customer. The row stays so order history keeps its
// reference.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.SetCustomerStatus(r.Context(), id, enum.CustomerStatusDeleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		log.Printf("ERROR: failed to delete customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrders returns the customer's orders, newest first.
func (h *CustomerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetCustomer(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		log.Printf("ERROR: failed to get customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	limit, offset := parsePagination(r)
	orders, err := h.store.ListOrders(r.Context(), store.ListOrdersParams{
		CustomerID: pgtype.UUID{Bytes: id, Valid: true},
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		log.Printf("ERROR: failed to list customer orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
