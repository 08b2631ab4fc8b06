package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pestaway/backoffice/internal/store"
)

type mockProductStore struct {
	createProductFn func(ctx context.Context, arg store.CreateProductParams) (store.Product, error)
	getProductFn    func(ctx context.Context, id uuid.UUID) (store.Product, error)
	listProductsFn  func(ctx context.Context) ([]store.Product, error)
	updateProductFn func(ctx context.Context, arg store.UpdateProductParams) (store.Product, error)
	deleteProductFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductStore) CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
	return m.createProductFn(ctx, arg)
}

func (m *mockProductStore) GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error) {
	return m.getProductFn(ctx, id)
}

func (m *mockProductStore) ListProducts(ctx context.Context) ([]store.Product, error) {
	return m.listProductsFn(ctx)
}

func (m *mockProductStore) UpdateProduct(ctx context.Context, arg store.UpdateProductParams) (store.Product, error) {
	return m.updateProductFn(ctx, arg)
}

func (m *mockProductStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.deleteProductFn(ctx, id)
}

func productsRouter(st ProductStore) http.Handler {
	r := chi.NewRouter()
	NewProductHandler(st).RegisterRoutes(r)
	return r
}

func TestProductCreate_ParsesLegacyDisplayPrice(t *testing.T) {
	var got store.CreateProductParams
	st := &mockProductStore{
		createProductFn: func(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
			got = arg
			return store.Product{ID: uuid.New(), Name: arg.Name, Price: arg.Price, SalePrice: arg.SalePrice}, nil
		},
	}
	router := productsRouter(st)

	rr := doJSON(t, router, "POST", "/products", productRequest{
		Name:    "Bed Bug Spray",
		Price:   "150 EGP",
		InStock: true,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if s := numericToString(got.Price); s != "150.00" {
		t.Errorf("price: got %q, want %q", s, "150.00")
	}
}

func TestProductCreate_PlainDecimalPrice(t *testing.T) {
	var got store.CreateProductParams
	st := &mockProductStore{
		createProductFn: func(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
			got = arg
			return store.Product{ID: uuid.New(), Name: arg.Name}, nil
		},
	}
	router := productsRouter(st)

	rr := doJSON(t, router, "POST", "/products", productRequest{
		Name:  "Ant Gel",
		Price: "79.99",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if s := numericToString(got.Price); s != "79.99" {
		t.Errorf("price: got %q, want %q", s, "79.99")
	}
}

func TestProductCreate_ZeroPriceRejected(t *testing.T) {
	router := productsRouter(&mockProductStore{})

	rr := doJSON(t, router, "POST", "/products", productRequest{
		Name:  "Bed Bug Spray",
		Price: "not a price",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProductCreate_OnSaleRequiresSalePrice(t *testing.T) {
	router := productsRouter(&mockProductStore{})

	rr := doJSON(t, router, "POST", "/products", productRequest{
		Name:   "Bed Bug Spray",
		Price:  "150.00",
		OnSale: true,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProductGet_NotFound(t *testing.T) {
	st := &mockProductStore{
		getProductFn: func(ctx context.Context, id uuid.UUID) (store.Product, error) {
			return store.Product{}, pgx.ErrNoRows
		},
	}
	router := productsRouter(st)

	rr := doJSON(t, router, "GET", "/products/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestProductList_RendersPrices(t *testing.T) {
	st := &mockProductStore{
		listProductsFn: func(ctx context.Context) ([]store.Product, error) {
			return []store.Product{{
				ID:        uuid.New(),
				Name:      "Bed Bug Spray",
				Price:     makeNumeric(t, "150.00"),
				SalePrice: makeNumeric(t, "120.00"),
				OnSale:    true,
				InStock:   true,
			}}, nil
		},
	}
	router := productsRouter(st)

	rr := doJSON(t, router, "GET", "/products", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp []productResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 product, got %d", len(resp))
	}
	if resp[0].Price != "150.00" || resp[0].SalePrice != "120.00" {
		t.Errorf("prices: %q / %q", resp[0].Price, resp[0].SalePrice)
	}
}

func TestProductDelete_NotFound(t *testing.T) {
	st := &mockProductStore{
		getProductFn: func(ctx context.Context, id uuid.UUID) (store.Product, error) {
			return store.Product{}, pgx.ErrNoRows
		},
	}
	router := productsRouter(st)

	rr := doJSON(t, router, "DELETE", "/products/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestProductDelete_NoContent(t *testing.T) {
	st := &mockProductStore{
		getProductFn: func(ctx context.Context, id uuid.UUID) (store.Product, error) {
			return store.Product{ID: id, Name: "Bed Bug Spray"}, nil
		},
		deleteProductFn: func(ctx context.Context, id uuid.UUID) error {
			return nil
		},
	}
	router := productsRouter(st)

	rr := doJSON(t, router, "DELETE", "/products/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}
