package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/store"
)

type mockUserStore struct {
	createUserFn func(ctx context.Context, arg store.CreateUserParams) (store.User, error)
	listUsersFn  func(ctx context.Context) ([]store.User, error)
}

func (m *mockUserStore) CreateUser(ctx context.Context, arg store.CreateUserParams) (store.User, error) {
	return m.createUserFn(ctx, arg)
}

func (m *mockUserStore) ListUsers(ctx context.Context) ([]store.User, error) {
	return m.listUsersFn(ctx)
}

func usersRouter(st UserStore) http.Handler {
	r := chi.NewRouter()
	NewUserHandler(st).RegisterRoutes(r)
	return r
}

func TestUserCreate_HashesPassword(t *testing.T) {
	var got store.CreateUserParams
	st := &mockUserStore{
		createUserFn: func(ctx context.Context, arg store.CreateUserParams) (store.User, error) {
			got = arg
			return store.User{Email: arg.Email, Name: arg.Name, Role: arg.Role}, nil
		},
	}
	router := usersRouter(st)

	rr := doJSON(t, router, "POST", "/users", createUserRequest{
		Email:    "sara@pestaway.com",
		Password: "a-strong-password",
		Name:     "Sara",
		Role:     enum.UserRoleStaff,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.PasswordHash == "a-strong-password" {
		t.Fatal("password stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("a-strong-password")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	var resp staffResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	// The hash must never leave the server.
	if rr.Body.String() == "" || resp.Email != "sara@pestaway.com" {
		t.Errorf("unexpected response: %s", rr.Body.String())
	}
}

func TestUserCreate_ShortPassword(t *testing.T) {
	router := usersRouter(&mockUserStore{})

	rr := doJSON(t, router, "POST", "/users", createUserRequest{
		Email:    "sara@pestaway.com",
		Password: "short",
		Name:     "Sara",
		Role:     enum.UserRoleStaff,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUserCreate_InvalidRole(t *testing.T) {
	router := usersRouter(&mockUserStore{})

	rr := doJSON(t, router, "POST", "/users", createUserRequest{
		Email:    "sara@pestaway.com",
		Password: "a-strong-password",
		Name:     "Sara",
		Role:     "SUPERUSER",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUserCreate_DuplicateEmailIs409(t *testing.T) {
	st := &mockUserStore{
		createUserFn: func(ctx context.Context, arg store.CreateUserParams) (store.User, error) {
			return store.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		},
	}
	router := usersRouter(st)

	rr := doJSON(t, router, "POST", "/users", createUserRequest{
		Email:    "sara@pestaway.com",
		Password: "a-strong-password",
		Name:     "Sara",
		Role:     enum.UserRoleAdmin,
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestUserList_OmitsPasswordHash(t *testing.T) {
	st := &mockUserStore{
		listUsersFn: func(ctx context.Context) ([]store.User, error) {
			u := testUser(t, "secret-password")
			return []store.User{u}, nil
		},
	}
	router := usersRouter(st)

	rr := doJSON(t, router, "GET", "/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var raw []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("expected 1 user, got %d", len(raw))
	}
	if _, leaked := raw[0]["password_hash"]; leaked {
		t.Error("password_hash must not appear in the response")
	}
}
