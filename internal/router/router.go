package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pestaway/backoffice/internal/config"
	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/handler"
	mw "github.com/pestaway/backoffice/internal/middleware"
	"github.com/pestaway/backoffice/internal/rates"
	"github.com/pestaway/backoffice/internal/service"
	"github.com/pestaway/backoffice/internal/store"
	"github.com/pestaway/backoffice/internal/ws"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, st *store.Store, pool *pgxpool.Pool, table *rates.Table, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",         // admin dev server
			"https://admin.pestaway.shop",   // production admin
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Orders
		newOrderStore := func(db store.DBTX) service.OrderStore {
			return store.New(db)
		}
		orderService := service.NewOrderService(pool, newOrderStore, table)
		orderHandler := handler.NewOrderHandler(orderService, st, hub)
		orderHandler.RegisterRoutes(r)

		// Customers
		customerHandler := handler.NewCustomerHandler(st)
		customerHandler.RegisterRoutes(r)

		// Products
		productHandler := handler.NewProductHandler(st)
		productHandler.RegisterRoutes(r)

		// Raw material purchases
		purchaseHandler := handler.NewPurchaseHandler(st)
		purchaseHandler.RegisterRoutes(r)

		// Blog
		blogHandler := handler.NewBlogHandler(st)
		blogHandler.RegisterRoutes(r)

		// Dashboard
		dashboardHandler := handler.NewDashboardHandler(st)
		dashboardHandler.RegisterRoutes(r)

		// Shipping rates reference data
		ratesHandler := handler.NewRatesHandler(table)
		ratesHandler.RegisterRoutes(r)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))

			userHandler := handler.NewUserHandler(st)
			userHandler.RegisterRoutes(r)
		})
	})

	return r
}
