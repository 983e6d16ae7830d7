package api

import (
	"context"
	"net/http"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Services groups the domain services used by the handlers
type Services struct {
	Products  *services.ProductService
	Carts     *services.CartService
	Wishlists *services.WishlistService
	Orders    *services.OrderService
	Users     *services.UserService
}

// App holds application dependencies
type App struct {
	db       *db.DB
	metrics  *metrics.AppMetrics
	tokens   *auth.TokenManager
	logger   *zap.Logger
	services Services
}

// NewApp creates a new application instance
func NewApp(database *db.DB, m *metrics.AppMetrics, tokens *auth.TokenManager, svc Services, logger *zap.Logger) *App {
	return &App{
		db:       database,
		metrics:  m,
		tokens:   tokens,
		logger:   logger,
		services: svc,
	}
}

// Router builds the HTTP routes with the middleware chain
func (a *App) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.MetricsMiddleware(a.metrics, a.logger))
	r.Use(middleware.ErrorHandlerMiddleware(a.logger))

	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Catalog
	api.HandleFunc("/categories", a.ListCategoriesHandler).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}/products", a.ListCategoryProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products", a.ListProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", a.GetProductHandler).Methods(http.MethodGet)

	// Sign-up
	api.HandleFunc("/users", a.CreateUserHandler).Methods(http.MethodPost)

	secured := api.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(a.tokens, a.metrics))

	// Profile
	secured.HandleFunc("/user/profile", a.GetProfileHandler).Methods(http.MethodGet)
	secured.HandleFunc("/user/profile", a.UpdateProfileHandler).Methods(http.MethodPut)

	// Cart
	secured.HandleFunc("/cart", a.AddToCartHandler).Methods(http.MethodPost)
	secured.HandleFunc("/cart", a.GetCartHandler).Methods(http.MethodGet)
	secured.HandleFunc("/cart", a.ClearCartHandler).Methods(http.MethodDelete)
	secured.HandleFunc("/cart/update/{productId}", a.UpdateCartItemHandler).Methods(http.MethodPut)
	secured.HandleFunc("/cart/remove/{productId}", a.RemoveFromCartHandler).Methods(http.MethodDelete)

	// Wishlist
	secured.HandleFunc("/wishlist", a.AddToWishlistHandler).Methods(http.MethodPost)
	secured.HandleFunc("/wishlist", a.GetWishlistHandler).Methods(http.MethodGet)
	secured.HandleFunc("/wishlist/remove/{productId}", a.RemoveFromWishlistHandler).Methods(http.MethodDelete)

	// Orders
	secured.HandleFunc("/order", a.CreateOrderHandler).Methods(http.MethodPost)
	secured.HandleFunc("/order", a.ListOrdersHandler).Methods(http.MethodGet)
	secured.HandleFunc("/order/{orderId}", a.GetOrderHandler).Methods(http.MethodGet)

	return r
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
