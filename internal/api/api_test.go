package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/audit"
	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/db/dbtest"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/internal/validation"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	db     *db.DB
	router *mux.Router
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, zap.NewNop())
}

func newTestServerWithLogger(t *testing.T, logger *zap.Logger) *testServer {
	t.Helper()

	database := dbtest.Open(t)
	_, err := database.Seed(context.Background())
	require.NoError(t, err)

	m, err := metrics.NewAppMetrics(noop.NewMeterProvider().Meter("test"), "storefront-test", database.Dialect())
	require.NoError(t, err)

	v := validation.New()
	products := services.NewProductService(database, m, cache.NewMemoryCache(time.Minute), logger)
	svc := Services{
		Products:  products,
		Carts:     services.NewCartService(database, m, v, logger),
		Wishlists: services.NewWishlistService(database, m, v, logger),
		Orders:    services.NewOrderService(database, m, v, products, audit.Nop{}, logger),
		Users:     services.NewUserService(database, m, v, auth.NewPasswordHasher(bcrypt.MinCost), audit.Nop{}, logger),
	}
	tokens := auth.NewTokenManager("test-secret", "storefront-test", time.Hour)

	app := NewApp(database, m, tokens, svc, logger)
	return &testServer{t: t, db: database, router: app.Router()}
}

// do sends a request and decodes the JSON response into a generic map
func (s *testServer) do(method, path, token string, body any) (int, map[string]any) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (s *testServer) signUp(email string) string {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/api/v1/users", "", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, status, body)
	assert.Equal(s.t, "Bearer", body["token_type"])
	return body["access_token"].(string)
}

func checkoutBody() map[string]any {
	return map[string]any{
		"shippingInfo": map[string]any{
			"first_name": "Ada",
			"last_name":  "Lovelace",
			"email":      "ada@example.com",
			"phone":      "5551234567",
			"address":    "12 Analytical Way",
			"city":       "London",
			"state":      "LDN",
			"zip_code":   "12345",
		},
		"paymentInfo": map[string]any{
			"card_last_four": "4242",
			"card_type":      "visa",
		},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestRouter_RecoveredPanicIsLoggedAsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := newTestServerWithLogger(t, zap.New(core))
	s.router.HandleFunc("/explode", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}).Methods(http.MethodGet)

	status, body := s.do(http.MethodGet, "/explode", "", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error", body["message"])

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	fields := requests[0].ContextMap()
	assert.Equal(t, "/explode", fields["route"])
	assert.EqualValues(t, http.StatusInternalServerError, fields["status"])
	assert.Equal(t, 1, logs.FilterMessage("panic while serving request").Len())
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Len(t, categories, 5)

	status, body := s.do(http.MethodGet, "/api/v1/products?search=keychain&limit=2", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 2)
	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 4, pagination["totalItems"])
	assert.EqualValues(t, 2, pagination["totalPages"])
	assert.Equal(t, true, pagination["hasNextPage"])

	status, body = s.do(http.MethodGet, "/api/v1/products?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid minPrice", body["message"])

	status, body = s.do(http.MethodGet, "/api/v1/products/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Crochet Teddy Bear", body["name"])
	assert.Equal(t, "32.50", body["price"])

	status, body = s.do(http.MethodGet, "/api/v1/products/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", body["message"])

	status, _ = s.do(http.MethodGet, "/api/v1/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(http.MethodGet, "/api/v1/categories/9999/products", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Category not found", body["message"])
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/order"},
		{http.MethodGet, "/api/v1/wishlist"},
		{http.MethodGet, "/api/v1/user/profile"},
	} {
		status, body := s.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, route.path)
		assert.Equal(t, "Authorization header is required", body["message"])
	}

	status, _ := s.do(http.MethodGet, "/api/v1/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("buyer@example.com")

	status, body := s.do(http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["cart_id"])
	assert.Equal(t, []any{}, body["items"])
	assert.Equal(t, "0.00", body["total_price"])

	status, body = s.do(http.MethodPost, "/api/v1/cart", token, map[string]any{"product_id": 1, "quantity": 3})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Product added to cart successfully", body["message"])
	assert.NotNil(t, body["cart_id"])

	status, body = s.do(http.MethodPost, "/api/v1/cart", token, map[string]any{"product_id": 1, "quantity": 99})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient stock. Available: 8", body["message"])

	bad := checkoutBody()
	bad["paymentInfo"].(map[string]any)["card_last_four"] = "12a4"
	status, body = s.do(http.MethodPost, "/api/v1/order", token, bad)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, []any{map[string]any{
		"field":   "paymentInfo.card_last_four",
		"message": "Card last four digits must be 4 numbers",
	}}, body["errors"])

	status, body = s.do(http.MethodPost, "/api/v1/order", token, checkoutBody())
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "Order created successfully", body["message"])
	assert.Equal(t, "97.50", body["total_price"])
	assert.Equal(t, "pending", body["status"])
	assert.EqualValues(t, 1, body["items_count"])
	assert.Equal(t, "United States", body["shipping_info"].(map[string]any)["country"])
	assert.Equal(t, map[string]any{
		"card_last_four": "4242",
		"card_type":      "visa",
		"payment_status": "pending",
	}, body["payment_info"])
	orderID := int64(body["order_id"].(float64))

	status, body = s.do(http.MethodGet, "/api/v1/products/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 5, body["stock"])

	status, body = s.do(http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])

	status, body = s.do(http.MethodPost, "/api/v1/order", token, checkoutBody())
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cart is empty. Cannot create order.", body["message"])

	status, body = s.do(http.MethodGet, "/api/v1/order", token, nil)
	require.Equal(t, http.StatusOK, status)
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Contains(t, orders[0], "orderedAt")

	path := "/api/v1/order/" + strconv.FormatInt(orderID, 10)
	status, body = s.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)

	other := s.signUp("other@example.com")
	status, body = s.do(http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Order not found", body["message"])
}

func TestCartAndWishlistRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("lists@example.com")

	status, body := s.do(http.MethodPut, "/api/v1/cart/update/1", token, map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Cart not found", body["message"])

	status, _ = s.do(http.MethodPost, "/api/v1/cart", token, map[string]any{"product_id": 1, "quantity": 1})
	require.Equal(t, http.StatusCreated, status)

	status, body = s.do(http.MethodPut, "/api/v1/cart/update/1", token, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["quantity"])

	status, body = s.do(http.MethodDelete, "/api/v1/cart/remove/2", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found in cart", body["message"])

	status, body = s.do(http.MethodDelete, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["items_removed"])

	status, body = s.do(http.MethodPost, "/api/v1/cart", token, map[string]any{"product_id": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])

	status, _ = s.do(http.MethodPost, "/api/v1/wishlist", token, map[string]any{"product_id": 3})
	require.Equal(t, http.StatusCreated, status)
	status, body = s.do(http.MethodPost, "/api/v1/wishlist", token, map[string]any{"product_id": 3})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Product already exists in wishlist", body["message"])

	status, body = s.do(http.MethodGet, "/api/v1/wishlist", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total_items"])

	status, _ = s.do(http.MethodDelete, "/api/v1/wishlist/remove/3", token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodDelete, "/api/v1/wishlist/remove/3", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProfileRoutes(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("me@example.com")

	status, body := s.do(http.MethodPost, "/api/v1/users", "", map[string]any{
		"name": "Dup", "email": "me@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status, body)

	status, body = s.do(http.MethodGet, "/api/v1/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "me@example.com", body["email"])

	status, body = s.do(http.MethodPut, "/api/v1/user/profile", token, map[string]any{
		"password": "newsecret", "oldPassword": "wrong-one",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Old password is incorrect", body["message"])

	status, body = s.do(http.MethodPut, "/api/v1/user/profile", token, map[string]any{"name": "Ada"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Profile updated successfully", body["message"])
	assert.Equal(t, "Ada", body["user"].(map[string]any)["name"])

	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/profile", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
