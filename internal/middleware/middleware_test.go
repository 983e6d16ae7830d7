package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testMetrics(t *testing.T) *metrics.AppMetrics {
	t.Helper()
	m, err := metrics.NewAppMetrics(noop.NewMeterProvider().Meter("test"), "storefront-test", "sqlite3")
	require.NoError(t, err)
	return m
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["message"]
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "generated ids are uuids")
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	h := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called, "preflight stops here")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	assert.True(t, called)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := ErrorHandlerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", decodeMessage(t, rec))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic while serving request", logs.All()[0].Message)
}

func TestMetricsMiddleware_LogsRoute(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(testMetrics(t), zap.New(core)))
	r.HandleFunc("/api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/v1/products/{id}", fields["route"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", "storefront", time.Hour)
	other := auth.NewTokenManager("other-secret", "storefront", time.Hour)

	valid, _, err := tokens.Generate(7, "ada@example.com")
	require.NoError(t, err)
	forged, _, err := other.Generate(7, "ada@example.com")
	require.NoError(t, err)

	var gotUser int64
	h := AuthMiddleware(tokens, testMetrics(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format. Use: Bearer <token>"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "Token is required"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid or expired token"},
		{"foreign signature", "Bearer " + forged, http.StatusUnauthorized, "Invalid or expired token"},
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = 0
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeMessage(t, rec))
				assert.Zero(t, gotUser)
				return
			}
			assert.Equal(t, int64(7), gotUser)
		})
	}
}
