package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id set by RequestIDMiddleware
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// MetricsMiddleware records HTTP request metrics and logs every request
func MetricsMiddleware(m *metrics.AppMetrics, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()

			routePattern := "unknown"
			if route := mux.CurrentRoute(r); route != nil {
				if pathTemplate, err := route.GetPathTemplate(); err == nil {
					routePattern = pathTemplate
				}
			}

			ctx := r.Context()
			attrs := metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern),
				attribute.Int("http.status_code", rw.statusCode),
			})...)

			m.HTTPRequestsTotal.Add(ctx, 1, attrs)
			if rw.statusCode >= 400 {
				m.HTTPRequestsErrors.Add(ctx, 1, attrs)
			}
			m.HTTPRequestDuration.Record(ctx, float64(duration), attrs)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("route", routePattern),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", rw.statusCode),
				zap.Int64("duration_ms", duration),
				zap.String("request_id", RequestIDFromContext(ctx)),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// RequestIDMiddleware adds a request ID to the context, reusing the caller's
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ErrorHandlerMiddleware turns panics into a JSON 500
func ErrorHandlerMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.Error("panic while serving request",
						zap.Any("panic", p),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", RequestIDFromContext(r.Context())),
						zap.Stack("stack"),
					)
					writeMessage(w, http.StatusInternalServerError, "Server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware requires a valid bearer token and stores the user id in the
// request context
func AuthMiddleware(tokens *auth.TokenManager, m *metrics.AppMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeMessage(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Invalid authorization header format. Use: Bearer <token>")
				return
			}
			token = strings.TrimSpace(token)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "Token is required")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := auth.WithUserID(r.Context(), userID)
			m.RecordActiveUser(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
