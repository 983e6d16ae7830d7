package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// messageResponse is the body of every error response
type messageResponse struct {
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps service errors to status codes. Anything without a known
// kind is logged and reported as a generic 500.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(se, services.ErrInvalidInput), errors.Is(se, services.ErrInvalidState):
			status = http.StatusBadRequest
		case errors.Is(se, services.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(se, services.ErrConflict):
			status = http.StatusConflict
		case errors.Is(se, services.ErrUnauthorized):
			status = http.StatusUnauthorized
		}
		if status != http.StatusInternalServerError {
			writeJSON(w, status, messageResponse{Message: se.Message, Errors: se.Fields})
			return
		}
	}

	a.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
		zap.Error(err),
	)
	writeMessage(w, http.StatusInternalServerError, "Server error")
}

// decodeJSON reads the request body into v and answers 400 when it is not
// valid JSON
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID parses a positive integer path variable
func pathID(w http.ResponseWriter, r *http.Request, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, message)
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user id set by the auth middleware
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authorization header is required")
		return 0, false
	}
	return userID, true
}

// pageFromQuery reads page and limit; bad values fall back to the defaults
func pageFromQuery(r *http.Request) services.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return services.NewPage(page, limit)
}
