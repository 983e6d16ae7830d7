package api

import (
	"net/http"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CreateOrderHandler handles POST /api/v1/order
func (a *App) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := a.services.Orders.PlaceOrder(r.Context(), userID, &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.OrderCreated{
		Message:      "Order created successfully",
		OrderReceipt: receipt,
	})
}

// ListOrdersHandler handles GET /api/v1/order
func (a *App) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	history, err := a.services.Orders.GetOrderHistory(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// GetOrderHandler handles GET /api/v1/order/{orderId}
func (a *App) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "orderId", "Invalid order ID")
	if !ok {
		return
	}

	order, err := a.services.Orders.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
