package api

import (
	"net/http"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// AddToCartHandler handles POST /api/v1/cart
func (a *App) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cartID, err := a.services.Carts.AddItem(r.Context(), userID, &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.CartAdded{
		Message: "Product added to cart successfully",
		CartID:  cartID,
	})
}

// GetCartHandler handles GET /api/v1/cart
func (a *App) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := a.services.Carts.GetCart(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// UpdateCartItemHandler handles PUT /api/v1/cart/update/{productId}
func (a *App) UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId", "Invalid product ID")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := a.services.Carts.UpdateItem(r.Context(), userID, productID, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CartItemUpdated{
		Message:   "Cart item updated successfully",
		ProductID: productID,
		Quantity:  req.Quantity,
	})
}

// RemoveFromCartHandler handles DELETE /api/v1/cart/remove/{productId}
func (a *App) RemoveFromCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId", "Invalid product ID")
	if !ok {
		return
	}

	if err := a.services.Carts.RemoveItem(r.Context(), userID, productID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CartItemRemoved{
		Message:   "Product removed from cart successfully",
		ProductID: productID,
	})
}

// ClearCartHandler handles DELETE /api/v1/cart
func (a *App) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cartID, removed, err := a.services.Carts.Clear(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CartCleared{
		Message:      "Cart cleared successfully",
		ItemsRemoved: removed,
		CartID:       cartID,
	})
}
