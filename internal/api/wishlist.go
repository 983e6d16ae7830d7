package api

import (
	"net/http"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// AddToWishlistHandler handles POST /api/v1/wishlist
func (a *App) AddToWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.AddToWishlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wishlistID, err := a.services.Wishlists.Add(r.Context(), userID, &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.WishlistAdded{
		Message:    "Product added to wishlist successfully",
		WishlistID: wishlistID,
		ProductID:  req.ProductID,
	})
}

// GetWishlistHandler handles GET /api/v1/wishlist
func (a *App) GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	wishlist, err := a.services.Wishlists.Get(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wishlist)
}

// RemoveFromWishlistHandler handles DELETE /api/v1/wishlist/remove/{productId}
func (a *App) RemoveFromWishlistHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId", "Invalid product ID")
	if !ok {
		return
	}

	if err := a.services.Wishlists.Remove(r.Context(), userID, productID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CartItemRemoved{
		Message:   "Product removed from wishlist successfully",
		ProductID: productID,
	})
}
