package models

// AddToCartRequest represents a request to add item to cart
type AddToCartRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0" msg:"Valid product ID is required"`
	Quantity  int   `json:"quantity" validate:"min=1" msg:"Quantity must be at least 1"`
}

// UpdateCartItemRequest overwrites the quantity of one cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=1" msg:"Quantity must be at least 1"`
}

// CartItem is one cart line with the live product snapshot
type CartItem struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	ImageURL    *string `json:"image_url"`
	Stock       int     `json:"stock"`
	Quantity    int     `json:"quantity"`
	ItemTotal   string  `json:"item_total"`
}

// CartResponse represents a cart with its items. CartID is null until the
// first item is added.
type CartResponse struct {
	CartID     *int64     `json:"cart_id"`
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice string     `json:"total_price"`
}

// CartAdded is returned after adding a product to the cart
type CartAdded struct {
	Message string `json:"message"`
	CartID  int64  `json:"cart_id"`
}

// CartItemUpdated is returned after changing a line quantity
type CartItemUpdated struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartItemRemoved is returned after removing a product from the cart or wishlist
type CartItemRemoved struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
}

// CartCleared is returned after emptying the cart
type CartCleared struct {
	Message      string `json:"message"`
	ItemsRemoved int64  `json:"items_removed"`
	CartID       int64  `json:"cart_id"`
}

// AddToWishlistRequest adds a product to the wishlist
type AddToWishlistRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0" msg:"Product ID is required"`
}

// WishlistItem is one wishlisted product
type WishlistItem struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	ImageURL    *string `json:"image_url"`
	Stock       int     `json:"stock"`
}

// WishlistResponse represents a wishlist. WishlistID is null until the first
// product is added.
type WishlistResponse struct {
	WishlistID *int64         `json:"wishlist_id"`
	Items      []WishlistItem `json:"items"`
	TotalItems int            `json:"total_items"`
}

// WishlistAdded is returned after adding a product to the wishlist
type WishlistAdded struct {
	Message    string `json:"message"`
	WishlistID int64  `json:"wishlist_id"`
	ProductID  int64  `json:"product_id"`
}
