package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Only OrderStatusPending is ever written by checkout.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// DefaultCountry is stored when the shipping address has no country
const DefaultCountry = "United States"

// Category groups products in the catalog
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Product represents a product in the catalog
type Product struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	Stock        int             `db:"stock"`
	ImageURL     *string         `db:"image_url"`
	CategoryID   int64           `db:"category_id"`
	CategoryName string          `db:"category_name"`
	CreatedAt    time.Time       `db:"created_at"`
}

// User represents a user account
type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	ProfileImg   *string   `db:"profile_img"`
	CreatedAt    time.Time `db:"created_at"`
}

// CartLine is a cart item joined with the live product row
type CartLine struct {
	ProductID   int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    *string
	Stock       int
	Quantity    int
}

// Total returns price × quantity for the line
func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Pagination describes a page window over a counted result set
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// FormatPrice renders a money amount with two decimals
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
