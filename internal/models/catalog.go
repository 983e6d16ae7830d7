package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSummary is a product as it appears in listings
type ProductSummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	ImageURL    *string   `json:"image_url"`
	Category    *Category `json:"category,omitempty"`
}

// ProductDetail is the single product view
type ProductDetail struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"createdAt"`
	Category    Category  `json:"category"`
}

// ProductList is a page of products
type ProductList struct {
	Products   []ProductSummary `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// CategoryProducts is a page of products within one category
type CategoryProducts struct {
	Category   Category         `json:"category"`
	Products   []ProductSummary `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// ProductFilter narrows a product listing. Zero values mean no filter.
type ProductFilter struct {
	CategoryID int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
}

// Summary converts a product row into its listing shape
func (p Product) Summary(withCategory bool) ProductSummary {
	s := ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       FormatPrice(p.Price),
		ImageURL:    p.ImageURL,
	}
	if withCategory {
		s.Category = &Category{ID: p.CategoryID, Name: p.CategoryName}
	}
	return s
}

// Detail converts a product row into its detail shape
func (p Product) Detail() ProductDetail {
	return ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       FormatPrice(p.Price),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		Category:    Category{ID: p.CategoryID, Name: p.CategoryName},
	}
}
