package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/validation"
	"go.uber.org/zap"
)

// WishlistService handles wishlist operations
type WishlistService struct {
	db        *db.DB
	metrics   *metrics.AppMetrics
	validator *validation.Validator
	logger    *zap.Logger
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(database *db.DB, m *metrics.AppMetrics, v *validation.Validator, logger *zap.Logger) *WishlistService {
	return &WishlistService{
		db:        database,
		metrics:   m,
		validator: v,
		logger:    logger,
	}
}

// Add puts a product on the user's wishlist. A product can be listed once.
func (s *WishlistService) Add(ctx context.Context, userID int64, req *models.AddToWishlistRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, validationFailed(err)
	}

	if _, err := findProduct(ctx, s.db, s.metrics, req.ProductID); err != nil {
		return 0, err
	}

	wishlistID, err := findOrCreateParent(ctx, s.db, s.metrics, "wishlists", userID)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	query := "INSERT INTO wishlist_items (wishlist_id, product_id) VALUES (?, ?)"
	_, err = s.db.ExecContext(ctx, query, wishlistID, req.ProductID)
	s.metrics.RecordDBQuery(ctx, "INSERT", "wishlist_items", query, start, err == nil)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return 0, conflict("Product already exists in wishlist")
		}
		return 0, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	s.logger.Debug("wishlist item added",
		zap.Int64("user_id", userID),
		zap.Int64("wishlist_id", wishlistID),
		zap.Int64("product_id", req.ProductID))
	return wishlistID, nil
}

// Get returns the wishlist with live product data. A user without a wishlist
// gets the empty shape.
func (s *WishlistService) Get(ctx context.Context, userID int64) (*models.WishlistResponse, error) {
	resp := &models.WishlistResponse{Items: []models.WishlistItem{}}

	wishlistID, found, err := findParent(ctx, s.db, s.metrics, "wishlists", userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return resp, nil
	}
	resp.WishlistID = &wishlistID

	start := time.Now()
	query := `SELECT p.id, p.name, p.description, p.price, p.image_url, p.stock
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.wishlist_id = ?
		ORDER BY wi.id`
	rows, err := s.db.QueryContext(ctx, query, wishlistID)
	s.metrics.RecordDBQuery(ctx, "SELECT", "wishlist_items", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		var image sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &image, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		resp.Items = append(resp.Items, models.WishlistItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       models.FormatPrice(p.Price),
			ImageURL:    nullString(image),
			Stock:       p.Stock,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wishlist items: %w", err)
	}

	resp.TotalItems = len(resp.Items)
	return resp, nil
}

// Remove deletes a product from the user's wishlist
func (s *WishlistService) Remove(ctx context.Context, userID, productID int64) error {
	if _, err := findProduct(ctx, s.db, s.metrics, productID); err != nil {
		return err
	}

	wishlistID, found, err := findParent(ctx, s.db, s.metrics, "wishlists", userID)
	if err != nil {
		return err
	}
	if !found {
		return notFound("Wishlist not found")
	}

	start := time.Now()
	query := "DELETE FROM wishlist_items WHERE wishlist_id = ? AND product_id = ?"
	result, err := s.db.ExecContext(ctx, query, wishlistID, productID)
	s.metrics.RecordDBQuery(ctx, "DELETE", "wishlist_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound("Product not found in wishlist")
	}
	return nil
}
