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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService handles cart-related operations
type CartService struct {
	db        *db.DB
	metrics   *metrics.AppMetrics
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(database *db.DB, m *metrics.AppMetrics, v *validation.Validator, logger *zap.Logger) *CartService {
	return &CartService{
		db:        database,
		metrics:   m,
		validator: v,
		logger:    logger,
	}
}

// findParent returns the id of the user's cart or wishlist row
func findParent(ctx context.Context, q db.Querier, m *metrics.AppMetrics, table string, userID int64) (int64, bool, error) {
	start := time.Now()
	query := "SELECT id FROM " + table + " WHERE user_id = ?"
	var id int64
	err := q.QueryRowContext(ctx, query, userID).Scan(&id)
	m.RecordDBQuery(ctx, "SELECT", table, query, start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get %s row: %w", table, err)
	}
	return id, true, nil
}

// findOrCreateParent returns the user's cart or wishlist id, creating the row
// on first use. The unique user_id key settles concurrent creators: the loser
// of the race re-reads the winner's row.
func findOrCreateParent(ctx context.Context, q db.Querier, m *metrics.AppMetrics, table string, userID int64) (int64, error) {
	id, found, err := findParent(ctx, q, m, table, userID)
	if err != nil || found {
		return id, err
	}

	start := time.Now()
	query := "INSERT INTO " + table + " (user_id, created_at) VALUES (?, ?)"
	result, err := q.ExecContext(ctx, query, userID, time.Now().UTC())
	m.RecordDBQuery(ctx, "INSERT", table, query, start, err == nil)
	if err != nil {
		if !db.IsDuplicateKey(err) {
			return 0, fmt.Errorf("failed to create %s row: %w", table, err)
		}
		id, found, err = findParent(ctx, q, m, table, userID)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, fmt.Errorf("%s row for user %d vanished after duplicate insert", table, userID)
		}
		return id, nil
	}

	return result.LastInsertId()
}

// AddItem adds quantity of a product to the user's cart, creating the cart on
// first use. Re-adding a product increases the existing line; the merged
// quantity must not exceed current stock.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *models.AddToCartRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, validationFailed(err)
	}

	product, err := findProduct(ctx, s.db, s.metrics, req.ProductID)
	if err != nil {
		return 0, err
	}
	if req.Quantity > product.Stock {
		return 0, invalidState("Insufficient stock. Available: %d", product.Stock)
	}

	cartID, err := findOrCreateParent(ctx, s.db, s.metrics, "carts", userID)
	if err != nil {
		return 0, err
	}

	if err := s.mergeLine(ctx, cartID, product, req.Quantity); err != nil {
		return 0, err
	}

	s.recordCartState(ctx, cartID)
	return cartID, nil
}

// mergeLine increments an existing line or inserts a new one
func (s *CartService) mergeLine(ctx context.Context, cartID int64, product models.Product, quantity int) error {
	// Two passes: a concurrent insert of the same line turns our insert into a
	// duplicate key, after which the increment path applies.
	for attempt := 0; attempt < 2; attempt++ {
		start := time.Now()
		query := `UPDATE cart_items SET quantity = quantity + ?
			WHERE cart_id = ? AND product_id = ?
			AND quantity + ? <= (SELECT stock FROM products WHERE id = ?)`
		result, err := s.db.ExecContext(ctx, query, quantity, cartID, product.ID, quantity, product.ID)
		s.metrics.RecordDBQuery(ctx, "UPDATE", "cart_items", query, start, err == nil)
		if err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n > 0 {
			return nil
		}

		inCart, found, err := s.lineQuantity(ctx, cartID, product.ID)
		if err != nil {
			return err
		}
		if found {
			return invalidState("Insufficient stock. Available: %d, already in cart: %d", product.Stock, inCart)
		}

		start = time.Now()
		query = "INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?, ?, ?)"
		_, err = s.db.ExecContext(ctx, query, cartID, product.ID, quantity)
		s.metrics.RecordDBQuery(ctx, "INSERT", "cart_items", query, start, err == nil)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKey(err) {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
	}
	return fmt.Errorf("failed to add cart item: line for product %d kept changing", product.ID)
}

func (s *CartService) lineQuantity(ctx context.Context, cartID, productID int64) (int, bool, error) {
	start := time.Now()
	query := "SELECT quantity FROM cart_items WHERE cart_id = ? AND product_id = ?"
	var quantity int
	err := s.db.QueryRowContext(ctx, query, cartID, productID).Scan(&quantity)
	s.metrics.RecordDBQuery(ctx, "SELECT", "cart_items", query, start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get cart item: %w", err)
	}
	return quantity, true, nil
}

// cartLines loads the lines of a cart joined with the live products,
// ordered by product id
func cartLines(ctx context.Context, q db.Querier, m *metrics.AppMetrics, cartID int64, lock string) ([]models.CartLine, error) {
	start := time.Now()
	query := `SELECT p.id, p.name, p.description, p.price, p.image_url, p.stock, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY p.id` + lock
	rows, err := q.QueryContext(ctx, query, cartID)
	m.RecordDBQuery(ctx, "SELECT", "cart_items", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var l models.CartLine
		var image sql.NullString
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Description, &l.Price, &image, &l.Stock, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		l.ImageURL = nullString(image)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// GetCart returns the cart with its items and totals. A user without a cart
// gets the empty cart shape.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.CartResponse, error) {
	resp := &models.CartResponse{
		Items:      []models.CartItem{},
		TotalPrice: models.FormatPrice(decimal.Zero),
	}

	cartID, found, err := findParent(ctx, s.db, s.metrics, "carts", userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return resp, nil
	}
	resp.CartID = &cartID

	lines, err := cartLines(ctx, s.db, s.metrics, cartID, "")
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, l := range lines {
		itemTotal := l.Total()
		total = total.Add(itemTotal)
		resp.TotalItems += l.Quantity
		resp.Items = append(resp.Items, models.CartItem{
			ProductID:   l.ProductID,
			Name:        l.Name,
			Description: l.Description,
			Price:       models.FormatPrice(l.Price),
			ImageURL:    l.ImageURL,
			Stock:       l.Stock,
			Quantity:    l.Quantity,
			ItemTotal:   models.FormatPrice(itemTotal),
		})
	}
	resp.TotalPrice = models.FormatPrice(total)
	return resp, nil
}

// UpdateItem overwrites the quantity of a product already in the cart
func (s *CartService) UpdateItem(ctx context.Context, userID, productID int64, req *models.UpdateCartItemRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationFailed(err)
	}

	product, err := findProduct(ctx, s.db, s.metrics, productID)
	if err != nil {
		return err
	}
	if req.Quantity > product.Stock {
		return invalidState("Insufficient stock. Available: %d", product.Stock)
	}

	cartID, found, err := findParent(ctx, s.db, s.metrics, "carts", userID)
	if err != nil {
		return err
	}
	if !found {
		return notFound("Cart not found")
	}

	start := time.Now()
	query := "UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_id = ?"
	result, err := s.db.ExecContext(ctx, query, req.Quantity, cartID, productID)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "cart_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound("Product not found in cart")
	}

	s.recordCartState(ctx, cartID)
	return nil
}

// RemoveItem deletes one line from the cart
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	if _, err := findProduct(ctx, s.db, s.metrics, productID); err != nil {
		return err
	}

	cartID, found, err := findParent(ctx, s.db, s.metrics, "carts", userID)
	if err != nil {
		return err
	}
	if !found {
		return notFound("Cart not found")
	}

	start := time.Now()
	query := "DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?"
	result, err := s.db.ExecContext(ctx, query, cartID, productID)
	s.metrics.RecordDBQuery(ctx, "DELETE", "cart_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound("Product not found in cart")
	}

	s.recordCartState(ctx, cartID)
	return nil
}

// Clear removes every line of the user's cart and reports how many were removed
func (s *CartService) Clear(ctx context.Context, userID int64) (cartID int64, removed int64, err error) {
	cartID, found, err := findParent(ctx, s.db, s.metrics, "carts", userID)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, notFound("Cart not found")
	}

	removed, err = clearCartLines(ctx, s.db, s.metrics, cartID)
	if err != nil {
		return 0, 0, err
	}

	s.recordCartState(ctx, cartID)
	return cartID, removed, nil
}

func clearCartLines(ctx context.Context, q db.Querier, m *metrics.AppMetrics, cartID int64) (int64, error) {
	start := time.Now()
	query := "DELETE FROM cart_items WHERE cart_id = ?"
	result, err := q.ExecContext(ctx, query, cartID)
	m.RecordDBQuery(ctx, "DELETE", "cart_items", query, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// recordCartState updates the cart gauges. Failures only cost a data point.
func (s *CartService) recordCartState(ctx context.Context, cartID int64) {
	recordCartGauges(ctx, s.db, s.metrics, s.logger, cartID)
}

func recordCartGauges(ctx context.Context, q db.Querier, m *metrics.AppMetrics, logger *zap.Logger, cartID int64) {
	var items, active int
	query := `SELECT
		(SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = ?),
		(SELECT COUNT(DISTINCT cart_id) FROM cart_items)`
	start := time.Now()
	err := q.QueryRowContext(ctx, query, cartID).Scan(&items, &active)
	m.RecordDBQuery(ctx, "SELECT", "cart_items", query, start, err == nil)
	if err != nil {
		logger.Warn("failed to read cart gauges", zap.Int64("cart_id", cartID), zap.Error(err))
		return
	}
	m.RecordCartState(ctx, cartID, items, active)
}
