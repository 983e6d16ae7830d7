package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/audit"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"github.com/SigNoz/storefront-go-app/internal/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Checkout failure reasons reported to metrics
const (
	reasonValidation        = "validation"
	reasonEmptyCart         = "empty_cart"
	reasonInsufficientStock = "insufficient_stock"
	reasonStorage           = "storage"
)

// OrderService turns carts into orders and serves order history
type OrderService struct {
	db        *db.DB
	metrics   *metrics.AppMetrics
	validator *validation.Validator
	products  *ProductService
	audit     audit.Logger
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(database *db.DB, m *metrics.AppMetrics, v *validation.Validator, products *ProductService, auditLog audit.Logger, logger *zap.Logger) *OrderService {
	return &OrderService{
		db:        database,
		metrics:   m,
		validator: v,
		products:  products,
		audit:     auditLog,
		logger:    logger,
		now:       time.Now,
	}
}

// stockLevel is the stock of a product after checkout
type stockLevel struct {
	productID int64
	stock     int
}

// PlaceOrder converts the user's cart into a pending order. Everything from
// reading the cart to emptying it happens in one transaction: on any failure
// no order exists, stock is untouched and the cart is unchanged.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, req *models.CheckoutRequest) (*models.OrderReceipt, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordCheckoutFailure(ctx, reasonValidation)
		return nil, validationFailed(err)
	}

	var (
		receipt *models.OrderReceipt
		total   decimal.Decimal
		levels  []stockLevel
		cartID  int64
		reason  string
	)

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var found bool
		var err error
		cartID, found, err = findParent(ctx, tx, s.metrics, "carts", userID)
		if err != nil {
			return err
		}
		if !found {
			reason = reasonEmptyCart
			return invalidState("Cart is empty. Cannot create order.")
		}

		lines, err := cartLines(ctx, tx, s.metrics, cartID, s.db.ForUpdate())
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			reason = reasonEmptyCart
			return invalidState("Cart is empty. Cannot create order.")
		}

		total = decimal.Zero
		for _, l := range lines {
			if l.Quantity > l.Stock {
				reason = reasonInsufficientStock
				return invalidState("Insufficient stock for %s. Available: %d, Requested: %d", l.Name, l.Stock, l.Quantity)
			}
			total = total.Add(l.Total())
		}
		total = total.Round(2)

		orderID, err := s.insertOrder(ctx, tx, userID, total, req.OrderNote)
		if err != nil {
			return err
		}
		shipping, err := s.insertShipping(ctx, tx, orderID, req.ShippingInfo)
		if err != nil {
			return err
		}
		payment, err := s.insertPayment(ctx, tx, orderID, req.PaymentInfo)
		if err != nil {
			return err
		}

		levels = make([]stockLevel, 0, len(lines))
		for _, l := range lines {
			if err := s.insertOrderLine(ctx, tx, orderID, l); err != nil {
				return err
			}
			ok, err := s.decrementStock(ctx, tx, l.ProductID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// stock moved after the lines were read; report what is left now
				current, err := findProduct(ctx, tx, s.metrics, l.ProductID)
				if err != nil {
					return err
				}
				reason = reasonInsufficientStock
				return invalidState("Insufficient stock for %s. Available: %d, Requested: %d", l.Name, current.Stock, l.Quantity)
			}
			levels = append(levels, stockLevel{productID: l.ProductID, stock: l.Stock - l.Quantity})
		}

		if _, err := clearCartLines(ctx, tx, s.metrics, cartID); err != nil {
			return err
		}

		receipt = &models.OrderReceipt{
			OrderID:      orderID,
			TotalPrice:   models.FormatPrice(total),
			Status:       models.OrderStatusPending,
			ItemsCount:   len(lines),
			OrderNote:    req.OrderNote,
			ShippingInfo: shipping,
			PaymentInfo:  payment,
		}
		return nil
	})
	if err != nil {
		if reason == "" {
			reason = reasonStorage
		}
		s.metrics.RecordCheckoutFailure(ctx, reason)
		return nil, err
	}

	s.afterCheckout(ctx, userID, cartID, receipt, total, levels)
	return receipt, nil
}

func (s *OrderService) insertOrder(ctx context.Context, tx *sql.Tx, userID int64, total decimal.Decimal, note *string) (int64, error) {
	start := time.Now()
	query := "INSERT INTO orders (user_id, total_price, status, ordered_at, order_note) VALUES (?, ?, ?, ?, ?)"
	result, err := tx.ExecContext(ctx, query, userID, total, models.OrderStatusPending, s.now().UTC(), note)
	s.metrics.RecordDBQuery(ctx, "INSERT", "orders", query, start, err == nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get order ID: %w", err)
	}
	return orderID, nil
}

func (s *OrderService) insertShipping(ctx context.Context, tx *sql.Tx, orderID int64, in *models.ShippingInput) (models.ShippingSummary, error) {
	country := in.Country
	if country == "" {
		country = models.DefaultCountry
	}

	start := time.Now()
	query := `INSERT INTO shipping_info (order_id, first_name, last_name, email, phone, address, city, state, zip_code, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, query, orderID, in.FirstName, in.LastName, in.Email, in.Phone,
		in.Address, in.City, in.State, in.ZipCode, country)
	s.metrics.RecordDBQuery(ctx, "INSERT", "shipping_info", query, start, err == nil)
	if err != nil {
		return models.ShippingSummary{}, fmt.Errorf("failed to create shipping info: %w", err)
	}

	return models.ShippingSummary{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Address:   in.Address,
		City:      in.City,
		State:     in.State,
		ZipCode:   in.ZipCode,
		Country:   country,
	}, nil
}

func (s *OrderService) insertPayment(ctx context.Context, tx *sql.Tx, orderID int64, in *models.PaymentInput) (models.PaymentSummary, error) {
	start := time.Now()
	query := `INSERT INTO payment_info (order_id, card_last_four, card_type, payment_status, transaction_id)
		VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, query, orderID, in.CardLastFour, in.CardType, models.PaymentStatusPending, in.TransactionID)
	s.metrics.RecordDBQuery(ctx, "INSERT", "payment_info", query, start, err == nil)
	if err != nil {
		return models.PaymentSummary{}, fmt.Errorf("failed to create payment info: %w", err)
	}

	return models.PaymentSummary{
		CardLastFour:  in.CardLastFour,
		CardType:      in.CardType,
		PaymentStatus: models.PaymentStatusPending,
	}, nil
}

// insertOrderLine stores the line with the price read in this transaction
func (s *OrderService) insertOrderLine(ctx context.Context, tx *sql.Tx, orderID int64, l models.CartLine) error {
	start := time.Now()
	query := "INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)"
	_, err := tx.ExecContext(ctx, query, orderID, l.ProductID, l.Quantity, l.Price)
	s.metrics.RecordDBQuery(ctx, "INSERT", "order_items", query, start, err == nil)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// decrementStock takes quantity units off the product unless that would
// drive stock negative. It reports false when no row qualified.
func (s *OrderService) decrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) (bool, error) {
	start := time.Now()
	query := "UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?"
	result, err := tx.ExecContext(ctx, query, quantity, productID, quantity)
	s.metrics.RecordDBQuery(ctx, "UPDATE", "products", query, start, err == nil)
	if err != nil {
		return false, fmt.Errorf("failed to update stock: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// afterCheckout runs the side effects of a committed order. None of them can
// fail the checkout.
func (s *OrderService) afterCheckout(ctx context.Context, userID, cartID int64, receipt *models.OrderReceipt, total decimal.Decimal, levels []stockLevel) {
	s.metrics.RecordOrderCreated(ctx, total.InexactFloat64(), receipt.ItemsCount)

	ids := make([]int64, len(levels))
	for i, l := range levels {
		ids[i] = l.productID
		s.metrics.RecordInventory(ctx, l.productID, l.stock)
	}
	s.products.Invalidate(ctx, ids...)
	recordCartGauges(ctx, s.db, s.metrics, s.logger, cartID)

	err := s.audit.Record(ctx, audit.Entry{
		Action:   audit.ActionCreateOrder,
		EntityID: strconv.FormatInt(receipt.OrderID, 10),
		UserID:   userID,
		Data: map[string]any{
			"total_price": receipt.TotalPrice,
			"items_count": receipt.ItemsCount,
			"product_ids": ids,
		},
	})
	if err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("action", audit.ActionCreateOrder),
			zap.Int64("order_id", receipt.OrderID),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.Int64("order_id", receipt.OrderID),
		zap.Int64("user_id", userID),
		zap.String("total_price", receipt.TotalPrice),
		zap.Int("items_count", receipt.ItemsCount))
}

// GetOrderHistory returns a newest-first page of the user's orders
func (s *OrderService) GetOrderHistory(ctx context.Context, userID int64, page Page) (*models.OrderHistory, error) {
	start := time.Now()
	countQuery := "SELECT COUNT(*) FROM orders WHERE user_id = ?"
	var total int
	err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", countQuery, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	start = time.Now()
	query := `SELECT id, total_price, status, ordered_at, order_note
		FROM orders
		WHERE user_id = ?
		ORDER BY ordered_at DESC, id DESC
		LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit, page.Offset())
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.OrderSummary{}
	for rows.Next() {
		var o models.OrderSummary
		var price decimal.Decimal
		var note sql.NullString
		if err := rows.Scan(&o.ID, &price, &o.Status, &o.OrderedAt, &note); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.TotalPrice = models.FormatPrice(price)
		o.OrderNote = nullString(note)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	return &models.OrderHistory{
		Orders:     orders,
		Pagination: page.Pagination(total),
	}, nil
}

// GetOrder returns one of the user's orders with lines, shipping and payment.
// Orders of other users are reported as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*models.OrderDetail, error) {
	start := time.Now()
	query := "SELECT id, total_price, status, ordered_at, order_note FROM orders WHERE id = ? AND user_id = ?"
	var detail models.OrderDetail
	var price decimal.Decimal
	var note sql.NullString
	err := s.db.QueryRowContext(ctx, query, orderID, userID).Scan(&detail.OrderID, &price, &detail.Status, &detail.OrderedAt, &note)
	s.metrics.RecordDBQuery(ctx, "SELECT", "orders", query, start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	detail.TotalPrice = models.FormatPrice(price)
	detail.OrderNote = nullString(note)

	if detail.Items, err = s.orderLines(ctx, orderID); err != nil {
		return nil, err
	}
	detail.ItemsCount = len(detail.Items)

	if detail.ShippingInfo, err = s.shippingInfo(ctx, orderID); err != nil {
		return nil, err
	}
	if detail.PaymentInfo, err = s.paymentInfo(ctx, orderID); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *OrderService) orderLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	start := time.Now()
	query := `SELECT oi.product_id, p.name, p.description, p.image_url, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	s.metrics.RecordDBQuery(ctx, "SELECT", "order_items", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	lines := []models.OrderLine{}
	for rows.Next() {
		var l models.OrderLine
		var price decimal.Decimal
		var image sql.NullString
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Description, &image, &l.Quantity, &price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		l.ImageURL = nullString(image)
		l.Price = models.FormatPrice(price)
		l.ItemTotal = models.FormatPrice(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *OrderService) shippingInfo(ctx context.Context, orderID int64) (*models.ShippingInfo, error) {
	start := time.Now()
	query := `SELECT first_name, last_name, email, phone, address, city, state, zip_code, country
		FROM shipping_info WHERE order_id = ?`
	var info models.ShippingInfo
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(&info.FirstName, &info.LastName, &info.Email,
		&info.Phone, &info.Address, &info.City, &info.State, &info.ZipCode, &info.Country)
	s.metrics.RecordDBQuery(ctx, "SELECT", "shipping_info", query, start, err == nil || err == sql.ErrNoRows)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipping info: %w", err)
	}
	return &info, nil
}

func (s *OrderService) paymentInfo(ctx context.Context, orderID int64) (*models.PaymentInfo, error) {
	start := time.Now()
	query := `SELECT card_last_four, card_type, payment_status, transaction_id
		FROM payment_info WHERE order_id = ?`
	var info models.PaymentInfo
	var txID sql.NullString
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(&info.CardLastFour, &info.CardType, &info.PaymentStatus, &txID)
	s.metrics.RecordDBQuery(ctx, "SELECT", "payment_info", query, start, err == nil || err == sql.ErrNoRows)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment info: %w", err)
	}
	info.TransactionID = nullString(txID)
	return &info, nil
}
