package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ProductService serves the read-only catalog
type ProductService struct {
	db      *db.DB
	metrics *metrics.AppMetrics
	cache   cache.ProductCache
	group   singleflight.Group
	logger  *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(database *db.DB, m *metrics.AppMetrics, c cache.ProductCache, logger *zap.Logger) *ProductService {
	return &ProductService{
		db:      database,
		metrics: m,
		cache:   c,
		logger:  logger,
	}
}

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category_id, c.name, p.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var image sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &image, &p.CategoryID, &p.CategoryName, &p.CreatedAt); err != nil {
		return p, err
	}
	p.ImageURL = nullString(image)
	return p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// findProduct loads one product with its category. It returns NotFound when
// the product does not exist.
func findProduct(ctx context.Context, q db.Querier, m *metrics.AppMetrics, id int64) (models.Product, error) {
	start := time.Now()
	query := `SELECT ` + productColumns + ` FROM products p JOIN categories c ON c.id = p.category_id WHERE p.id = ?`
	p, err := scanProduct(q.QueryRowContext(ctx, query, id))
	m.RecordDBQuery(ctx, "SELECT", "products", query, start, err == nil || err == sql.ErrNoRows)

	if err == sql.ErrNoRows {
		return p, notFound("Product not found")
	}
	if err != nil {
		return p, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListCategories returns every category ordered by name
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	start := time.Now()
	query := `SELECT id, name FROM categories ORDER BY name ASC`
	rows, err := s.db.QueryContext(ctx, query)
	s.metrics.RecordDBQuery(ctx, "SELECT", "categories", query, start, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListProductsByCategory returns a newest-first page of the category's products
func (s *ProductService) ListProductsByCategory(ctx context.Context, categoryID int64, page Page) (*models.CategoryProducts, error) {
	start := time.Now()
	query := `SELECT id, name FROM categories WHERE id = ?`
	var category models.Category
	err := s.db.QueryRowContext(ctx, query, categoryID).Scan(&category.ID, &category.Name)
	s.metrics.RecordDBQuery(ctx, "SELECT", "categories", query, start, err == nil || err == sql.ErrNoRows)
	if err == sql.ErrNoRows {
		return nil, notFound("Category not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	products, total, err := s.listProducts(ctx, models.ProductFilter{CategoryID: categoryID}, page)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = p.Summary(false)
	}
	return &models.CategoryProducts{
		Category:   category,
		Products:   summaries,
		Pagination: page.Pagination(total),
	}, nil
}

// ListProducts returns a newest-first page of products matching filter
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter, page Page) (*models.ProductList, error) {
	products, total, err := s.listProducts(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = p.Summary(true)
	}
	return &models.ProductList{
		Products:   summaries,
		Pagination: page.Pagination(total),
	}, nil
}

func buildProductFilter(filter models.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.CategoryID > 0 {
		conds = append(conds, "p.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		conds = append(conds, "(p.name LIKE ? OR p.description LIKE ?)")
		args = append(args, like, like)
	}
	if filter.MinPrice != nil {
		conds = append(conds, "p.price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "p.price <= ?")
		args = append(args, *filter.MaxPrice)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// listProducts counts and fetches one page with the same filter
func (s *ProductService) listProducts(ctx context.Context, filter models.ProductFilter, page Page) ([]models.Product, int, error) {
	where, args := buildProductFilter(filter)

	start := time.Now()
	countQuery := `SELECT COUNT(*) FROM products p` + where
	var total int
	err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", countQuery, start, err == nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	start = time.Now()
	query := `SELECT ` + productColumns + ` FROM products p JOIN categories c ON c.id = p.category_id` +
		where + ` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	s.metrics.RecordDBQuery(ctx, "SELECT", "products", query, start, err == nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// GetProduct returns a product by ID, served from the cache when possible.
// Concurrent misses for the same product share one database read.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.ProductDetail, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("product cache read failed", zap.Int64("product_id", id), zap.Error(err))
	}
	if ok {
		s.metrics.RecordCacheLookup(ctx, s.cache.Backend(), true)
		s.metrics.RecordProductView(ctx, id, cached.Category.Name)
		return cached, nil
	}
	s.metrics.RecordCacheLookup(ctx, s.cache.Backend(), false)

	v, err, _ := s.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		p, err := findProduct(ctx, s.db, s.metrics, id)
		if err != nil {
			return nil, err
		}
		detail := p.Detail()
		if err := s.cache.Set(ctx, &detail); err != nil {
			s.logger.Warn("product cache write failed", zap.Int64("product_id", id), zap.Error(err))
		}
		return detail, nil
	})
	if err != nil {
		return nil, err
	}

	detail := v.(models.ProductDetail)
	s.metrics.RecordProductView(ctx, id, detail.Category.Name)
	return &detail, nil
}

// Invalidate drops cached details, e.g. after stock changed
func (s *ProductService) Invalidate(ctx context.Context, ids ...int64) {
	if err := s.cache.Delete(ctx, ids...); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int64s("product_ids", ids), zap.Error(err))
	}
}
