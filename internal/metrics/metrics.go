package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/storefront-go-app/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Database Metrics
	DBQueriesTotal  metric.Int64Counter
	DBQueryDuration metric.Float64Histogram

	// Business Metrics
	OrdersCreated    metric.Int64Counter
	CheckoutFailures metric.Int64Counter
	ProductsViewed   metric.Int64Counter
	CartItemsCount   metric.Int64Gauge
	InventoryLevel   metric.Int64Gauge
	RevenueTotal     metric.Float64Counter

	// Application Metrics
	ActiveUsersCount metric.Int64Gauge
	ActiveCartsCount metric.Int64Gauge
	CacheHits        metric.Int64Counter
	CacheMisses      metric.Int64Counter

	// Added to every data point
	serviceName string
	dbSystem    string
}

// InitMetrics initializes the OTLP/HTTP meter provider and the application instruments
func InitMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	// Explicit attributes take precedence over OTEL_RESOURCE_ATTRIBUTES / OTEL_SERVICE_NAME
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	serviceName, ok := res.Set().Value(semconv.ServiceNameKey)
	if !ok || serviceName.AsString() == "" {
		return nil, nil, fmt.Errorf("service.name is not set in resource attributes")
	}

	// WithEndpoint expects host:port without a scheme.
	// SigNoz Cloud: ingest.<region>.signoz.cloud:443 with WithInsecure omitted.
	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}

	headers := parseHeaders(cfg.OTELExporterOTLPHeaders)
	if len(headers) > 0 {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(headers))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	logger.Info("metrics exporter configured",
		zap.String("endpoint", cfg.OTELExporterOTLPEndpoint),
		zap.String("path", "/v1/metrics"),
		zap.Int("headers", len(headers)),
		zap.Bool("insecure", cfg.OTELExporterOTLPInsecure),
		zap.String("service.name", serviceName.AsString()),
		zap.Duration("interval", 10*time.Second),
	)

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	appMetrics, err := NewAppMetrics(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName, cfg.DBDriver)
	if err != nil {
		return nil, nil, err
	}
	return appMetrics, meterProvider, nil
}

// NewAppMetrics creates the application instruments on the given meter.
// dbSystem is reported as db.system on query metrics.
func NewAppMetrics(meter metric.Meter, serviceName, dbSystem string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: serviceName, dbSystem: dbSystem}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	if m.DBQueriesTotal, err = meter.Int64Counter(
		"db.client.queries.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create db queries counter: %w", err)
	}

	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.client.queries.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}

	if m.OrdersCreated, err = meter.Int64Counter(
		"orders_created_total",
		metric.WithDescription("Total number of orders created"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create orders counter: %w", err)
	}

	if m.CheckoutFailures, err = meter.Int64Counter(
		"checkout_failures_total",
		metric.WithDescription("Checkouts rejected or rolled back, by reason"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create checkout failures counter: %w", err)
	}

	if m.ProductsViewed, err = meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product views"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}

	if m.CartItemsCount, err = meter.Int64Gauge(
		"cart_items_count",
		metric.WithDescription("Current number of items in user carts"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cart items gauge: %w", err)
	}

	if m.InventoryLevel, err = meter.Int64Gauge(
		"inventory_level",
		metric.WithDescription("Current inventory level for products"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create inventory gauge: %w", err)
	}

	if m.RevenueTotal, err = meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total revenue generated"),
		metric.WithUnit("USD"),
	); err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	if m.ActiveUsersCount, err = meter.Int64Gauge(
		"active_users_count",
		metric.WithDescription("Currently active users"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active users gauge: %w", err)
	}

	if m.ActiveCartsCount, err = meter.Int64Gauge(
		"active_carts_count",
		metric.WithDescription("Number of active carts with items"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active carts gauge: %w", err)
	}

	if m.CacheHits, err = meter.Int64Counter(
		"cache_hits_total",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	if m.CacheMisses, err = meter.Int64Counter(
		"cache_misses_total",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

func (m *AppMetrics) attrs(kv ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(m.WithServiceName(kv)...)
}

// RecordDBQuery records database query metrics including the SQL statement
func (m *AppMetrics) RecordDBQuery(ctx context.Context, operation, table, statement string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	opt := m.attrs(
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.statement", statement),
		attribute.String("db.system", m.dbSystem),
		attribute.String("status", status),
	)
	m.DBQueriesTotal.Add(ctx, 1, opt)
	m.DBQueryDuration.Record(ctx, float64(duration), opt)
}

// RecordOrderCreated records a placed order and its revenue
func (m *AppMetrics) RecordOrderCreated(ctx context.Context, total float64, lines int) {
	opt := m.attrs(
		attribute.String("order_status", "pending"),
		attribute.Int("order_lines", lines),
	)
	m.OrdersCreated.Add(ctx, 1, opt)
	m.RevenueTotal.Add(ctx, total, m.attrs(
		attribute.String("currency", "USD"),
		attribute.String("order_status", "pending"),
	))
}

// RecordCheckoutFailure counts a rejected checkout. reason is a short
// machine readable label such as "empty_cart" or "insufficient_stock".
func (m *AppMetrics) RecordCheckoutFailure(ctx context.Context, reason string) {
	m.CheckoutFailures.Add(ctx, 1, m.attrs(attribute.String("reason", reason)))
}

// RecordInventory records the stock level of a product
func (m *AppMetrics) RecordInventory(ctx context.Context, productID int64, stock int) {
	m.InventoryLevel.Record(ctx, int64(stock), m.attrs(attribute.Int64("product_id", productID)))
}

// RecordProductView counts a product detail view
func (m *AppMetrics) RecordProductView(ctx context.Context, productID int64, category string) {
	m.ProductsViewed.Add(ctx, 1, m.attrs(
		attribute.Int64("product_id", productID),
		attribute.String("product_category", category),
	))
}

// RecordCacheLookup counts a product cache hit or miss
func (m *AppMetrics) RecordCacheLookup(ctx context.Context, backend string, hit bool) {
	opt := m.attrs(attribute.String("cache.backend", backend))
	if hit {
		m.CacheHits.Add(ctx, 1, opt)
		return
	}
	m.CacheMisses.Add(ctx, 1, opt)
}

// RecordCartState records the item count of one cart and the number of
// non-empty carts overall
func (m *AppMetrics) RecordCartState(ctx context.Context, cartID int64, items int, activeCarts int) {
	m.CartItemsCount.Record(ctx, int64(items), m.attrs(attribute.Int64("cart_id", cartID)))
	m.ActiveCartsCount.Record(ctx, int64(activeCarts), m.attrs())
}

// RecordActiveUser marks an authenticated user as active
func (m *AppMetrics) RecordActiveUser(ctx context.Context, userID int64) {
	m.ActiveUsersCount.Record(ctx, 1, m.attrs(
		attribute.String("session_type", "active"),
		attribute.Int64("user_id", userID),
	))
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
// and returns a map of headers
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	pairs := strings.Split(headerStr, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
