package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/api"
	"github.com/SigNoz/storefront-go-app/internal/audit"
	"github.com/SigNoz/storefront-go-app/internal/auth"
	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/logger"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/internal/validation"
	"github.com/SigNoz/storefront-go-app/pkg/config"
	"go.uber.org/zap"
)

func main() {
	cfg, cfgErr := config.LoadConfig()

	log, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfgErr != nil {
		log.Warn("ignoring .env file", zap.Error(cfgErr))
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx := context.Background()

	// Initialize OpenTelemetry metrics
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down meter provider", zap.Error(err))
		}
	}()

	// Initialize database
	database, err := db.Open(ctx, db.Options{
		Driver:      cfg.DBDriver,
		DSN:         cfg.GetDSN(),
		ServiceName: cfg.OTELServiceName,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer database.Close()

	if cfg.DBInitSchema {
		if err := database.InitSchema(ctx); err != nil {
			log.Fatal("failed to initialize schema", zap.Error(err))
		}
	}
	if cfg.DBSeed {
		n, err := database.Seed(ctx)
		if err != nil {
			log.Fatal("failed to seed catalog", zap.Error(err))
		}
		log.Info("catalog seeded", zap.Int("products", n))
	}

	productCache, err := newProductCache(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize product cache", zap.String("backend", cfg.CacheBackend), zap.Error(err))
	}
	defer productCache.Close()

	auditLog, err := newAuditLogger(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize audit trail", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := auditLog.Close(closeCtx); err != nil {
			log.Error("error closing audit trail", zap.Error(err))
		}
	}()

	// Initialize services
	v := validation.New()
	productService := services.NewProductService(database, appMetrics, productCache, log)
	svc := api.Services{
		Products:  productService,
		Carts:     services.NewCartService(database, appMetrics, v, log),
		Wishlists: services.NewWishlistService(database, appMetrics, v, log),
		Orders:    services.NewOrderService(database, appMetrics, v, productService, auditLog, log),
		Users:     services.NewUserService(database, appMetrics, v, auth.NewPasswordHasher(auth.DefaultBcryptCost), auditLog, log),
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	app := api.NewApp(database, appMetrics, tokens, svc, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GetAppPortInt()),
		Handler:      app.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("db_driver", database.Dialect()),
			zap.String("cache_backend", productCache.Backend()),
			zap.String("otlp_endpoint", cfg.OTELExporterOTLPEndpoint),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newProductCache(ctx context.Context, cfg *config.Config) (cache.ProductCache, error) {
	switch cfg.CacheBackend {
	case cache.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case cache.BackendMemory, "":
		return cache.NewMemoryCache(cfg.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// newAuditLogger returns the MongoDB audit trail, or a no-op one when
// MONGO_URI is empty
func newAuditLogger(ctx context.Context, cfg *config.Config) (audit.Logger, error) {
	if cfg.MongoURI == "" {
		return audit.Nop{}, nil
	}
	ml, err := audit.NewMongoLogger(ctx, audit.MongoConfig{
		URI:        cfg.MongoURI,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoAuditCollection,
		Service:    cfg.OTELServiceName,
	})
	if err != nil {
		return nil, err
	}
	return ml, nil
}
