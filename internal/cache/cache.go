// Package cache holds product detail lookups in memory or in Redis.
package cache

import (
	"context"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// Backend names accepted by CACHE_BACKEND
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ProductCache stores product details by id.
// A miss is reported with ok == false and a nil error.
type ProductCache interface {
	Get(ctx context.Context, id int64) (detail *models.ProductDetail, ok bool, err error)
	Set(ctx context.Context, detail *models.ProductDetail) error
	Delete(ctx context.Context, ids ...int64) error
	Backend() string
	Close() error
}
