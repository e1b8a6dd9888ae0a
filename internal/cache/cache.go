package cache

import (
	"context"
	"errors"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

// ProductCache holds product detail reads. Entries are dropped whenever a
// product's row changes, including stock movements from orders.
type ProductCache interface {
	Get(ctx context.Context, productID int64) (*domain.Product, error)
	Set(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productIDs ...int64) error
}

var ErrCacheMiss = errors.New("cache miss")
