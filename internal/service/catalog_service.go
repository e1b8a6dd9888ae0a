package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/cache"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	defaultProductPageSize = 12
	defaultFeaturedCount   = 8
	maxFeaturedCount       = 50
	productLoadTimeout     = 5 * time.Second
)

var errUnknownCategory = domain.Validationf("Category not found.")

type CatalogService struct {
	store CatalogStore
	cache cache.ProductCache
	sfg   singleflight.Group // collapses concurrent cache misses for one product
}

func NewCatalogService(store CatalogStore, cache cache.ProductCache) *CatalogService {
	return &CatalogService{
		store: store,
		cache: cache,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	return s.store.ListCategories(ctx, includeInactive)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// CategoryProducts pages through the active products of a category, newest first.
func (s *CatalogService) CategoryProducts(ctx context.Context, id int64, page, pageSize int) (*domain.PagedResult[domain.Product], error) {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	active := true
	return s.ListProducts(ctx, domain.ProductFilter{
		CategoryID: &id,
		IsActive:   &active,
		SortBy:     "createdat",
		SortOrder:  "desc",
		Page:       page,
		PageSize:   pageSize,
	})
}

func (s *CatalogService) CreateCategory(ctx context.Context, in *domain.CategoryInput) (*domain.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	c := &domain.Category{IsActive: true}
	in.Apply(c)
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, in *domain.CategoryInput) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategoryName(ctx, in.Name, id); err != nil {
		return nil, err
	}

	in.Apply(c)
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateCategory(ctx, id)
	return c, nil
}

// invalidateCategory drops the cached products of a category, which carry its name.
func (s *CatalogService) invalidateCategory(ctx context.Context, id int64) {
	ids, err := s.store.CategoryProductIDs(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "listing category products for invalidation failed", "category_id", id, "error", err)
		return
	}
	deleteCached(ctx, s.cache, ids...)
}

// DeleteCategory reports whether the category was only deactivated because
// inactive products still reference it.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	return s.store.DeleteCategory(ctx, id)
}

// checkCategoryName is the fast path; the unique index has the final word.
func (s *CatalogService) checkCategoryName(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.store.CategoryNameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateCategory
	}
	return nil
}

// ListProducts lists active products unless the filter asks otherwise.
func (s *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter) (*domain.PagedResult[domain.Product], error) {
	if f.IsActive == nil {
		active := true
		f.IsActive = &active
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, domain.Validationf("Minimum price cannot exceed maximum price.")
	}
	f.Page, f.PageSize = domain.NormalizePage(f.Page, f.PageSize, defaultProductPageSize)

	products, total, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return domain.NewPagedResult(products, total, f.Page, f.PageSize), nil
}

// GetProduct reads through the cache. Concurrent misses for the same product
// share one database read, which runs detached from any single caller so one
// client going away does not fail the others.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	ch := s.sfg.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), productLoadTimeout)
		defer cancel()

		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "product cache get failed", "product_id", id, "error", err)
		}

		p, err = s.store.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.Set(ctx, p); errSet != nil {
			slog.WarnContext(ctx, "product cache set failed", "product_id", id, "error", errSet)
		}
		return p, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Product), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CatalogService) FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error) {
	if count < 1 {
		count = defaultFeaturedCount
	}
	return s.store.FeaturedProducts(ctx, min(count, maxFeaturedCount))
}

func (s *CatalogService) CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error) {
	if err := s.checkProductInput(ctx, in, 0); err != nil {
		return nil, err
	}

	p := &domain.Product{IsActive: true}
	in.Apply(p)
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in *domain.ProductInput) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkProductInput(ctx, in, id); err != nil {
		return nil, err
	}

	in.Apply(p)
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	deleteCached(ctx, s.cache, id)
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) DeactivateProduct(ctx context.Context, id int64) error {
	if err := s.store.DeactivateProduct(ctx, id); err != nil {
		return err
	}
	deleteCached(ctx, s.cache, id)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	deleteCached(ctx, s.cache, id)
	return nil
}

func (s *CatalogService) checkProductInput(ctx context.Context, in *domain.ProductInput, excludeID int64) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return errUnknownCategory
		}
		return err
	}
	if sku := in.NormalizedSKU(); sku != nil {
		taken, err := s.store.SKUExists(ctx, *sku, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateSKU
		}
	}
	return nil
}
