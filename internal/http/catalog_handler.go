package http

import (
	"context"
	"net/http"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

type CatalogService interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CategoryProducts(ctx context.Context, id int64, page, pageSize int) (*domain.PagedResult[domain.Product], error)
	CreateCategory(ctx context.Context, in *domain.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, in *domain.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)

	ListProducts(ctx context.Context, f domain.ProductFilter) (*domain.PagedResult[domain.Product], error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in *domain.ProductInput) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
	DeleteProduct(ctx context.Context, id int64) error
}

type CatalogHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := newQueryParams(r.URL.Query())
	includeInactive := q.bool("includeInactive")
	if q.err != nil {
		handleServiceError(w, r, q.err)
		return
	}

	categories, err := h.catalog.ListCategories(ctx, includeInactive)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// GET /api/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.catalog.GetCategory(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// GET /api/categories/{id}/products
func (h *CatalogHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := newQueryParams(r.URL.Query())
	page, pageSize := q.int("page"), q.int("pageSize")
	if q.err != nil {
		handleServiceError(w, r, q.err)
		return
	}

	products, err := h.catalog.CategoryProducts(ctx, id, page, pageSize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// POST /api/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in domain.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.catalog.CreateCategory(ctx, &in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

// PUT /api/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.catalog.UpdateCategory(ctx, id, &in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// DELETE /api/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	soft, err := h.catalog.DeleteCategory(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	msg := "Category deleted successfully."
	if soft {
		msg = "Category deactivated successfully."
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := newQueryParams(r.URL.Query())
	f := domain.ProductFilter{
		CategoryID: q.int64Ptr("categoryId"),
		MinPrice:   q.decimalPtr("minPrice"),
		MaxPrice:   q.decimalPtr("maxPrice"),
		IsFeatured: q.boolPtr("isFeatured"),
		IsActive:   q.boolPtr("isActive"),
		Search:     q.string("search"),
		Tags:       q.string("tags"),
		SortBy:     q.string("sortBy"),
		SortOrder:  q.string("sortOrder"),
		Page:       q.int("page"),
		PageSize:   q.int("pageSize"),
	}
	if q.err != nil {
		handleServiceError(w, r, q.err)
		return
	}

	products, err := h.catalog.ListProducts(ctx, f)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/featured
func (h *CatalogHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := newQueryParams(r.URL.Query())
	count := q.int("count")
	if q.err != nil {
		handleServiceError(w, r, q.err)
		return
	}

	products, err := h.catalog.FeaturedProducts(ctx, count)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in domain.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.catalog.CreateProduct(ctx, &in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// PUT /api/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	p, err := h.catalog.UpdateProduct(ctx, id, &in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// POST /api/products/{id}/deactivate
func (h *CatalogHandler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeactivateProduct(ctx, id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Product deactivated successfully."})
}

// DELETE /api/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(ctx, id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
