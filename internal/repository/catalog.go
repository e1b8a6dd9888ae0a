package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

const categoryColumns = `c.category_id, c.name, c.description, c.image_url, c.is_active, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM products p WHERE p.category_id = c.category_id AND p.is_active) AS product_count`

func (r *Repository) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c`
	if !includeInactive {
		query += ` WHERE c.is_active`
	}
	query += ` ORDER BY c.name`

	categories := []domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories c WHERE c.category_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}

// CategoryNameExists checks names case-insensitively, ignoring excludeID.
func (r *Repository) CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1) AND category_id <> $2)`,
		strings.TrimSpace(name), excludeID)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (name, description, image_url, is_active)
	          VALUES ($1, $2, $3, $4)
	          RETURNING category_id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, c.Name, c.Description, c.ImageURL, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translate(fmt.Errorf("insert category: %w", err))
	}
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories
	          SET name = $2, description = $3, image_url = $4, is_active = $5, updated_at = NOW()
	          WHERE category_id = $1
	          RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query, c.ID, c.Name, c.Description, c.ImageURL, c.IsActive).
		Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return translate(fmt.Errorf("update category: %w", err))
	}
	return nil
}

func (r *Repository) CategoryProductIDs(ctx context.Context, categoryID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT product_id FROM products WHERE category_id = $1 ORDER BY product_id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query category products: %w", err)
	}
	return ids, nil
}

// DeleteCategory refuses while the category has active products, deactivates it
// while inactive products still reference it, and removes it otherwise.
// It reports whether the category was only deactivated.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	var soft bool
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		var locked int64
		err := tx.GetContext(ctx, &locked, `SELECT category_id FROM categories WHERE category_id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCategoryNotFound
		}
		if err != nil {
			return fmt.Errorf("lock category: %w", err)
		}

		var active, total int
		err = tx.QueryRowxContext(ctx,
			`SELECT COUNT(*) FILTER (WHERE is_active), COUNT(*) FROM products WHERE category_id = $1`, id).
			Scan(&active, &total)
		if err != nil {
			return fmt.Errorf("count category products: %w", err)
		}
		if active > 0 {
			return domain.ErrCategoryInUse
		}

		if total > 0 {
			soft = true
			_, err = tx.ExecContext(ctx,
				`UPDATE categories SET is_active = FALSE, updated_at = NOW() WHERE category_id = $1`, id)
		} else {
			_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE category_id = $1`, id)
		}
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	return soft, err
}

const productColumns = `p.product_id, p.name, p.description, p.price, p.compare_at_price, p.sku, p.stock_quantity,
	p.low_stock_threshold, p.image_url, p.image_alt, p.weight, p.tags, p.is_active, p.is_featured,
	p.category_id, c.name AS category_name, p.created_at, p.updated_at`

const productFrom = ` FROM products p JOIN categories c ON c.category_id = p.category_id`

var productSorts = map[string]string{
	"name":      "p.name",
	"price":     "p.price",
	"createdat": "p.created_at",
}

func (r *Repository) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.IsActive != nil {
		add("p.is_active = $%d", *f.IsActive)
	}
	if f.CategoryID != nil {
		add("p.category_id = $%d", *f.CategoryID)
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.IsFeatured != nil {
		add("p.is_featured = $%d", *f.IsFeatured)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR p.sku ILIKE $%[1]d)", containsPattern(s))
	}
	if tags := strings.TrimSpace(f.Tags); tags != "" {
		add("p.tags ILIKE $%d", containsPattern(tags))
	}
	clause := whereClause(where)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+productFrom+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	column, ok := productSorts[strings.ToLower(f.SortBy)]
	if !ok {
		column = "p.name"
	}
	order := sortDirection(f.SortOrder, "ASC")

	args = append(args, f.PageSize, domain.Offset(f.Page, f.PageSize))
	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY %s %s, p.product_id LIMIT $%d OFFSET $%d`,
		productColumns, productFrom, clause, column, order, len(args)-1, len(args))

	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	return products, total, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+productFrom+` WHERE p.product_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (r *Repository) FeaturedProducts(ctx context.Context, count int) ([]domain.Product, error) {
	products := []domain.Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+productFrom+`
		 WHERE p.is_active AND p.is_featured
		 ORDER BY p.created_at DESC, p.product_id DESC
		 LIMIT $1`, count)
	if err != nil {
		return nil, fmt.Errorf("query featured products: %w", err)
	}
	return products, nil
}

func (r *Repository) SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND product_id <> $2)`, sku, excludeID)
	if err != nil {
		return false, fmt.Errorf("check sku: %w", err)
	}
	return exists, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, description, price, compare_at_price, sku, stock_quantity,
	              low_stock_threshold, image_url, image_alt, weight, tags, is_active, is_featured, category_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING product_id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.Name,
		p.Description,
		p.Price,
		p.CompareAtPrice,
		p.SKU,
		p.StockQuantity,
		p.LowStockThreshold,
		p.ImageURL,
		p.ImageAlt,
		p.Weight,
		p.Tags,
		p.IsActive,
		p.IsFeatured,
		p.CategoryID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translate(fmt.Errorf("insert product: %w", err))
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products
	          SET name = $2, description = $3, price = $4, compare_at_price = $5, sku = $6, stock_quantity = $7,
	              low_stock_threshold = $8, image_url = $9, image_alt = $10, weight = $11, tags = $12,
	              is_active = $13, is_featured = $14, category_id = $15, updated_at = NOW()
	          WHERE product_id = $1
	          RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.CompareAtPrice,
		p.SKU,
		p.StockQuantity,
		p.LowStockThreshold,
		p.ImageURL,
		p.ImageAlt,
		p.Weight,
		p.Tags,
		p.IsActive,
		p.IsFeatured,
		p.CategoryID).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return translate(fmt.Errorf("update product: %w", err))
	}
	return nil
}

func (r *Repository) DeactivateProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	return expectRow(res, domain.ErrProductNotFound)
}

// DeleteProduct removes a product that no order references, along with any
// cart rows holding it.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		var locked int64
		err := tx.GetContext(ctx, &locked, `SELECT product_id FROM products WHERE product_id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		var ordered bool
		err = tx.GetContext(ctx, &ordered, `SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`, id)
		if err != nil {
			return fmt.Errorf("check product orders: %w", err)
		}
		if ordered {
			return domain.ErrProductOrdered
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("delete product cart items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, id); err != nil {
			if errors.Is(translate(err), domain.ErrReferenceViolation) {
				return domain.ErrProductOrdered
			}
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
}

// LowStockProducts lists active products at or below their threshold, using
// fallback for products without one.
func (r *Repository) LowStockProducts(ctx context.Context, fallback int) ([]domain.Product, error) {
	products := []domain.Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+productFrom+`
		 WHERE p.is_active AND p.stock_quantity <= COALESCE(p.low_stock_threshold, $1)
		 ORDER BY p.stock_quantity, p.name`, fallback)
	if err != nil {
		return nil, fmt.Errorf("query low stock products: %w", err)
	}
	return products, nil
}

func sortDirection(order, fallback string) string {
	switch strings.ToLower(order) {
	case "asc":
		return "ASC"
	case "desc":
		return "DESC"
	}
	return fallback
}
