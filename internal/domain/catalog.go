package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           int64     `db:"category_id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	ImageURL     string    `db:"image_url" json:"imageUrl"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	ProductCount int       `db:"product_count" json:"productCount"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	IsActive    *bool  `json:"isActive"`
}

func (in *CategoryInput) Validate() error {
	if err := requireLength("Name", in.Name, 100); err != nil {
		return err
	}
	if err := maxLength("Description", in.Description, 500); err != nil {
		return err
	}
	return maxLength("Image URL", in.ImageURL, 500)
}

// Apply copies the input onto c. IsActive is left alone when omitted.
func (in *CategoryInput) Apply(c *Category) {
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	c.ImageURL = in.ImageURL
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

var (
	MinProductPrice = decimal.RequireFromString("0.01")
	MaxProductPrice = decimal.RequireFromString("999999.99")
)

type Product struct {
	ID                int64               `db:"product_id" json:"id"`
	Name              string              `db:"name" json:"name"`
	Description       string              `db:"description" json:"description"`
	Price             decimal.Decimal     `db:"price" json:"price"`
	CompareAtPrice    decimal.NullDecimal `db:"compare_at_price" json:"compareAtPrice"`
	SKU               *string             `db:"sku" json:"sku"`
	StockQuantity     int                 `db:"stock_quantity" json:"stockQuantity"`
	LowStockThreshold *int                `db:"low_stock_threshold" json:"lowStockThreshold"`
	ImageURL          string              `db:"image_url" json:"imageUrl"`
	ImageAlt          string              `db:"image_alt" json:"imageAlt"`
	Weight            decimal.NullDecimal `db:"weight" json:"weight"`
	Tags              string              `db:"tags" json:"tags"`
	IsActive          bool                `db:"is_active" json:"isActive"`
	IsFeatured        bool                `db:"is_featured" json:"isFeatured"`
	CategoryID        int64               `db:"category_id" json:"categoryId"`
	CategoryName      string              `db:"category_name" json:"categoryName"`
	CreatedAt         time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updatedAt"`
}

// InStock reports whether at least qty units can be sold right now.
func (p *Product) InStock(qty int) bool {
	return p.IsActive && p.StockQuantity >= qty
}

type ProductInput struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Price             decimal.Decimal     `json:"price"`
	CompareAtPrice    decimal.NullDecimal `json:"compareAtPrice"`
	SKU               string              `json:"sku"`
	StockQuantity     int                 `json:"stockQuantity"`
	LowStockThreshold *int                `json:"lowStockThreshold"`
	ImageURL          string              `json:"imageUrl"`
	ImageAlt          string              `json:"imageAlt"`
	Weight            decimal.NullDecimal `json:"weight"`
	Tags              string              `json:"tags"`
	IsActive          *bool               `json:"isActive"`
	IsFeatured        bool                `json:"isFeatured"`
	CategoryID        int64               `json:"categoryId"`
}

func (in *ProductInput) Validate() error {
	if err := requireLength("Name", in.Name, 200); err != nil {
		return err
	}
	if err := maxLength("Description", in.Description, 2000); err != nil {
		return err
	}
	if in.Price.LessThan(MinProductPrice) || in.Price.GreaterThan(MaxProductPrice) {
		return Validationf("Price must be between %s and %s.", MinProductPrice.StringFixed(2), MaxProductPrice.StringFixed(2))
	}
	if in.CompareAtPrice.Valid && !in.CompareAtPrice.Decimal.IsPositive() {
		return Validationf("Compare-at price must be positive.")
	}
	if err := maxLength("SKU", in.SKU, 50); err != nil {
		return err
	}
	if in.StockQuantity < 0 {
		return Validationf("Stock quantity cannot be negative.")
	}
	if in.LowStockThreshold != nil && *in.LowStockThreshold < 0 {
		return Validationf("Low stock threshold cannot be negative.")
	}
	if in.Weight.Valid && in.Weight.Decimal.IsNegative() {
		return Validationf("Weight cannot be negative.")
	}
	if err := maxLength("Tags", in.Tags, 500); err != nil {
		return err
	}
	if in.CategoryID <= 0 {
		return Validationf("Category is required.")
	}
	return nil
}

// NormalizedSKU is the stored form of the SKU; blank means none.
func (in *ProductInput) NormalizedSKU() *string {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil
	}
	return &sku
}

// Apply copies the input onto p. IsActive is left alone when omitted.
func (in *ProductInput) Apply(p *Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.CompareAtPrice = in.CompareAtPrice
	p.SKU = in.NormalizedSKU()
	p.StockQuantity = in.StockQuantity
	p.LowStockThreshold = in.LowStockThreshold
	p.ImageURL = in.ImageURL
	p.ImageAlt = in.ImageAlt
	p.Weight = in.Weight
	p.Tags = in.Tags
	p.IsFeatured = in.IsFeatured
	p.CategoryID = in.CategoryID
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

type ProductFilter struct {
	CategoryID *int64
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsFeatured *bool
	IsActive   *bool
	Search     string
	Tags       string
	SortBy     string
	SortOrder  string
	Page       int
	PageSize   int
}
