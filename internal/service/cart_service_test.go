package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartLine(itemID, productID int64, qty, stock int, price string) domain.CartLine {
	return domain.CartLine{
		ItemID:        itemID,
		UserID:        7,
		ProductID:     productID,
		Quantity:      qty,
		ProductName:   "Product",
		UnitPrice:     decimal.RequireFromString(price),
		StockQuantity: stock,
		ProductActive: true,
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, int(itemID), 0, time.UTC),
		UpdatedAt:     time.Date(2026, 3, 1, 10, 0, int(itemID), 0, time.UTC),
	}
}

func TestGetCart_Summary(t *testing.T) {
	store := &MockCartStore{Lines: []domain.CartLine{
		cartLine(1, 10, 2, 5, "10.00"),
		cartLine(2, 11, 3, 1, "5.00"),
	}}
	sut := NewCartService(store)

	summary, err := sut.GetCart(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 2, summary.TotalItems)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, summary.EstimatedTax.Equal(decimal.RequireFromString("1.60")))
	assert.True(t, summary.HasUnavailableItems)
}

func TestGetCart_Empty(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sut := NewCartService(&MockCartStore{})
	sut.now = func() time.Time { return now }

	summary, err := sut.GetCart(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.True(t, summary.Subtotal.IsZero())
	assert.Equal(t, now, summary.LastUpdated)
}

func TestAddItem(t *testing.T) {
	products := map[int64]*domain.Product{
		10: {ID: 10, Name: "Lamp", IsActive: true, StockQuantity: 5},
		11: {ID: 11, Name: "Old", IsActive: false, StockQuantity: 5},
	}
	tests := []struct {
		name    string
		lines   []domain.CartLine
		req     domain.AddCartItemRequest
		wantQty int
		wantErr error
		wantMsg string
	}{
		{name: "new row", req: domain.AddCartItemRequest{ProductID: 10, Quantity: 2}, wantQty: 2},
		{name: "merges existing", lines: []domain.CartLine{cartLine(1, 10, 2, 5, "1")},
			req: domain.AddCartItemRequest{ProductID: 10, Quantity: 3}, wantQty: 5},
		{name: "zero quantity", req: domain.AddCartItemRequest{ProductID: 10, Quantity: 0},
			wantErr: domain.ErrInvalidQuantity},
		{name: "missing product", req: domain.AddCartItemRequest{ProductID: 99, Quantity: 1},
			wantErr: domain.ErrProductUnavailable, wantMsg: "Product not found or not available."},
		{name: "inactive product", req: domain.AddCartItemRequest{ProductID: 11, Quantity: 1},
			wantErr: domain.ErrProductUnavailable},
		{name: "over stock new row", req: domain.AddCartItemRequest{ProductID: 10, Quantity: 6},
			wantErr: domain.ErrInsufficientStock, wantMsg: "Only 5 items available in stock."},
		{name: "over stock existing row", lines: []domain.CartLine{cartLine(1, 10, 4, 5, "1")},
			req:     domain.AddCartItemRequest{ProductID: 10, Quantity: 2},
			wantErr: domain.ErrInsufficientStock, wantMsg: "Cannot add 2 more items. Only 1 more available."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockCartStore{Products: products, Lines: tt.lines}
			sut := NewCartService(store)

			_, err := sut.AddItem(context.Background(), 7, &tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.wantMsg != "" {
					assert.EqualError(t, err, tt.wantMsg)
				}
				assert.Empty(t, store.Written)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, store.Written[tt.req.ProductID])
		})
	}
}

func TestUpdateItemQuantity(t *testing.T) {
	store := &MockCartStore{Lines: []domain.CartLine{cartLine(1, 10, 1, 3, "2.00")}}
	sut := NewCartService(store)
	ctx := context.Background()

	_, err := sut.UpdateItemQuantity(ctx, 7, 1, &domain.UpdateCartItemRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, store.Written[10])

	_, err = sut.UpdateItemQuantity(ctx, 7, 1, &domain.UpdateCartItemRequest{Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = sut.UpdateItemQuantity(ctx, 7, 42, &domain.UpdateCartItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = sut.UpdateItemQuantity(ctx, 7, 1, &domain.UpdateCartItemRequest{Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestValidateCart_ReportsIssues(t *testing.T) {
	inactive := cartLine(2, 11, 1, 5, "1.00")
	inactive.ProductActive = false
	inactive.ProductName = "Retired"
	store := &MockCartStore{Lines: []domain.CartLine{cartLine(1, 10, 1, 3, "2.00"), inactive}}

	v, err := NewCartService(store).ValidateCart(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"Product 'Retired' is no longer available."}, v.Issues)
	assert.Len(t, v.UnavailableItems, 1)
}

func TestMergeGuestCart_ClampsAndSkips(t *testing.T) {
	store := &MockCartStore{
		Products: map[int64]*domain.Product{
			10: {ID: 10, IsActive: true, StockQuantity: 3},
			11: {ID: 11, IsActive: true, StockQuantity: 0},
			12: {ID: 12, IsActive: false, StockQuantity: 9},
		},
		Lines: []domain.CartLine{cartLine(1, 10, 2, 3, "1.00")},
	}
	sut := NewCartService(store)

	_, err := sut.MergeGuestCart(context.Background(), 7, []domain.GuestCartItem{
		{ProductID: 10, Quantity: 4},
		{ProductID: 11, Quantity: 1},
		{ProductID: 12, Quantity: 1},
		{ProductID: 13, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{10: 3}, store.Written)
}

func TestMergeGuestCart_EmptySkipsStore(t *testing.T) {
	store := &MockCartStore{}
	_, err := NewCartService(store).MergeGuestCart(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Nil(t, store.MergedItems)
}

func TestCountItems_StoreError(t *testing.T) {
	store := &MockCartStore{Err: errors.New("db down")}
	_, err := NewCartService(store).CountItems(context.Background(), 7)
	assert.ErrorContains(t, err, "db down")
}
