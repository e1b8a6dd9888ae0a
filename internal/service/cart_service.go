package service

import (
	"context"
	"time"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

type CartService struct {
	store CartStore
	now   func() time.Time
}

func NewCartService(store CartStore) *CartService {
	return &CartService{
		store: store,
		now:   time.Now,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.CartSummary, error) {
	lines, err := s.store.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildCartSummary(userID, lines, s.now().UTC()), nil
}

func (s *CartService) CountItems(ctx context.Context, userID int64) (int, error) {
	return s.store.CountCartItems(ctx, userID)
}

// AddItem adds units of a product, merging with an existing row. The combined
// quantity is checked against stock while the product row is locked.
func (s *CartService) AddItem(ctx context.Context, userID int64, req *domain.AddCartItemRequest) (*domain.CartSummary, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	err := s.store.AddCartItem(ctx, userID, req.ProductID, func(p *domain.Product, existing int) (int, error) {
		return domain.AddQuantity(p, existing, req.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID int64,
	req *domain.UpdateCartItemRequest) (*domain.CartSummary, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	err := s.store.UpdateCartItem(ctx, userID, itemID, func(l *domain.CartLine) (int, error) {
		return domain.SetQuantity(l, req.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return s.store.RemoveCartItem(ctx, userID, itemID)
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	return s.store.ClearCart(ctx, userID)
}

func (s *CartService) ValidateCart(ctx context.Context, userID int64) (*domain.CartValidation, error) {
	lines, err := s.store.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.ValidateCart(lines), nil
}

// MergeGuestCart folds a guest cart into the user's cart. Items that cannot be
// honoured are skipped or clamped to stock rather than rejected.
func (s *CartService) MergeGuestCart(ctx context.Context, userID int64, items []domain.GuestCartItem) (*domain.CartSummary, error) {
	if len(items) > 0 {
		if err := s.store.MergeCart(ctx, userID, items, domain.MergeQuantity); err != nil {
			return nil, err
		}
	}
	return s.GetCart(ctx, userID)
}
