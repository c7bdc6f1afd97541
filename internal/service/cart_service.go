package service

import (
	"context"
	"errors"
	"strings"

	"farmconnect/internal/models"
	"farmconnect/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

// Add puts in.Quantity of an item into the user's cart, incrementing an
// existing line for the same item. Concurrent first adds of one item end
// as a single line holding the summed quantity.
func (s *CartService) Add(ctx context.Context, userID string, in models.CartItemInput) (*models.CartItem, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	var v violations
	v.require("itemId", in.ItemID)
	v.require("title", in.Title)
	if !in.PostType.Valid() {
		v.add("postType", "must be one of farm, store")
	}
	if in.Price < 0 {
		v.add("price", "must not be negative")
	}
	if in.Quantity < 1 {
		v.add("quantity", "must be at least 1")
	}
	if err := v.err("Invalid cart item"); err != nil {
		return nil, err
	}

	item := &models.CartItem{
		UserID:   userID,
		ItemID:   strings.TrimSpace(in.ItemID),
		PostType: in.PostType,
		Title:    strings.TrimSpace(in.Title),
		Price:    in.Price,
		Currency: in.Currency,
		Image:    in.Image,
		SellerID: in.SellerID,
		Quantity: in.Quantity,
	}

	stored, err := s.cartRepo.AddOrIncrement(ctx, item)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the insert race; the line exists now, so this increments it.
		stored, err = s.cartRepo.AddOrIncrement(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *CartService) List(ctx context.Context, userID string) ([]*models.CartItem, models.CartSummary, error) {
	items, err := s.cartRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, models.CartSummary{}, err
	}
	return items, models.Summarize(items), nil
}

func (s *CartService) Get(ctx context.Context, id primitive.ObjectID, userID string) (*models.CartItem, error) {
	return s.cartRepo.GetForUser(ctx, id, userID)
}

func (s *CartService) Update(ctx context.Context, id primitive.ObjectID, userID string, upd models.CartItemUpdate) (*models.CartItem, error) {
	var v violations
	if upd.Quantity != nil && *upd.Quantity < 1 {
		v.add("quantity", "must be at least 1")
	}
	if upd.Price != nil && *upd.Price < 0 {
		v.add("price", "must not be negative")
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		v.add("title", "must not be empty")
	}
	if err := v.err("Invalid cart update"); err != nil {
		return nil, err
	}
	return s.cartRepo.UpdateForUser(ctx, id, userID, upd)
}

func (s *CartService) Remove(ctx context.Context, id primitive.ObjectID, userID string) error {
	return s.cartRepo.DeleteForUser(ctx, id, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.cartRepo.ClearForUser(ctx, userID)
}
