package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one line of a user's cart. (UserID, ItemID) is unique.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    string             `bson:"userId" json:"userId"`
	ItemID    string             `bson:"itemId" json:"itemId"`
	PostType  PostType           `bson:"postType" json:"postType"`
	Title     string             `bson:"title" json:"title"`
	Price     float64            `bson:"price" json:"price"`
	Currency  string             `bson:"currency,omitempty" json:"currency,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	SellerID  string             `bson:"sellerId,omitempty" json:"sellerId,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartSummary aggregates a user's cart.
type CartSummary struct {
	TotalItems    int     `json:"totalItems"`
	TotalQuantity int     `json:"totalQuantity"`
	Subtotal      float64 `json:"subtotal"`
}

// Summarize totals the given cart lines.
func Summarize(items []*CartItem) CartSummary {
	var s CartSummary
	for _, it := range items {
		s.TotalItems++
		s.TotalQuantity += it.Quantity
		s.Subtotal += it.Price * float64(it.Quantity)
	}
	return s
}
