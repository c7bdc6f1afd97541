package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewContent = 500
)

// UserReview is a review written by UserID about RecipientID.
type UserReview struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       string             `bson:"userId" json:"userId"`
	RecipientID  string             `bson:"recipientId" json:"recipientId"`
	PostID       string             `bson:"postId,omitempty" json:"postId,omitempty"`
	Rating       *int               `bson:"rating,omitempty" json:"rating,omitempty"`
	Content      string             `bson:"content" json:"content"`
	HelpfulCount int                `bson:"helpfulCount" json:"helpfulCount"`
	HelpfulBy    []string           `bson:"helpfulBy,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Author is populated on read and never stored.
	Author *ProfileSummary `bson:"-" json:"author,omitempty"`
}

// RatingSummary aggregates the reviews a user has received.
type RatingSummary struct {
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
	TotalReviews  int64   `bson:"totalReviews" json:"totalReviews"`
	RatedReviews  int64   `bson:"ratedReviews" json:"ratedReviews"`
}
