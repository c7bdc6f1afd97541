package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostType discriminates farm listings from store listings.
type PostType string

const (
	PostTypeFarm  PostType = "farm"
	PostTypeStore PostType = "store"
)

// Valid reports whether t is a known post type.
func (t PostType) Valid() bool {
	return t == PostTypeFarm || t == PostTypeStore
}

// PostStatus is the listing lifecycle state.
type PostStatus string

const (
	PostStatusActive   PostStatus = "active"
	PostStatusSoldOut  PostStatus = "sold_out"
	PostStatusArchived PostStatus = "archived"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusActive, PostStatusSoldOut, PostStatusArchived:
		return true
	}
	return false
}

// CategoryRef tags a post with a category or subcategory from the external catalog.
type CategoryRef struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// FarmPost is a produce listing published by a farmer.
type FarmPost struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID        string              `bson:"userId" json:"userId"`
	FarmProfileID *primitive.ObjectID `bson:"farmProfileId,omitempty" json:"farmProfileId,omitempty"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description" json:"description"`
	Category      CategoryRef         `bson:"category" json:"category"`
	Subcategory   *CategoryRef        `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Location      Location            `bson:"location" json:"location"`
	Price         float64             `bson:"price" json:"price"`
	Currency      string              `bson:"currency" json:"currency"`
	Unit          string              `bson:"unit,omitempty" json:"unit,omitempty"`
	Quantity      int                 `bson:"quantity" json:"quantity"`
	Images        []Media             `bson:"images,omitempty" json:"images,omitempty"`
	Tags          []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	Status        PostStatus          `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`

	// User is populated on read and never stored.
	User *ProfileSummary `bson:"-" json:"user,omitempty"`
}

// Pricing groups the price fields of a store listing.
type Pricing struct {
	Price      float64 `bson:"price" json:"price"`
	Currency   string  `bson:"currency" json:"currency"`
	Negotiable bool    `bson:"negotiable" json:"negotiable"`
	Discount   float64 `bson:"discount,omitempty" json:"discount,omitempty"`
}

// StorePost is a product listing published by a store.
type StorePost struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         string             `bson:"userId" json:"userId"`
	StoreProfileID primitive.ObjectID `bson:"storeProfileId" json:"storeProfileId"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Category       CategoryRef        `bson:"category" json:"category"`
	Subcategory    *CategoryRef       `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Location       Location           `bson:"location" json:"location"`
	Pricing        Pricing            `bson:"pricing" json:"pricing"`
	Condition      string             `bson:"condition,omitempty" json:"condition,omitempty"`
	Stock          int                `bson:"stock" json:"stock"`
	Images         []Media            `bson:"images,omitempty" json:"images,omitempty"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Status         PostStatus         `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`

	// User and Store are populated on read and never stored.
	User  *ProfileSummary `bson:"-" json:"user,omitempty"`
	Store *StoreSummary   `bson:"-" json:"store,omitempty"`
}

// PostFilter narrows post listings. Empty fields match everything.
type PostFilter struct {
	CategoryID    string
	SubcategoryID string
	Region        string
	UserID        string
}

// CombinedPosts is the result of listing farm and store posts together.
type CombinedPosts struct {
	FarmPosts       []*FarmPost  `json:"farmPosts"`
	StorePosts      []*StorePost `json:"storePosts"`
	FarmPagination  *Pagination  `json:"farmPagination"`
	StorePagination *Pagination  `json:"storePagination"`
}
