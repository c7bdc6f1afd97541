package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UserProfiles  = "user_profiles"
	FarmProfiles  = "farm_profiles"
	StoreProfiles = "store_profiles"
	FarmPosts     = "farm_posts"
	StorePosts    = "store_posts"
	CartItems     = "cart_items"
	UserReviews   = "user_reviews"
)

func postIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "category.id", Value: 1}}},
		{Keys: bson.D{{Key: "subcategory.id", Value: 1}}},
		{Keys: bson.D{{Key: "location.region", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
}

func uniqueUserID() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}}
}

// Indexes lists the indexes created for each collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UserProfiles:  uniqueUserID(),
		FarmProfiles:  uniqueUserID(),
		StoreProfiles: uniqueUserID(),
		FarmPosts:     postIndexes(),
		StorePosts:    postIndexes(),
		CartItems: {{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "itemId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("cart_user_item_unique"),
		}},
		UserReviews: {
			{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
}

// EnsureIndexes creates every index in Indexes. Existing indexes are left as is.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range Indexes() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
