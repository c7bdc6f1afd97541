package repository

import (
	"context"
	"log/slog"

	"farmconnect/internal/database"
	"farmconnect/internal/models"
	"farmconnect/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CartRepository defines the interface for cart data operations.
// Every lookup is scoped by owner: an item that belongs to someone else is not found.
type CartRepository interface {
	AddOrIncrement(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	ListForUser(ctx context.Context, userID string) ([]*models.CartItem, error)
	GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.CartItem, error)
	UpdateForUser(ctx context.Context, id primitive.ObjectID, userID string, upd models.CartItemUpdate) (*models.CartItem, error)
	DeleteForUser(ctx context.Context, id primitive.ObjectID, userID string) error
	ClearForUser(ctx context.Context, userID string) (int64, error)
}

type cartRepository struct {
	base
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db DatabaseProvider) CartRepository {
	return &cartRepository{base: newBase(db, database.CartItems)}
}

// AddOrIncrement adds item.Quantity to the stored (userId, itemId) line,
// inserting it if absent, in one atomic upsert. Two racing first inserts
// leave one of them with ErrDuplicate; retrying that call increments.
func (r *cartRepository) AddOrIncrement(ctx context.Context, item *models.CartItem) (out *models.CartItem, err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "AddOrIncrement")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	ts := now()
	filter := bson.M{"userId": item.UserID, "itemId": item.ItemID}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$set": bson.M{
			"postType":  item.PostType,
			"title":     item.Title,
			"price":     item.Price,
			"currency":  item.Currency,
			"image":     item.Image,
			"sellerId":  item.SellerID,
			"updatedAt": ts,
		},
		"$setOnInsert": bson.M{"createdAt": ts},
	}

	var stored models.CartItem
	err = coll.FindOneAndUpdate(ctx, filter, update, findAfter().SetUpsert(true)).Decode(&stored)
	if err != nil {
		return nil, r.mapErr(ctx, "add", "Cart item", item.ItemID, err)
	}

	r.log.Updated(ctx, slog.String("item_id", item.ItemID), slog.Int("quantity", stored.Quantity))
	return &stored, nil
}

func (r *cartRepository) ListForUser(ctx context.Context, userID string) ([]*models.CartItem, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, r.mapErr(ctx, "list", "Cart", userID, err)
	}
	items := []*models.CartItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, r.mapErr(ctx, "list", "Cart", userID, err)
	}
	return items, nil
}

func (r *cartRepository) GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.CartItem, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&item)
	if err != nil {
		return nil, r.mapErr(ctx, "read", "Cart item", id.Hex(), err)
	}
	return &item, nil
}

func (r *cartRepository) UpdateForUser(ctx context.Context, id primitive.ObjectID, userID string, upd models.CartItemUpdate) (*models.CartItem, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("quantity", deref(upd.Quantity), upd.Quantity != nil)
	set.put("price", deref(upd.Price), upd.Price != nil)
	set.put("title", deref(upd.Title), upd.Title != nil)
	set.put("image", deref(upd.Image), upd.Image != nil)

	var item models.CartItem
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, set.update(), findAfter()).Decode(&item)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Cart item", id.Hex(), err)
	}
	r.log.Updated(ctx, slog.String("id", id.Hex()))
	return &item, nil
}

func (r *cartRepository) DeleteForUser(ctx context.Context, id primitive.ObjectID, userID string) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return r.mapErr(ctx, "delete", "Cart item", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Cart item", id.Hex())
	}
	r.log.Deleted(ctx, slog.String("id", id.Hex()))
	return nil
}

func (r *cartRepository) ClearForUser(ctx context.Context, userID string) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, r.mapErr(ctx, "clear", "Cart", userID, err)
	}
	r.log.Deleted(ctx, slog.Int64("cleared", res.DeletedCount))
	return res.DeletedCount, nil
}
