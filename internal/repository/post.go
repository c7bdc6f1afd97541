package repository

import (
	"context"
	"log/slog"

	"farmconnect/internal/database"
	"farmconnect/internal/models"
	"farmconnect/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// postFilterDoc translates a PostFilter into a query document. Empty fields match all.
func postFilterDoc(f models.PostFilter) bson.M {
	doc := bson.M{}
	if f.CategoryID != "" {
		doc["category.id"] = f.CategoryID
	}
	if f.SubcategoryID != "" {
		doc["subcategory.id"] = f.SubcategoryID
	}
	if f.Region != "" {
		doc["location.region"] = f.Region
	}
	if f.UserID != "" {
		doc["userId"] = f.UserID
	}
	return doc
}

// FarmPostRepository defines the interface for farm listing data operations
type FarmPostRepository interface {
	Create(ctx context.Context, post *models.FarmPost) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FarmPost, error)
	List(ctx context.Context, filter models.PostFilter, page models.PageRequest) ([]*models.FarmPost, error)
	Count(ctx context.Context, filter models.PostFilter) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.FarmPostUpdate) (*models.FarmPost, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type farmPostRepository struct {
	base
}

// NewFarmPostRepository creates a new farm post repository
func NewFarmPostRepository(db DatabaseProvider) FarmPostRepository {
	return &farmPostRepository{base: newBase(db, database.FarmPosts)}
}

func (r *farmPostRepository) Create(ctx context.Context, post *models.FarmPost) (err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "Create")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	ts := now()
	post.CreatedAt, post.UpdatedAt = ts, ts
	if post.Status == "" {
		post.Status = models.PostStatusActive
	}
	res, err := coll.InsertOne(ctx, post)
	if err != nil {
		return r.mapErr(ctx, "create", "Farm post", post.Title, err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)

	r.log.Created(ctx, slog.String("id", post.ID.Hex()), slog.String("user_id", post.UserID))
	return nil
}

func (r *farmPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FarmPost, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	var post models.FarmPost
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, r.mapErr(ctx, "read", "Farm post", id.Hex(), err)
	}
	r.log.Read(ctx, slog.String("id", id.Hex()))
	return &post, nil
}

func (r *farmPostRepository) List(ctx context.Context, filter models.PostFilter, page models.PageRequest) (posts []*models.FarmPost, err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "List")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, postFilterDoc(filter), pageOptions(page))
	if err != nil {
		return nil, r.mapErr(ctx, "list", "Farm posts", "", err)
	}
	posts = []*models.FarmPost{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, r.mapErr(ctx, "list", "Farm posts", "", err)
	}
	return posts, nil
}

func (r *farmPostRepository) Count(ctx context.Context, filter models.PostFilter) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, postFilterDoc(filter))
	if err != nil {
		return 0, r.mapErr(ctx, "count", "Farm posts", "", err)
	}
	return n, nil
}

func (r *farmPostRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.FarmPostUpdate) (*models.FarmPost, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("title", deref(upd.Title), upd.Title != nil)
	set.put("description", deref(upd.Description), upd.Description != nil)
	set.put("category", deref(upd.Category), upd.Category != nil)
	set.put("subcategory", upd.Subcategory, upd.Subcategory != nil)
	set.put("location", deref(upd.Location), upd.Location != nil)
	set.put("price", deref(upd.Price), upd.Price != nil)
	set.put("currency", deref(upd.Currency), upd.Currency != nil)
	set.put("unit", deref(upd.Unit), upd.Unit != nil)
	set.put("quantity", deref(upd.Quantity), upd.Quantity != nil)
	set.put("images", deref(upd.Images), upd.Images != nil)
	set.put("tags", deref(upd.Tags), upd.Tags != nil)
	set.put("status", deref(upd.Status), upd.Status != nil)

	var post models.FarmPost
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, set.update(), findAfter()).Decode(&post)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Farm post", id.Hex(), err)
	}
	r.log.Updated(ctx, slog.String("id", id.Hex()))
	return &post, nil
}

func (r *farmPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.mapErr(ctx, "delete", "Farm post", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Farm post", id.Hex())
	}
	r.log.Deleted(ctx, slog.String("id", id.Hex()))
	return nil
}

// StorePostRepository defines the interface for store listing data operations
type StorePostRepository interface {
	Create(ctx context.Context, post *models.StorePost) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.StorePost, error)
	List(ctx context.Context, filter models.PostFilter, page models.PageRequest) ([]*models.StorePost, error)
	Count(ctx context.Context, filter models.PostFilter) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.StorePostUpdate) (*models.StorePost, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type storePostRepository struct {
	base
}

// NewStorePostRepository creates a new store post repository
func NewStorePostRepository(db DatabaseProvider) StorePostRepository {
	return &storePostRepository{base: newBase(db, database.StorePosts)}
}

func (r *storePostRepository) Create(ctx context.Context, post *models.StorePost) (err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "Create")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	ts := now()
	post.CreatedAt, post.UpdatedAt = ts, ts
	if post.Status == "" {
		post.Status = models.PostStatusActive
	}
	res, err := coll.InsertOne(ctx, post)
	if err != nil {
		return r.mapErr(ctx, "create", "Store post", post.Title, err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)

	r.log.Created(ctx, slog.String("id", post.ID.Hex()), slog.String("user_id", post.UserID))
	return nil
}

func (r *storePostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.StorePost, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	var post models.StorePost
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, r.mapErr(ctx, "read", "Store post", id.Hex(), err)
	}
	return &post, nil
}

func (r *storePostRepository) List(ctx context.Context, filter models.PostFilter, page models.PageRequest) (posts []*models.StorePost, err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "List")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, postFilterDoc(filter), pageOptions(page))
	if err != nil {
		return nil, r.mapErr(ctx, "list", "Store posts", "", err)
	}
	posts = []*models.StorePost{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, r.mapErr(ctx, "list", "Store posts", "", err)
	}
	return posts, nil
}

func (r *storePostRepository) Count(ctx context.Context, filter models.PostFilter) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, postFilterDoc(filter))
	if err != nil {
		return 0, r.mapErr(ctx, "count", "Store posts", "", err)
	}
	return n, nil
}

func (r *storePostRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.StorePostUpdate) (*models.StorePost, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("title", deref(upd.Title), upd.Title != nil)
	set.put("description", deref(upd.Description), upd.Description != nil)
	set.put("category", deref(upd.Category), upd.Category != nil)
	set.put("subcategory", upd.Subcategory, upd.Subcategory != nil)
	set.put("location", deref(upd.Location), upd.Location != nil)
	set.put("pricing", deref(upd.Pricing), upd.Pricing != nil)
	set.put("condition", deref(upd.Condition), upd.Condition != nil)
	set.put("stock", deref(upd.Stock), upd.Stock != nil)
	set.put("images", deref(upd.Images), upd.Images != nil)
	set.put("tags", deref(upd.Tags), upd.Tags != nil)
	set.put("status", deref(upd.Status), upd.Status != nil)

	var post models.StorePost
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, set.update(), findAfter()).Decode(&post)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Store post", id.Hex(), err)
	}
	r.log.Updated(ctx, slog.String("id", id.Hex()))
	return &post, nil
}

func (r *storePostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.mapErr(ctx, "delete", "Store post", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Store post", id.Hex())
	}
	r.log.Deleted(ctx, slog.String("id", id.Hex()))
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
