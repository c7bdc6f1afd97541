package repository

import (
	"context"
	"errors"
	"log/slog"

	"farmconnect/internal/database"
	"farmconnect/internal/models"
	"farmconnect/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, r *models.UserReview) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserReview, error)
	ListForRecipient(ctx context.Context, recipientID string, page models.PageRequest) ([]*models.UserReview, error)
	CountForRecipient(ctx context.Context, recipientID string) (int64, error)
	Summary(ctx context.Context, recipientID string) (models.RatingSummary, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.UserReview, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	MarkHelpful(ctx context.Context, id primitive.ObjectID, userID string) (*models.UserReview, bool, error)
}

type reviewRepository struct {
	base
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DatabaseProvider) ReviewRepository {
	return &reviewRepository{base: newBase(db, database.UserReviews)}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.UserReview) (err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "Create")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	ts := now()
	review.CreatedAt, review.UpdatedAt = ts, ts
	res, err := coll.InsertOne(ctx, review)
	if err != nil {
		return r.mapErr(ctx, "create", "Review", review.RecipientID, err)
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	r.log.Created(ctx, slog.String("id", review.ID.Hex()), slog.String("recipient_id", review.RecipientID))
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserReview, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var review models.UserReview
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, r.mapErr(ctx, "read", "Review", id.Hex(), err)
	}
	return &review, nil
}

func (r *reviewRepository) ListForRecipient(ctx context.Context, recipientID string, page models.PageRequest) ([]*models.UserReview, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{"recipientId": recipientID}, pageOptions(page))
	if err != nil {
		return nil, r.mapErr(ctx, "list", "Reviews", recipientID, err)
	}
	reviews := []*models.UserReview{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, r.mapErr(ctx, "list", "Reviews", recipientID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) CountForRecipient(ctx context.Context, recipientID string) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{"recipientId": recipientID})
	if err != nil {
		return 0, r.mapErr(ctx, "count", "Reviews", recipientID, err)
	}
	return n, nil
}

// Summary aggregates every review of recipientID. Unrated reviews count
// towards the total but not the average.
func (r *reviewRepository) Summary(ctx context.Context, recipientID string) (sum models.RatingSummary, err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "Summary")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return sum, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipientId": recipientID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"averageRating": bson.M{"$avg": "$rating"},
			"totalReviews":  bson.M{"$sum": 1},
			"ratedReviews": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$gt": bson.A{bson.M{"$ifNull": bson.A{"$rating", 0}}, 0}}, 1, 0},
			}},
		}}},
	}

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return sum, r.mapErr(ctx, "summary", "Reviews", recipientID, err)
	}
	var rows []models.RatingSummary
	if err := cur.All(ctx, &rows); err != nil {
		return sum, r.mapErr(ctx, "summary", "Reviews", recipientID, err)
	}
	if len(rows) == 0 {
		return sum, nil
	}
	return rows[0], nil
}

func (r *reviewRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.UserReview, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("rating", upd.Rating, upd.Rating != nil)
	set.put("content", deref(upd.Content), upd.Content != nil)

	var review models.UserReview
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, set.update(), findAfter()).Decode(&review)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Review", id.Hex(), err)
	}
	r.log.Updated(ctx, slog.String("id", id.Hex()))
	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.mapErr(ctx, "delete", "Review", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Review", id.Hex())
	}
	r.log.Deleted(ctx, slog.String("id", id.Hex()))
	return nil
}

// MarkHelpful records userID's helpful vote once. The bool reports whether
// this call added the vote.
func (r *reviewRepository) MarkHelpful(ctx context.Context, id primitive.ObjectID, userID string) (*models.UserReview, bool, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{"_id": id, "helpfulBy": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"helpfulBy": userID},
		"$inc":      bson.M{"helpfulCount": 1},
	}

	var review models.UserReview
	err = coll.FindOneAndUpdate(ctx, filter, update, findAfter()).Decode(&review)
	if err == nil {
		r.log.Updated(ctx, slog.String("id", id.Hex()), slog.Int("helpful_count", review.HelpfulCount))
		return &review, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, r.mapErr(ctx, "helpful", "Review", id.Hex(), err)
	}

	// Either missing or already voted.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
