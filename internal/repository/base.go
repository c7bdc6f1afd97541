// Package repository provides MongoDB data access for the marketplace collections.
package repository

import (
	"context"
	"errors"
	"time"

	"farmconnect/internal/models"
	"farmconnect/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseProvider hands out the database, connecting first if needed.
// *database.Manager implements it.
type DatabaseProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate key")

// base is embedded by every repository.
type base struct {
	db         DatabaseProvider
	collection string
	log        *observability.RepoLogger
}

func newBase(db DatabaseProvider, collection string) base {
	return base{db: db, collection: collection, log: observability.NewRepoLogger(collection)}
}

func (b base) coll(ctx context.Context) (*mongo.Collection, error) {
	db, err := b.db.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(b.collection), nil
}

// mapErr translates driver errors into repository and model errors.
func (b base) mapErr(ctx context.Context, op, resource string, id any, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.NewNotFoundError(resource, id)
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicate, err)
	default:
		b.log.LogError(ctx, err, op)
		return err
	}
}

func findAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// pageOptions applies skip/limit and newest-first ordering.
func pageOptions(page models.PageRequest) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))
}

// setDoc builds a $set document from the non-nil fields of an update.
type setDoc bson.M

func (s setDoc) put(key string, v any, present bool) {
	if present {
		s[key] = v
	}
}

func (s setDoc) update() bson.M {
	s["updatedAt"] = now()
	return bson.M{"$set": bson.M(s)}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
