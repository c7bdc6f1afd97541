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

// summaryProjection limits populated user profiles to their public fields.
var summaryProjection = bson.M{
	"userId":         1,
	"fullName":       1,
	"email":          1,
	"profilePicture": 1,
	"phone":          1,
	"role":           1,
}

// ProfileRepository defines the interface for user profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, p *models.UserProfile) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserProfileUpdate) (*models.UserProfile, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SummariesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.ProfileSummary, error)
}

type profileRepository struct {
	base
}

// NewProfileRepository creates a new user profile repository
func NewProfileRepository(db DatabaseProvider) ProfileRepository {
	return &profileRepository{base: newBase(db, database.UserProfiles)}
}

func (r *profileRepository) Create(ctx context.Context, p *models.UserProfile) (err error) {
	ctx, span := observability.StartRepoSpan(ctx, r.collection, "Create")
	defer func() { observability.EndSpan(span, err) }()

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}

	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	res, err := coll.InsertOne(ctx, p)
	if err != nil {
		return r.mapErr(ctx, "create", "Profile", p.UserID, err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)

	r.log.Created(ctx, slog.String("id", p.ID.Hex()))
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, err := r.findOne(ctx, bson.M{"userId": userID}, userID)
	if models.IsKind(err, models.KindNotFound) {
		return nil, models.NewMissingError("Profile not found")
	}
	return p, err
}

func (r *profileRepository) findOne(ctx context.Context, filter bson.M, id string) (*models.UserProfile, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var p models.UserProfile
	if err := coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, r.mapErr(ctx, "read", "Profile", id, err)
	}
	return &p, nil
}

func (r *profileRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.UserProfileUpdate) (*models.UserProfile, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("fullName", deref(upd.FullName), upd.FullName != nil)
	set.put("phone", deref(upd.Phone), upd.Phone != nil)
	set.put("bio", deref(upd.Bio), upd.Bio != nil)
	set.put("location", upd.Location, upd.Location != nil)
	set.put("profilePicture", upd.ProfilePicture, upd.ProfilePicture != nil)
	set.put("role", deref(upd.Role), upd.Role != nil)

	var p models.UserProfile
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, set.update(), findAfter()).Decode(&p)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Profile", id.Hex(), err)
	}
	r.log.Updated(ctx, slog.String("id", id.Hex()))
	return &p, nil
}

func (r *profileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.mapErr(ctx, "delete", "Profile", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Profile", id.Hex())
	}
	r.log.Deleted(ctx, slog.String("id", id.Hex()))
	return nil
}

// SummariesByUserIDs loads the public projection of each profile in one query.
// Users without a profile are absent from the map.
func (r *profileRepository) SummariesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.ProfileSummary, error) {
	out := make(map[string]*models.ProfileSummary, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}}, options.Find().SetProjection(summaryProjection))
	if err != nil {
		return nil, r.mapErr(ctx, "populate", "Profile", "", err)
	}
	var summaries []*models.ProfileSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, r.mapErr(ctx, "populate", "Profile", "", err)
	}
	for _, s := range summaries {
		out[s.UserID] = s
	}
	return out, nil
}

// FarmProfileRepository defines the interface for farm profile data operations.
// A user has at most one farm profile.
type FarmProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.FarmProfile, error)
	Create(ctx context.Context, p *models.FarmProfile) error
	Update(ctx context.Context, userID string, in models.FarmProfileInput) (*models.FarmProfile, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type farmProfileRepository struct {
	base
}

// NewFarmProfileRepository creates a new farm profile repository
func NewFarmProfileRepository(db DatabaseProvider) FarmProfileRepository {
	return &farmProfileRepository{base: newBase(db, database.FarmProfiles)}
}

func (r *farmProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.FarmProfile, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var p models.FarmProfile
	if err := coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&p); err != nil {
		if err = r.mapErr(ctx, "read", "Farm profile", userID, err); models.IsKind(err, models.KindNotFound) {
			return nil, models.NewMissingError("Farm profile not found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *farmProfileRepository) Create(ctx context.Context, p *models.FarmProfile) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	res, err := coll.InsertOne(ctx, p)
	if err != nil {
		return r.mapErr(ctx, "create", "Farm profile", p.UserID, err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	r.log.Created(ctx, slog.String("id", p.ID.Hex()))
	return nil
}

func (r *farmProfileRepository) Update(ctx context.Context, userID string, in models.FarmProfileInput) (*models.FarmProfile, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("farmName", deref(in.FarmName), in.FarmName != nil)
	set.put("farmLocation", in.FarmLocation, in.FarmLocation != nil)
	set.put("farmSize", deref(in.FarmSize), in.FarmSize != nil)
	set.put("farmType", deref(in.FarmType), in.FarmType != nil)
	set.put("productionScale", deref(in.ProductionScale), in.ProductionScale != nil)
	set.put("crops", deref(in.Crops), in.Crops != nil)
	set.put("livestock", deref(in.Livestock), in.Livestock != nil)
	set.put("contactPhone", deref(in.ContactPhone), in.ContactPhone != nil)
	set.put("contactEmail", deref(in.ContactEmail), in.ContactEmail != nil)
	set.put("description", deref(in.Description), in.Description != nil)
	set.put("farmImages", deref(in.FarmImages), in.FarmImages != nil)

	var p models.FarmProfile
	err = coll.FindOneAndUpdate(ctx, bson.M{"userId": userID}, set.update(), findAfter()).Decode(&p)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Farm profile", userID, err)
	}
	r.log.Updated(ctx, slog.String("id", p.ID.Hex()))
	return &p, nil
}

func (r *farmProfileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return r.mapErr(ctx, "delete", "Farm profile", userID, err)
	}
	r.log.Deleted(ctx, slog.String("user_id", userID))
	return nil
}

// storeSummaryProjection limits populated store profiles to their public fields.
var storeSummaryProjection = bson.M{
	"userId":     1,
	"storeName":  1,
	"storeImage": 1,
	"location":   1,
	"phone":      1,
}

// StoreProfileRepository defines the interface for store profile data operations
type StoreProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.StoreProfile, error)
	Create(ctx context.Context, p *models.StoreProfile) error
	Update(ctx context.Context, userID string, in models.StoreProfileInput) (*models.StoreProfile, error)
	DeleteByUserID(ctx context.Context, userID string) error
	SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.StoreSummary, error)
}

type storeProfileRepository struct {
	base
}

// NewStoreProfileRepository creates a new store profile repository
func NewStoreProfileRepository(db DatabaseProvider) StoreProfileRepository {
	return &storeProfileRepository{base: newBase(db, database.StoreProfiles)}
}

func (r *storeProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.StoreProfile, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var p models.StoreProfile
	if err := coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&p); err != nil {
		if err = r.mapErr(ctx, "read", "Store profile", userID, err); models.IsKind(err, models.KindNotFound) {
			return nil, models.NewMissingError("Store profile not found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *storeProfileRepository) Create(ctx context.Context, p *models.StoreProfile) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	res, err := coll.InsertOne(ctx, p)
	if err != nil {
		return r.mapErr(ctx, "create", "Store profile", p.UserID, err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	r.log.Created(ctx, slog.String("id", p.ID.Hex()))
	return nil
}

func (r *storeProfileRepository) Update(ctx context.Context, userID string, in models.StoreProfileInput) (*models.StoreProfile, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	set := setDoc{}
	set.put("storeName", deref(in.StoreName), in.StoreName != nil)
	set.put("description", deref(in.Description), in.Description != nil)
	set.put("location", in.Location, in.Location != nil)
	set.put("phone", deref(in.Phone), in.Phone != nil)
	set.put("email", deref(in.Email), in.Email != nil)
	set.put("website", deref(in.Website), in.Website != nil)
	set.put("storeImage", in.StoreImage, in.StoreImage != nil)
	set.put("businessHours", deref(in.BusinessHours), in.BusinessHours != nil)

	var p models.StoreProfile
	err = coll.FindOneAndUpdate(ctx, bson.M{"userId": userID}, set.update(), findAfter()).Decode(&p)
	if err != nil {
		return nil, r.mapErr(ctx, "update", "Store profile", userID, err)
	}
	r.log.Updated(ctx, slog.String("id", p.ID.Hex()))
	return &p, nil
}

func (r *storeProfileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteOne(ctx, bson.M{"userId": userID}); err != nil {
		return r.mapErr(ctx, "delete", "Store profile", userID, err)
	}
	r.log.Deleted(ctx, slog.String("user_id", userID))
	return nil
}

func (r *storeProfileRepository) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.StoreSummary, error) {
	out := make(map[primitive.ObjectID]*models.StoreSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(storeSummaryProjection))
	if err != nil {
		return nil, r.mapErr(ctx, "populate", "Store profile", "", err)
	}
	var summaries []*models.StoreSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, r.mapErr(ctx, "populate", "Store profile", "", err)
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}
