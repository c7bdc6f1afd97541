package service

import (
	"context"
	"errors"
	"testing"

	"farmconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cartRepoStub is a stub for repository.CartRepository.
type cartRepoStub struct {
	addFn    func(context.Context, *models.CartItem) (*models.CartItem, error)
	listFn   func(context.Context, string) ([]*models.CartItem, error)
	getFn    func(context.Context, primitive.ObjectID, string) (*models.CartItem, error)
	updateFn func(context.Context, primitive.ObjectID, string, models.CartItemUpdate) (*models.CartItem, error)
	deleteFn func(context.Context, primitive.ObjectID, string) error
	clearFn  func(context.Context, string) (int64, error)
}

func (s *cartRepoStub) AddOrIncrement(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	return s.addFn(ctx, item)
}
func (s *cartRepoStub) ListForUser(ctx context.Context, userID string) ([]*models.CartItem, error) {
	return s.listFn(ctx, userID)
}
func (s *cartRepoStub) GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.CartItem, error) {
	return s.getFn(ctx, id, userID)
}
func (s *cartRepoStub) UpdateForUser(ctx context.Context, id primitive.ObjectID, userID string, upd models.CartItemUpdate) (*models.CartItem, error) {
	return s.updateFn(ctx, id, userID, upd)
}
func (s *cartRepoStub) DeleteForUser(ctx context.Context, id primitive.ObjectID, userID string) error {
	return s.deleteFn(ctx, id, userID)
}
func (s *cartRepoStub) ClearForUser(ctx context.Context, userID string) (int64, error) {
	return s.clearFn(ctx, userID)
}

// farmPostRepoStub is a stub for repository.FarmPostRepository.
type farmPostRepoStub struct {
	createFn func(context.Context, *models.FarmPost) error
	getFn    func(context.Context, primitive.ObjectID) (*models.FarmPost, error)
	listFn   func(context.Context, models.PostFilter, models.PageRequest) ([]*models.FarmPost, error)
	countFn  func(context.Context, models.PostFilter) (int64, error)
	updateFn func(context.Context, primitive.ObjectID, models.FarmPostUpdate) (*models.FarmPost, error)
	deleteFn func(context.Context, primitive.ObjectID) error
}

func (s *farmPostRepoStub) Create(ctx context.Context, p *models.FarmPost) error {
	return s.createFn(ctx, p)
}
func (s *farmPostRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FarmPost, error) {
	return s.getFn(ctx, id)
}
func (s *farmPostRepoStub) List(ctx context.Context, f models.PostFilter, p models.PageRequest) ([]*models.FarmPost, error) {
	return s.listFn(ctx, f, p)
}
func (s *farmPostRepoStub) Count(ctx context.Context, f models.PostFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *farmPostRepoStub) Update(ctx context.Context, id primitive.ObjectID, upd models.FarmPostUpdate) (*models.FarmPost, error) {
	return s.updateFn(ctx, id, upd)
}
func (s *farmPostRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}

func noopFarmPostRepo() *farmPostRepoStub {
	return &farmPostRepoStub{
		createFn: func(_ context.Context, p *models.FarmPost) error { p.ID = primitive.NewObjectID(); return nil },
		getFn:    func(_ context.Context, id primitive.ObjectID) (*models.FarmPost, error) { return &models.FarmPost{ID: id}, nil },
		listFn: func(_ context.Context, _ models.PostFilter, _ models.PageRequest) ([]*models.FarmPost, error) {
			return []*models.FarmPost{}, nil
		},
		countFn: func(_ context.Context, _ models.PostFilter) (int64, error) { return 0, nil },
		updateFn: func(_ context.Context, id primitive.ObjectID, _ models.FarmPostUpdate) (*models.FarmPost, error) {
			return &models.FarmPost{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ primitive.ObjectID) error { return nil },
	}
}

// storePostRepoStub is a stub for repository.StorePostRepository.
type storePostRepoStub struct {
	createFn func(context.Context, *models.StorePost) error
	getFn    func(context.Context, primitive.ObjectID) (*models.StorePost, error)
	listFn   func(context.Context, models.PostFilter, models.PageRequest) ([]*models.StorePost, error)
	countFn  func(context.Context, models.PostFilter) (int64, error)
	updateFn func(context.Context, primitive.ObjectID, models.StorePostUpdate) (*models.StorePost, error)
	deleteFn func(context.Context, primitive.ObjectID) error
}

func (s *storePostRepoStub) Create(ctx context.Context, p *models.StorePost) error {
	return s.createFn(ctx, p)
}
func (s *storePostRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.StorePost, error) {
	return s.getFn(ctx, id)
}
func (s *storePostRepoStub) List(ctx context.Context, f models.PostFilter, p models.PageRequest) ([]*models.StorePost, error) {
	return s.listFn(ctx, f, p)
}
func (s *storePostRepoStub) Count(ctx context.Context, f models.PostFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *storePostRepoStub) Update(ctx context.Context, id primitive.ObjectID, upd models.StorePostUpdate) (*models.StorePost, error) {
	return s.updateFn(ctx, id, upd)
}
func (s *storePostRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}

func noopStorePostRepo() *storePostRepoStub {
	return &storePostRepoStub{
		createFn: func(_ context.Context, p *models.StorePost) error { p.ID = primitive.NewObjectID(); return nil },
		getFn:    func(_ context.Context, id primitive.ObjectID) (*models.StorePost, error) { return &models.StorePost{ID: id}, nil },
		listFn: func(_ context.Context, _ models.PostFilter, _ models.PageRequest) ([]*models.StorePost, error) {
			return []*models.StorePost{}, nil
		},
		countFn: func(_ context.Context, _ models.PostFilter) (int64, error) { return 0, nil },
		updateFn: func(_ context.Context, id primitive.ObjectID, _ models.StorePostUpdate) (*models.StorePost, error) {
			return &models.StorePost{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ primitive.ObjectID) error { return nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	createFn    func(context.Context, *models.UserProfile) error
	getFn       func(context.Context, primitive.ObjectID) (*models.UserProfile, error)
	getByUserFn func(context.Context, string) (*models.UserProfile, error)
	updateFn    func(context.Context, primitive.ObjectID, models.UserProfileUpdate) (*models.UserProfile, error)
	deleteFn    func(context.Context, primitive.ObjectID) error
	summariesFn func(context.Context, []string) (map[string]*models.ProfileSummary, error)
}

func (s *profileRepoStub) Create(ctx context.Context, p *models.UserProfile) error {
	return s.createFn(ctx, p)
}
func (s *profileRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	return s.getFn(ctx, id)
}
func (s *profileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.getByUserFn(ctx, userID)
}
func (s *profileRepoStub) Update(ctx context.Context, id primitive.ObjectID, upd models.UserProfileUpdate) (*models.UserProfile, error) {
	return s.updateFn(ctx, id, upd)
}
func (s *profileRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}
func (s *profileRepoStub) SummariesByUserIDs(ctx context.Context, ids []string) (map[string]*models.ProfileSummary, error) {
	return s.summariesFn(ctx, ids)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		createFn: func(_ context.Context, p *models.UserProfile) error { p.ID = primitive.NewObjectID(); return nil },
		getFn: func(_ context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
			return &models.UserProfile{ID: id}, nil
		},
		getByUserFn: func(_ context.Context, userID string) (*models.UserProfile, error) {
			return &models.UserProfile{ID: primitive.NewObjectID(), UserID: userID}, nil
		},
		updateFn: func(_ context.Context, id primitive.ObjectID, _ models.UserProfileUpdate) (*models.UserProfile, error) {
			return &models.UserProfile{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ primitive.ObjectID) error { return nil },
		summariesFn: func(_ context.Context, ids []string) (map[string]*models.ProfileSummary, error) {
			out := make(map[string]*models.ProfileSummary, len(ids))
			for _, id := range ids {
				out[id] = &models.ProfileSummary{UserID: id, FullName: "User " + id}
			}
			return out, nil
		},
	}
}

// farmProfileRepoStub is a stub for repository.FarmProfileRepository.
type farmProfileRepoStub struct {
	getFn    func(context.Context, string) (*models.FarmProfile, error)
	createFn func(context.Context, *models.FarmProfile) error
	updateFn func(context.Context, string, models.FarmProfileInput) (*models.FarmProfile, error)
	deleteFn func(context.Context, string) error
}

func (s *farmProfileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.FarmProfile, error) {
	return s.getFn(ctx, userID)
}
func (s *farmProfileRepoStub) Create(ctx context.Context, p *models.FarmProfile) error {
	return s.createFn(ctx, p)
}
func (s *farmProfileRepoStub) Update(ctx context.Context, userID string, in models.FarmProfileInput) (*models.FarmProfile, error) {
	return s.updateFn(ctx, userID, in)
}
func (s *farmProfileRepoStub) DeleteByUserID(ctx context.Context, userID string) error {
	return s.deleteFn(ctx, userID)
}

func noopFarmProfileRepo() *farmProfileRepoStub {
	return &farmProfileRepoStub{
		getFn: func(_ context.Context, _ string) (*models.FarmProfile, error) {
			return nil, models.NewMissingError("Farm profile not found")
		},
		createFn: func(_ context.Context, p *models.FarmProfile) error { p.ID = primitive.NewObjectID(); return nil },
		updateFn: func(_ context.Context, userID string, _ models.FarmProfileInput) (*models.FarmProfile, error) {
			return &models.FarmProfile{UserID: userID}, nil
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// storeProfileRepoStub is a stub for repository.StoreProfileRepository.
type storeProfileRepoStub struct {
	getFn       func(context.Context, string) (*models.StoreProfile, error)
	createFn    func(context.Context, *models.StoreProfile) error
	updateFn    func(context.Context, string, models.StoreProfileInput) (*models.StoreProfile, error)
	deleteFn    func(context.Context, string) error
	summariesFn func(context.Context, []primitive.ObjectID) (map[primitive.ObjectID]*models.StoreSummary, error)
}

func (s *storeProfileRepoStub) GetByUserID(ctx context.Context, userID string) (*models.StoreProfile, error) {
	return s.getFn(ctx, userID)
}
func (s *storeProfileRepoStub) Create(ctx context.Context, p *models.StoreProfile) error {
	return s.createFn(ctx, p)
}
func (s *storeProfileRepoStub) Update(ctx context.Context, userID string, in models.StoreProfileInput) (*models.StoreProfile, error) {
	return s.updateFn(ctx, userID, in)
}
func (s *storeProfileRepoStub) DeleteByUserID(ctx context.Context, userID string) error {
	return s.deleteFn(ctx, userID)
}
func (s *storeProfileRepoStub) SummariesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.StoreSummary, error) {
	return s.summariesFn(ctx, ids)
}

func noopStoreProfileRepo() *storeProfileRepoStub {
	return &storeProfileRepoStub{
		getFn: func(_ context.Context, _ string) (*models.StoreProfile, error) {
			return nil, models.NewMissingError("Store profile not found")
		},
		createFn: func(_ context.Context, p *models.StoreProfile) error { p.ID = primitive.NewObjectID(); return nil },
		updateFn: func(_ context.Context, userID string, _ models.StoreProfileInput) (*models.StoreProfile, error) {
			return &models.StoreProfile{UserID: userID}, nil
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
		summariesFn: func(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.StoreSummary, error) {
			out := make(map[primitive.ObjectID]*models.StoreSummary, len(ids))
			for _, id := range ids {
				out[id] = &models.StoreSummary{ID: id, StoreName: "Store " + id.Hex()}
			}
			return out, nil
		},
	}
}

// reviewRepoStub is a stub for repository.ReviewRepository.
type reviewRepoStub struct {
	createFn  func(context.Context, *models.UserReview) error
	getFn     func(context.Context, primitive.ObjectID) (*models.UserReview, error)
	listFn    func(context.Context, string, models.PageRequest) ([]*models.UserReview, error)
	countFn   func(context.Context, string) (int64, error)
	summaryFn func(context.Context, string) (models.RatingSummary, error)
	updateFn  func(context.Context, primitive.ObjectID, models.ReviewUpdate) (*models.UserReview, error)
	deleteFn  func(context.Context, primitive.ObjectID) error
	helpfulFn func(context.Context, primitive.ObjectID, string) (*models.UserReview, bool, error)
}

func (s *reviewRepoStub) Create(ctx context.Context, r *models.UserReview) error {
	return s.createFn(ctx, r)
}
func (s *reviewRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserReview, error) {
	return s.getFn(ctx, id)
}
func (s *reviewRepoStub) ListForRecipient(ctx context.Context, id string, p models.PageRequest) ([]*models.UserReview, error) {
	return s.listFn(ctx, id, p)
}
func (s *reviewRepoStub) CountForRecipient(ctx context.Context, id string) (int64, error) {
	return s.countFn(ctx, id)
}
func (s *reviewRepoStub) Summary(ctx context.Context, id string) (models.RatingSummary, error) {
	return s.summaryFn(ctx, id)
}
func (s *reviewRepoStub) Update(ctx context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.UserReview, error) {
	return s.updateFn(ctx, id, upd)
}
func (s *reviewRepoStub) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteFn(ctx, id)
}
func (s *reviewRepoStub) MarkHelpful(ctx context.Context, id primitive.ObjectID, userID string) (*models.UserReview, bool, error) {
	return s.helpfulFn(ctx, id, userID)
}

func noopReviewRepo() *reviewRepoStub {
	return &reviewRepoStub{
		createFn: func(_ context.Context, r *models.UserReview) error { r.ID = primitive.NewObjectID(); return nil },
		getFn: func(_ context.Context, id primitive.ObjectID) (*models.UserReview, error) {
			return &models.UserReview{ID: id}, nil
		},
		listFn: func(_ context.Context, _ string, _ models.PageRequest) ([]*models.UserReview, error) {
			return []*models.UserReview{}, nil
		},
		countFn:   func(_ context.Context, _ string) (int64, error) { return 0, nil },
		summaryFn: func(_ context.Context, _ string) (models.RatingSummary, error) { return models.RatingSummary{}, nil },
		updateFn: func(_ context.Context, id primitive.ObjectID, _ models.ReviewUpdate) (*models.UserReview, error) {
			return &models.UserReview{ID: id}, nil
		},
		deleteFn: func(_ context.Context, _ primitive.ObjectID) error { return nil },
		helpfulFn: func(_ context.Context, id primitive.ObjectID, _ string) (*models.UserReview, bool, error) {
			return &models.UserReview{ID: id, HelpfulCount: 1}, true, nil
		},
	}
}

func assertAppErrorKind(t *testing.T, err error, kind models.ErrorKind) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}

func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	return assertAppErrorKind(t, err, models.KindValidation)
}

func ptr[T any](v T) *T { return &v }
