package server

import (
	"context"

	"farmconnect/internal/models"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockCartRepository is a mock of the CartRepository interface
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) AddOrIncrement(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListForUser(ctx context.Context, userID string) ([]*models.CartItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) GetForUser(ctx context.Context, id primitive.ObjectID, userID string) (*models.CartItem, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpdateForUser(ctx context.Context, id primitive.ObjectID, userID string, upd models.CartItemUpdate) (*models.CartItem, error) {
	args := m.Called(ctx, id, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) DeleteForUser(ctx context.Context, id primitive.ObjectID, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockCartRepository) ClearForUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockReviewRepository is a mock of the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *models.UserReview) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserReview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserReview), args.Error(1)
}

func (m *MockReviewRepository) ListForRecipient(ctx context.Context, recipientID string, page models.PageRequest) ([]*models.UserReview, error) {
	args := m.Called(ctx, recipientID, page)
	return args.Get(0).([]*models.UserReview), args.Error(1)
}

func (m *MockReviewRepository) CountForRecipient(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) Summary(ctx context.Context, recipientID string) (models.RatingSummary, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(models.RatingSummary), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.ReviewUpdate) (*models.UserReview, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserReview), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) MarkHelpful(ctx context.Context, id primitive.ObjectID, userID string) (*models.UserReview, bool, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.UserReview), args.Bool(1), args.Error(2)
}

// MockProfileRepository is a mock of the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.UserProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.UserProfileUpdate) (*models.UserProfile, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileRepository) SummariesByUserIDs(ctx context.Context, userIDs []string) (map[string]*models.ProfileSummary, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(map[string]*models.ProfileSummary), args.Error(1)
}

// MockFarmProfileRepository is a mock of the FarmProfileRepository interface
type MockFarmProfileRepository struct {
	mock.Mock
}

func (m *MockFarmProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.FarmProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmProfile), args.Error(1)
}

func (m *MockFarmProfileRepository) Create(ctx context.Context, p *models.FarmProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockFarmProfileRepository) Update(ctx context.Context, userID string, in models.FarmProfileInput) (*models.FarmProfile, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmProfile), args.Error(1)
}

func (m *MockFarmProfileRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockFarmPostRepository is a mock of the FarmPostRepository interface
type MockFarmPostRepository struct {
	mock.Mock
}

func (m *MockFarmPostRepository) Create(ctx context.Context, post *models.FarmPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockFarmPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FarmPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmPost), args.Error(1)
}

func (m *MockFarmPostRepository) List(ctx context.Context, filter models.PostFilter, page models.PageRequest) ([]*models.FarmPost, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]*models.FarmPost), args.Error(1)
}

func (m *MockFarmPostRepository) Count(ctx context.Context, filter models.PostFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFarmPostRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.FarmPostUpdate) (*models.FarmPost, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmPost), args.Error(1)
}

func (m *MockFarmPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
