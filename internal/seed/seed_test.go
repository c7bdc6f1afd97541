package seed

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"farmconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	profiles   map[string]models.UserRole
	farms      int
	stores     int
	farmPosts  []models.FarmPostInput
	storePosts []models.StorePostInput
	reviews    []string
	failStore  bool
}

func newRecorder() *recorder { return &recorder{profiles: map[string]models.UserRole{}} }

func (r *recorder) Create(_ context.Context, userID, _ string, in models.UserProfileInput) (*models.UserProfile, error) {
	r.profiles[userID] = in.Role
	return &models.UserProfile{UserID: userID, Role: in.Role}, nil
}

func (r *recorder) SaveFarm(_ context.Context, userID string, _ models.FarmProfileInput) (*models.FarmProfile, bool, error) {
	r.farms++
	return &models.FarmProfile{UserID: userID}, true, nil
}

func (r *recorder) SaveStore(_ context.Context, userID string, _ models.StoreProfileInput) (*models.StoreProfile, bool, error) {
	if r.failStore {
		return nil, false, errors.New("boom")
	}
	r.stores++
	return &models.StoreProfile{UserID: userID}, true, nil
}

func (r *recorder) CreateFarmPost(_ context.Context, userID string, in models.FarmPostInput) (*models.FarmPost, error) {
	r.farmPosts = append(r.farmPosts, in)
	return &models.FarmPost{UserID: userID}, nil
}

func (r *recorder) CreateStorePost(_ context.Context, userID string, in models.StorePostInput) (*models.StorePost, error) {
	r.storePosts = append(r.storePosts, in)
	return &models.StorePost{UserID: userID}, nil
}

type reviewRecorder struct{ r *recorder }

func (rr reviewRecorder) Create(_ context.Context, authorID string, in models.ReviewInput) (*models.UserReview, error) {
	rr.r.reviews = append(rr.r.reviews, authorID+">"+in.RecipientID)
	return &models.UserReview{UserID: authorID, RecipientID: in.RecipientID}, nil
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, "GHS", c.Currency)
	assert.NotEmpty(t, c.Regions)
	assert.NotEmpty(t, c.Farm)
	assert.NotEmpty(t, c.Store)
}

func TestParseCatalogRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not yaml", "regions: [\n"},
		{"no regions", "farm: [{id: a, products: [x]}]\nstore: [{id: b, products: [y]}]"},
		{"region without cities", "regions: [{name: R}]\nfarm: [{id: a, products: [x]}]\nstore: [{id: b, products: [y]}]"},
		{"no store", "regions: [{name: R, cities: [C]}]\nfarm: [{id: a, products: [x]}]"},
		{"category without products", "regions: [{name: R, cities: [C]}]\nfarm: [{id: a}]\nstore: [{id: b, products: [y]}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestFactoryProducesValidInputs(t *testing.T) {
	f := NewFactory(DefaultCatalog(), 42)
	phone := regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,18}$`)

	for i := 0; i < 20; i++ {
		userID, email, p := f.UserProfile(models.RoleFarmer)
		assert.NotEmpty(t, userID)
		assert.Equal(t, email, p.Email)
		assert.Regexp(t, phone, p.Phone)

		farm := f.FarmProfile()
		require.NotNil(t, farm.FarmSize)
		assert.Greater(t, *farm.FarmSize, 0.0)
		assert.LessOrEqual(t, *farm.FarmSize, 10000.0)
		assert.True(t, farm.FarmType.Valid())
		assert.True(t, farm.ProductionScale.Valid())
		assert.Regexp(t, phone, *farm.ContactPhone)

		store := f.StoreProfile()
		assert.NotEmpty(t, *store.StoreName)
		assert.Regexp(t, `^https://`, *store.Website)

		post := f.FarmPost()
		assert.NotEmpty(t, post.Category.ID)
		assert.GreaterOrEqual(t, post.Price, 0.0)
		assert.NotEmpty(t, post.Images)

		sp := f.StorePost()
		assert.NotEmpty(t, sp.Category.ID)
		assert.Equal(t, "GHS", sp.Pricing.Currency)
	}
}

func TestFactoryIsReproducible(t *testing.T) {
	a := NewFactory(DefaultCatalog(), 7).FarmPost()
	b := NewFactory(DefaultCatalog(), 7).FarmPost()
	assert.Equal(t, a, b)
}

func TestFactoryReviewNeverSelfReviews(t *testing.T) {
	f := NewFactory(DefaultCatalog(), 3)
	people := []string{"a", "b"}
	for i := 0; i < 50; i++ {
		author, in := f.Review(people, people)
		assert.NotEqual(t, author, in.RecipientID)
		require.NotNil(t, in.Rating)
		assert.GreaterOrEqual(t, *in.Rating, 1)
		assert.LessOrEqual(t, *in.Rating, 5)
	}
}

func TestSeederRun(t *testing.T) {
	rec := newRecorder()
	s := NewSeeder(rec, rec, reviewRecorder{rec}, DefaultCatalog(), 1)

	res, err := s.Run(context.Background(), Options{Farmers: 2, Sellers: 1, Buyers: 3, PostsPerUser: 2, Reviews: 4})
	require.NoError(t, err)

	assert.Equal(t, Result{Profiles: 6, FarmPosts: 4, StorePosts: 2, Reviews: 4}, res)
	assert.Len(t, rec.profiles, 6)
	assert.Equal(t, 2, rec.farms)
	assert.Equal(t, 1, rec.stores)
	assert.Len(t, rec.reviews, 4)
}

func TestSeederRunStopsOnError(t *testing.T) {
	rec := newRecorder()
	rec.failStore = true
	s := NewSeeder(rec, rec, reviewRecorder{rec}, DefaultCatalog(), 1)

	res, err := s.Run(context.Background(), Options{Farmers: 1, Sellers: 1, PostsPerUser: 1, Reviews: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save store profile")
	assert.Equal(t, 1, res.FarmPosts)
	assert.Zero(t, res.StorePosts)
	assert.Empty(t, rec.reviews)
}
