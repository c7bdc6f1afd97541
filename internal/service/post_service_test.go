package service

import (
	"context"
	"testing"

	"farmconnect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPostService(farm *farmPostRepoStub, store *storePostRepoStub, storeProfiles *storeProfileRepoStub) *PostService {
	return NewPostService(farm, store, noopProfileRepo(), noopFarmProfileRepo(), storeProfiles)
}

func TestPostService_ListAllMergesTotals(t *testing.T) {
	farm := noopFarmPostRepo()
	farm.listFn = func(_ context.Context, f models.PostFilter, p models.PageRequest) ([]*models.FarmPost, error) {
		assert.Equal(t, "grain", f.CategoryID)
		assert.Equal(t, 10, p.Limit)
		return []*models.FarmPost{{UserID: "farmer-1"}, {UserID: "farmer-2"}}, nil
	}
	farm.countFn = func(_ context.Context, _ models.PostFilter) (int64, error) { return 25, nil }

	store := noopStorePostRepo()
	storeID := primitive.NewObjectID()
	store.listFn = func(_ context.Context, _ models.PostFilter, _ models.PageRequest) ([]*models.StorePost, error) {
		return []*models.StorePost{{UserID: "seller-1", StoreProfileID: storeID}}, nil
	}
	store.countFn = func(_ context.Context, _ models.PostFilter) (int64, error) { return 5, nil }

	svc := newPostService(farm, store, noopStoreProfileRepo())
	combined, merged, err := svc.ListAll(context.Background(), models.PostFilter{CategoryID: "grain"}, models.NewPageRequest(1, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(30), merged.TotalDocs)
	assert.Equal(t, 3, merged.TotalPages)
	assert.True(t, merged.HasNextPage)
	assert.False(t, merged.HasPrevPage)

	assert.Equal(t, int64(25), combined.FarmPagination.TotalDocs)
	assert.Equal(t, 1, combined.StorePagination.TotalPages)
	require.Len(t, combined.FarmPosts, 2)
	assert.Equal(t, "User farmer-1", combined.FarmPosts[0].User.FullName)
	require.Len(t, combined.StorePosts, 1)
	assert.Equal(t, "User seller-1", combined.StorePosts[0].User.FullName)
	assert.Equal(t, storeID, combined.StorePosts[0].Store.ID)
}

func TestPostService_ListPropagatesErrors(t *testing.T) {
	farm := noopFarmPostRepo()
	farm.countFn = func(_ context.Context, _ models.PostFilter) (int64, error) {
		return 0, models.NewInternalError(assert.AnError)
	}
	svc := newPostService(farm, noopStorePostRepo(), noopStoreProfileRepo())

	_, _, err := svc.ListAll(context.Background(), models.PostFilter{}, models.NewPageRequest(1, 10))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostService_CreateFarmPostValidation(t *testing.T) {
	farm := noopFarmPostRepo()
	farm.createFn = func(_ context.Context, _ *models.FarmPost) error {
		t.Fatal("create must not be called")
		return nil
	}
	svc := newPostService(farm, noopStorePostRepo(), noopStoreProfileRepo())

	_, err := svc.CreateFarmPost(context.Background(), "u1", models.FarmPostInput{Price: -1, Status: "gone"})
	appErr := assertValidationError(t, err)
	assert.ElementsMatch(t, []string{
		"title: is required",
		"category: id is required",
		"status: must be one of active, sold_out, archived",
		"price: must not be negative",
	}, appErr.Fields)
}

func TestPostService_CreateFarmPostLinksFarmProfile(t *testing.T) {
	farmProfiles := noopFarmProfileRepo()
	fpID := primitive.NewObjectID()
	farmProfiles.getFn = func(_ context.Context, userID string) (*models.FarmProfile, error) {
		return &models.FarmProfile{ID: fpID, UserID: userID}, nil
	}
	svc := NewPostService(noopFarmPostRepo(), noopStorePostRepo(), noopProfileRepo(), farmProfiles, noopStoreProfileRepo())

	post, err := svc.CreateFarmPost(context.Background(), "u1", models.FarmPostInput{
		Title:    "  Plantain  ",
		Category: models.CategoryRef{ID: "fruit"},
		Price:    12,
		Quantity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "Plantain", post.Title)
	require.NotNil(t, post.FarmProfileID)
	assert.Equal(t, fpID, *post.FarmProfileID)
	assert.Equal(t, "User u1", post.User.FullName)
}

func TestPostService_CreateStorePostRequiresStoreProfile(t *testing.T) {
	svc := newPostService(noopFarmPostRepo(), noopStorePostRepo(), noopStoreProfileRepo())

	_, err := svc.CreateStorePost(context.Background(), "u1", models.StorePostInput{
		Title:    "Hoe",
		Category: models.CategoryRef{ID: "tools"},
		Pricing:  models.Pricing{Price: 20, Currency: "GHS"},
	})
	appErr := assertValidationError(t, err)
	assert.Contains(t, appErr.Fields, "storeProfile: is required")
}

func TestPostService_UpdateFarmPostOwnerOnly(t *testing.T) {
	id := primitive.NewObjectID()
	farm := noopFarmPostRepo()
	farm.getFn = func(_ context.Context, _ primitive.ObjectID) (*models.FarmPost, error) {
		return &models.FarmPost{ID: id, UserID: "owner"}, nil
	}
	updated := false
	farm.updateFn = func(_ context.Context, _ primitive.ObjectID, _ models.FarmPostUpdate) (*models.FarmPost, error) {
		updated = true
		return &models.FarmPost{ID: id, UserID: "owner"}, nil
	}
	svc := newPostService(farm, noopStorePostRepo(), noopStoreProfileRepo())

	_, err := svc.UpdateFarmPost(context.Background(), id, "intruder", models.FarmPostUpdate{Title: ptr("Mine now")})
	assertAppErrorKind(t, err, models.KindForbidden)
	assert.False(t, updated)

	err = svc.DeleteFarmPost(context.Background(), id, "intruder")
	assertAppErrorKind(t, err, models.KindForbidden)

	_, err = svc.UpdateFarmPost(context.Background(), id, "owner", models.FarmPostUpdate{Title: ptr("Fresh maize")})
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestPostService_UpdateStorePostNotFound(t *testing.T) {
	store := noopStorePostRepo()
	store.getFn = func(_ context.Context, id primitive.ObjectID) (*models.StorePost, error) {
		return nil, models.NewNotFoundError("Store post", id.Hex())
	}
	svc := newPostService(noopFarmPostRepo(), store, noopStoreProfileRepo())

	_, err := svc.UpdateStorePost(context.Background(), primitive.NewObjectID(), "u1", models.StorePostUpdate{Stock: ptr(3)})
	assertAppErrorKind(t, err, models.KindNotFound)
}

func TestUniq(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniq([]string{"a", "b", "a"}))
	assert.Empty(t, uniq([]string{}))
}
