package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"farmconnect/internal/auth"
	"farmconnect/internal/config"
	"farmconnect/internal/database"
	"farmconnect/internal/featureflags"
	"farmconnect/internal/models"
	"farmconnect/internal/notifications"
	"farmconnect/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type fakeDB struct{ err error }

func (f fakeDB) EnsureConnected(context.Context) error { return f.err }
func (f fakeDB) Ping(context.Context) error            { return f.err }
func (f fakeDB) Shutdown(context.Context) error        { return nil }
func (f fakeDB) State() database.State {
	if f.err != nil {
		return database.Disconnected
	}
	return database.Connected
}

func newTestServer(db connector) *Server {
	cfg := &config.Config{
		Port:        "0",
		JWTSecret:   testSecret,
		JWTIssuer:   "farm-connect",
		JWTAudience: "farm-connect-client",
	}
	return &Server{
		config:       cfg,
		db:           db,
		guard:        auth.NewGuard(cfg, nil),
		notifier:     notifications.NewNotifier(nil),
		hub:          notifications.NewHub(),
		featureFlags: featureflags.NewManager(""),
	}
}

func newTestApp(s *Server) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	s.SetupRoutes(app)
	return app
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.IssueToken(auth.Principal{ID: userID, Email: userID + "@farm.io"}, auth.TokenOptions{
		Secret:   testSecret,
		Issuer:   "farm-connect",
		Audience: "farm-connect-client",
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	return tok
}

func doRequest(t *testing.T, app *fiber.App, method, path, userID string, body any) (*http.Response, models.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var env models.Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func TestScopedRoutesRequireSession(t *testing.T) {
	app := newTestApp(newTestServer(fakeDB{}))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPost, "/api/profile/farm_me"},
		{http.MethodPost, "/api/posts/farm"},
		{http.MethodPatch, "/api/review/" + primitive.NewObjectID().Hex()},
		{http.MethodPost, "/api/review"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, env := doRequest(t, app, tt.method, tt.path, "", map[string]any{})
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, "UNAUTHORIZED", env.Code)
		})
	}
}

func TestDBRequired_ConnectionFailure(t *testing.T) {
	app := newTestApp(newTestServer(fakeDB{err: database.ErrConnectFailed}))

	resp, env := doRequest(t, app, http.MethodGet, "/api/cart", "buyer-1", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", env.Code)
	assert.Equal(t, "Internal server error", env.Error)
}

func TestGetCartItem_OtherUsersItemIsNotFound(t *testing.T) {
	mockRepo := new(MockCartRepository)
	s := newTestServer(fakeDB{})
	s.cartService = service.NewCartService(mockRepo)
	app := newTestApp(s)

	id := primitive.NewObjectID()
	mockRepo.On("GetForUser", mock.Anything, id, "buyer-2").
		Return(nil, models.NewMissingError("Cart item not found"))

	resp, env := doRequest(t, app, http.MethodGet, "/api/cart/"+id.Hex(), "buyer-2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	mockRepo.AssertExpectations(t)
}

func TestCartItem_InvalidID(t *testing.T) {
	mockRepo := new(MockCartRepository)
	s := newTestServer(fakeDB{})
	s.cartService = service.NewCartService(mockRepo)
	app := newTestApp(s)

	resp, env := doRequest(t, app, http.MethodGet, "/api/cart/not-an-id", "buyer-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid ID", env.Error)
	mockRepo.AssertNotCalled(t, "GetForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddToCart(t *testing.T) {
	mockRepo := new(MockCartRepository)
	s := newTestServer(fakeDB{})
	s.cartService = service.NewCartService(mockRepo)
	app := newTestApp(s)

	mockRepo.On("AddOrIncrement", mock.Anything, mock.MatchedBy(func(it *models.CartItem) bool {
		return it.UserID == "buyer-1" && it.ItemID == "post-1" && it.Quantity == 2
	})).Return(&models.CartItem{ID: primitive.NewObjectID(), UserID: "buyer-1", ItemID: "post-1", Quantity: 5}, nil)

	resp, env := doRequest(t, app, http.MethodPost, "/api/cart", "buyer-1", map[string]any{
		"itemId":   "post-1",
		"postType": "farm",
		"title":    "Yams",
		"price":    12.5,
		"quantity": 2,
		"userId":   "someone-else",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	mockRepo.AssertExpectations(t)
}

func TestUpdateReview_ForbiddenLeavesReviewUnchanged(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	s := newTestServer(fakeDB{})
	s.reviewService = service.NewReviewService(mockRepo, new(MockProfileRepository))
	app := newTestApp(s)

	id := primitive.NewObjectID()
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.UserReview{ID: id, UserID: "author"}, nil)

	for _, method := range []string{http.MethodPatch, http.MethodDelete} {
		resp, env := doRequest(t, app, method, "/api/review/"+id.Hex(), "intruder", map[string]any{"rating": 1})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, method)
		assert.Equal(t, "FORBIDDEN", env.Code)
	}
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateReview_InvalidPayloadLeavesReviewUnchanged(t *testing.T) {
	mockRepo := new(MockReviewRepository)
	s := newTestServer(fakeDB{})
	s.reviewService = service.NewReviewService(mockRepo, new(MockProfileRepository))
	app := newTestApp(s)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"rating above range", map[string]any{"rating": 6}},
		{"rating below range", map[string]any{"rating": 0}},
		{"content too long", map[string]any{"content": strings.Repeat("x", models.MaxReviewContent+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doRequest(t, app, http.MethodPatch, "/api/review/"+primitive.NewObjectID().Hex(), "author", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", env.Code)
			assert.Len(t, env.Errors, 1)
		})
	}
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveFarmProfile_RejectsOversizedFarm(t *testing.T) {
	farmRepo := new(MockFarmProfileRepository)
	s := newTestServer(fakeDB{})
	s.profileService = service.NewProfileService(new(MockProfileRepository), farmRepo, nil, nil)
	app := newTestApp(s)

	farmRepo.On("GetByUserID", mock.Anything, "farmer-1").
		Return(nil, models.NewMissingError("Farm profile not found"))

	resp, env := doRequest(t, app, http.MethodPost, "/api/profile/farm_me", "farmer-1", map[string]any{
		"farmName":        "Green Acres",
		"farmSize":        15000,
		"farmType":        "mixed",
		"productionScale": "small",
		"contactPhone":    "+233241234567",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Contains(t, env.Errors, "farmSize: must be greater than 0 and at most 10000")
	farmRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	farmRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestListFarmPosts_Pagination(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		page     models.PageRequest
		total    int64
		wantNext bool
		wantPrev bool
		wantPage int
	}{
		{"first page", "", models.PageRequest{Page: 1, Limit: 10}, 25, true, false, 3},
		{"middle page", "?page=2&limit=10", models.PageRequest{Page: 2, Limit: 10}, 25, true, true, 3},
		{"last page", "?page=3&limit=10", models.PageRequest{Page: 3, Limit: 10}, 25, false, true, 3},
		{"clamped", "?page=0&limit=500", models.PageRequest{Page: 1, Limit: 100}, 25, false, false, 1},
		{"empty", "?page=1&limit=10", models.PageRequest{Page: 1, Limit: 10}, 0, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := new(MockFarmPostRepository)
			profileRepo := new(MockProfileRepository)
			s := newTestServer(fakeDB{})
			s.postService = service.NewPostService(postRepo, nil, profileRepo, nil, nil)
			app := newTestApp(s)

			postRepo.On("List", mock.Anything, models.PostFilter{}, tt.page).
				Return([]*models.FarmPost{{ID: primitive.NewObjectID(), UserID: "farmer-1"}}, nil)
			postRepo.On("Count", mock.Anything, models.PostFilter{}).Return(tt.total, nil)
			profileRepo.On("SummariesByUserIDs", mock.Anything, []string{"farmer-1"}).
				Return(map[string]*models.ProfileSummary{"farmer-1": {UserID: "farmer-1", FullName: "Ama"}}, nil)

			resp, env := doRequest(t, app, http.MethodGet, "/api/posts/farm"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NotNil(t, env.Pagination)
			assert.Equal(t, tt.page.Page, env.Pagination.Page)
			assert.Equal(t, tt.total, env.Pagination.TotalDocs)
			assert.Equal(t, tt.wantPage, env.Pagination.TotalPages)
			assert.Equal(t, tt.wantNext, env.Pagination.HasNextPage)
			assert.Equal(t, tt.wantPrev, env.Pagination.HasPrevPage)
			postRepo.AssertExpectations(t)
		})
	}
}

func TestListEndpoints_RejectOversizedPage(t *testing.T) {
	postRepo := new(MockFarmPostRepository)
	reviewRepo := new(MockReviewRepository)
	profileRepo := new(MockProfileRepository)
	s := newTestServer(fakeDB{})
	s.postService = service.NewPostService(postRepo, nil, profileRepo, nil, nil)
	s.reviewService = service.NewReviewService(reviewRepo, profileRepo)
	app := newTestApp(s)

	for _, path := range []string{"/api/posts", "/api/posts/farm", "/api/posts/store", "/api/review/user/u1"} {
		resp, env := doRequest(t, app, http.MethodGet, path+"?page=1844674407370955161&limit=10", "", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, "VALIDATION_ERROR", env.Code, path)
		assert.Equal(t, []string{fmt.Sprintf("page: must be at most %d", models.MaxPage)}, env.Errors, path)
	}

	postRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	reviewRepo.AssertNotCalled(t, "ListForRecipient", mock.Anything, mock.Anything, mock.Anything)
}

func TestListFarmPosts_Filters(t *testing.T) {
	postRepo := new(MockFarmPostRepository)
	s := newTestServer(fakeDB{})
	s.postService = service.NewPostService(postRepo, nil, new(MockProfileRepository), nil, nil)
	app := newTestApp(s)

	filter := models.PostFilter{CategoryID: "grains", Region: "Ashanti", UserID: "farmer-9"}
	postRepo.On("List", mock.Anything, filter, models.PageRequest{Page: 1, Limit: 10}).Return([]*models.FarmPost{}, nil)
	postRepo.On("Count", mock.Anything, filter).Return(int64(0), nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/posts/farm?categoryId=grains&region=Ashanti&userId=farmer-9", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	postRepo.AssertExpectations(t)
}

func TestCreateReview_NotifiesRecipient(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	profileRepo := new(MockProfileRepository)
	s := newTestServer(fakeDB{})
	s.reviewService = service.NewReviewService(reviewRepo, profileRepo)
	app := newTestApp(s)

	recipient, err := s.hub.Register("farmer-1", nil)
	require.NoError(t, err)
	defer s.hub.UnregisterClient(recipient)

	reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.UserReview")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.UserReview).ID = primitive.NewObjectID() }).
		Return(nil)
	profileRepo.On("SummariesByUserIDs", mock.Anything, []string{"buyer-1"}).
		Return(map[string]*models.ProfileSummary{"buyer-1": {UserID: "buyer-1", FullName: "Kwame"}}, nil)

	resp, env := doRequest(t, app, http.MethodPost, "/api/review", "buyer-1", map[string]any{
		"recipientId": "farmer-1",
		"rating":      5,
		"content":     "Fresh produce",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)

	select {
	case msg := <-recipient.Send:
		var ev notifications.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, notifications.EventReviewReceived, ev.Type)
		assert.Equal(t, "buyer-1", ev.Payload["authorId"])
	case <-time.After(time.Second):
		t.Fatal("recipient was not notified")
	}
}

func TestCreateReview_SelfReviewRejected(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	s := newTestServer(fakeDB{})
	s.reviewService = service.NewReviewService(reviewRepo, new(MockProfileRepository))
	app := newTestApp(s)

	resp, env := doRequest(t, app, http.MethodPost, "/api/review", "farmer-1", map[string]any{
		"recipientId": "farmer-1",
		"content":     "I am great",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "recipientId: you cannot review yourself")
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret detail") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "secret detail")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetFeatureFlags(t *testing.T) {
	s := newTestServer(fakeDB{})
	s.featureFlags = featureflags.NewManager("notifications=on,profile_cache=off")
	app := newTestApp(s)

	resp, env := doRequest(t, app, http.MethodGet, "/api/admin/feature-flags", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	evaluated := data["evaluated"].(map[string]any)
	assert.Equal(t, true, evaluated["notifications"])
	assert.Equal(t, false, evaluated["profile_cache"])
}

func TestLivenessAndReadiness(t *testing.T) {
	app := newTestApp(newTestServer(fakeDB{}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newTestApp(newTestServer(fakeDB{err: database.ErrNotConnected}))
	resp, err = down.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
