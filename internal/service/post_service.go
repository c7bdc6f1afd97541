package service

import (
	"context"
	"strings"

	"farmconnect/internal/models"
	"farmconnect/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

type PostService struct {
	farmRepo         repository.FarmPostRepository
	storeRepo        repository.StorePostRepository
	profileRepo      repository.ProfileRepository
	farmProfileRepo  repository.FarmProfileRepository
	storeProfileRepo repository.StoreProfileRepository
}

func NewPostService(
	farmRepo repository.FarmPostRepository,
	storeRepo repository.StorePostRepository,
	profileRepo repository.ProfileRepository,
	farmProfileRepo repository.FarmProfileRepository,
	storeProfileRepo repository.StoreProfileRepository,
) *PostService {
	return &PostService{
		farmRepo:         farmRepo,
		storeRepo:        storeRepo,
		profileRepo:      profileRepo,
		farmProfileRepo:  farmProfileRepo,
		storeProfileRepo: storeProfileRepo,
	}
}

// listing holds the fields farm and store posts share, for validation.
type listing struct {
	title, description *string
	category           *models.CategoryRef
	status             *models.PostStatus
	images             *[]models.Media
}

func (l listing) check(v *violations, creating bool) {
	if creating || l.title != nil {
		v.require("title", deref(l.title))
	}
	if l.title != nil && len(*l.title) > maxTitleLen {
		v.add("title", "must be at most %d characters", maxTitleLen)
	}
	if l.description != nil && len(*l.description) > maxDescriptionLen {
		v.add("description", "must be at most %d characters", maxDescriptionLen)
	}
	if (creating || l.category != nil) && (l.category == nil || strings.TrimSpace(l.category.ID) == "") {
		v.add("category", "id is required")
	}
	if l.status != nil && *l.status != "" && !l.status.Valid() {
		v.add("status", "must be one of active, sold_out, archived")
	}
	if l.images != nil {
		for _, img := range *l.images {
			if strings.TrimSpace(img.URL) == "" {
				v.add("images", "every image needs a url")
				break
			}
		}
	}
}

func (s *PostService) CreateFarmPost(ctx context.Context, userID string, in models.FarmPostInput) (*models.FarmPost, error) {
	var v violations
	listing{&in.Title, &in.Description, &in.Category, &in.Status, &in.Images}.check(&v, true)
	if in.Price < 0 {
		v.add("price", "must not be negative")
	}
	if in.Quantity < 0 {
		v.add("quantity", "must not be negative")
	}
	if err := v.err("Invalid farm post"); err != nil {
		return nil, err
	}

	post := &models.FarmPost{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Location:    in.Location,
		Price:       in.Price,
		Currency:    in.Currency,
		Unit:        in.Unit,
		Quantity:    in.Quantity,
		Images:      in.Images,
		Tags:        in.Tags,
		Status:      in.Status,
	}
	// The farm profile link is optional; farmers may post before completing it.
	if fp, err := s.farmProfileRepo.GetByUserID(ctx, userID); err == nil {
		post.FarmProfileID = &fp.ID
	} else if !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}

	if err := s.farmRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if err := s.populateFarm(ctx, []*models.FarmPost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) CreateStorePost(ctx context.Context, userID string, in models.StorePostInput) (*models.StorePost, error) {
	var v violations
	listing{&in.Title, &in.Description, &in.Category, &in.Status, &in.Images}.check(&v, true)
	if in.Pricing.Price < 0 {
		v.add("pricing.price", "must not be negative")
	}
	if in.Pricing.Discount < 0 || in.Pricing.Discount > 100 {
		v.add("pricing.discount", "must be between 0 and 100")
	}
	if in.Stock < 0 {
		v.add("stock", "must not be negative")
	}
	if err := v.err("Invalid store post"); err != nil {
		return nil, err
	}

	store, err := s.storeProfileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return nil, models.NewValidationError("A store profile is required before posting", "storeProfile: is required")
		}
		return nil, err
	}

	post := &models.StorePost{
		UserID:         userID,
		StoreProfileID: store.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Category:       in.Category,
		Subcategory:    in.Subcategory,
		Location:       in.Location,
		Pricing:        in.Pricing,
		Condition:      in.Condition,
		Stock:          in.Stock,
		Images:         in.Images,
		Tags:           in.Tags,
		Status:         in.Status,
	}
	if err := s.storeRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if err := s.populateStore(ctx, []*models.StorePost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// ListFarmPosts returns one page of farm posts; the page query and the count run concurrently.
func (s *PostService) ListFarmPosts(ctx context.Context, filter models.PostFilter, page models.PageRequest) (*models.Page[*models.FarmPost], error) {
	var (
		posts []*models.FarmPost
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { posts, err = s.farmRepo.List(gctx, filter, page); return err })
	g.Go(func() (err error) { total, err = s.farmRepo.Count(gctx, filter); return err })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := s.populateFarm(ctx, posts); err != nil {
		return nil, err
	}
	return &models.Page[*models.FarmPost]{Items: posts, Pagination: page.Paginate(total)}, nil
}

// ListStorePosts returns one page of store posts; the page query and the count run concurrently.
func (s *PostService) ListStorePosts(ctx context.Context, filter models.PostFilter, page models.PageRequest) (*models.Page[*models.StorePost], error) {
	var (
		posts []*models.StorePost
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { posts, err = s.storeRepo.List(gctx, filter, page); return err })
	g.Go(func() (err error) { total, err = s.storeRepo.Count(gctx, filter); return err })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := s.populateStore(ctx, posts); err != nil {
		return nil, err
	}
	return &models.Page[*models.StorePost]{Items: posts, Pagination: page.Paginate(total)}, nil
}

// ListAll pages farm and store posts side by side with the same filter.
// Items are not interleaved; only the pagination totals are merged.
func (s *PostService) ListAll(ctx context.Context, filter models.PostFilter, page models.PageRequest) (*models.CombinedPosts, *models.Pagination, error) {
	var (
		farm  *models.Page[*models.FarmPost]
		store *models.Page[*models.StorePost]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { farm, err = s.ListFarmPosts(gctx, filter, page); return err })
	g.Go(func() (err error) { store, err = s.ListStorePosts(gctx, filter, page); return err })
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	combined := &models.CombinedPosts{
		FarmPosts:       farm.Items,
		StorePosts:      store.Items,
		FarmPagination:  farm.Pagination,
		StorePagination: store.Pagination,
	}
	return combined, models.MergePagination(page, farm.Pagination, store.Pagination), nil
}

func (s *PostService) GetFarmPost(ctx context.Context, id primitive.ObjectID) (*models.FarmPost, error) {
	post, err := s.farmRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populateFarm(ctx, []*models.FarmPost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetStorePost(ctx context.Context, id primitive.ObjectID) (*models.StorePost, error) {
	post, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populateStore(ctx, []*models.StorePost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdateFarmPost(ctx context.Context, id primitive.ObjectID, userID string, upd models.FarmPostUpdate) (*models.FarmPost, error) {
	var v violations
	listing{upd.Title, upd.Description, upd.Category, upd.Status, upd.Images}.check(&v, false)
	if upd.Price != nil && *upd.Price < 0 {
		v.add("price", "must not be negative")
	}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		v.add("quantity", "must not be negative")
	}
	if err := v.err("Invalid farm post update"); err != nil {
		return nil, err
	}

	existing, err := s.farmRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	post, err := s.farmRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if err := s.populateFarm(ctx, []*models.FarmPost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdateStorePost(ctx context.Context, id primitive.ObjectID, userID string, upd models.StorePostUpdate) (*models.StorePost, error) {
	var v violations
	listing{upd.Title, upd.Description, upd.Category, upd.Status, upd.Images}.check(&v, false)
	if upd.Pricing != nil && upd.Pricing.Price < 0 {
		v.add("pricing.price", "must not be negative")
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		v.add("stock", "must not be negative")
	}
	if err := v.err("Invalid store post update"); err != nil {
		return nil, err
	}

	existing, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	post, err := s.storeRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if err := s.populateStore(ctx, []*models.StorePost{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeleteFarmPost(ctx context.Context, id primitive.ObjectID, userID string) error {
	existing, err := s.farmRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.farmRepo.Delete(ctx, id)
}

func (s *PostService) DeleteStorePost(ctx context.Context, id primitive.ObjectID, userID string) error {
	existing, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.storeRepo.Delete(ctx, id)
}

func (s *PostService) populateFarm(ctx context.Context, posts []*models.FarmPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	users, err := s.profileRepo.SummariesByUserIDs(ctx, uniq(ids))
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.User = users[p.UserID]
	}
	return nil
}

// populateStore loads the author and store summaries concurrently.
func (s *PostService) populateStore(ctx context.Context, posts []*models.StorePost) error {
	if len(posts) == 0 {
		return nil
	}
	userIDs := make([]string, 0, len(posts))
	storeIDs := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		userIDs = append(userIDs, p.UserID)
		storeIDs = append(storeIDs, p.StoreProfileID)
	}

	var (
		users  map[string]*models.ProfileSummary
		stores map[primitive.ObjectID]*models.StoreSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = s.profileRepo.SummariesByUserIDs(gctx, uniq(userIDs)); return err })
	g.Go(func() (err error) { stores, err = s.storeProfileRepo.SummariesByIDs(gctx, uniq(storeIDs)); return err })
	if err := g.Wait(); err != nil {
		return err
	}
	for _, p := range posts {
		p.User = users[p.UserID]
		p.Store = stores[p.StoreProfileID]
	}
	return nil
}

func uniq[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := in[:0:0]
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
