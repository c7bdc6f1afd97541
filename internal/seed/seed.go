// Package seed generates demo marketplace data. It writes through the
// service layer so seeded records obey the same rules as API writes.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"farmconnect/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Profiles is the subset of the profile service the seeder needs.
type Profiles interface {
	Create(ctx context.Context, userID, sessionEmail string, in models.UserProfileInput) (*models.UserProfile, error)
	SaveFarm(ctx context.Context, userID string, in models.FarmProfileInput) (*models.FarmProfile, bool, error)
	SaveStore(ctx context.Context, userID string, in models.StoreProfileInput) (*models.StoreProfile, bool, error)
}

// Posts is the subset of the post service the seeder needs.
type Posts interface {
	CreateFarmPost(ctx context.Context, userID string, in models.FarmPostInput) (*models.FarmPost, error)
	CreateStorePost(ctx context.Context, userID string, in models.StorePostInput) (*models.StorePost, error)
}

// Reviews is the subset of the review service the seeder needs.
type Reviews interface {
	Create(ctx context.Context, authorID string, in models.ReviewInput) (*models.UserReview, error)
}

// Options sizes a seeding run.
type Options struct {
	Farmers      int
	Sellers      int
	Buyers       int
	PostsPerUser int
	Reviews      int
}

// Result counts what a run created.
type Result struct {
	Profiles   int
	FarmPosts  int
	StorePosts int
	Reviews    int
}

// Seeder creates demo users, profiles, listings and reviews.
type Seeder struct {
	profiles Profiles
	posts    Posts
	reviews  Reviews
	factory  *Factory
}

// NewSeeder returns a Seeder. A fixed seed makes runs reproducible; zero is random.
func NewSeeder(profiles Profiles, posts Posts, reviews Reviews, catalog *Catalog, seed int64) *Seeder {
	return &Seeder{
		profiles: profiles,
		posts:    posts,
		reviews:  reviews,
		factory:  NewFactory(catalog, seed),
	}
}

// Run seeds according to opts and stops at the first failed write.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	f := s.factory

	var farmers, sellers, everyone []string
	create := func(role models.UserRole, n int) ([]string, error) {
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			userID, email, in := f.UserProfile(role)
			if _, err := s.profiles.Create(ctx, userID, email, in); err != nil {
				return nil, fmt.Errorf("create %s profile: %w", role, err)
			}
			res.Profiles++
			ids = append(ids, userID)
		}
		return ids, nil
	}

	var err error
	if farmers, err = create(models.RoleFarmer, opts.Farmers); err != nil {
		return res, err
	}
	if sellers, err = create(models.RoleSeller, opts.Sellers); err != nil {
		return res, err
	}
	buyers, err := create(models.RoleBuyer, opts.Buyers)
	if err != nil {
		return res, err
	}
	everyone = append(append(append(everyone, farmers...), sellers...), buyers...)

	for _, id := range farmers {
		if _, _, err := s.profiles.SaveFarm(ctx, id, f.FarmProfile()); err != nil {
			return res, fmt.Errorf("save farm profile: %w", err)
		}
		for i := 0; i < opts.PostsPerUser; i++ {
			if _, err := s.posts.CreateFarmPost(ctx, id, f.FarmPost()); err != nil {
				return res, fmt.Errorf("create farm post: %w", err)
			}
			res.FarmPosts++
		}
	}

	for _, id := range sellers {
		if _, _, err := s.profiles.SaveStore(ctx, id, f.StoreProfile()); err != nil {
			return res, fmt.Errorf("save store profile: %w", err)
		}
		for i := 0; i < opts.PostsPerUser; i++ {
			if _, err := s.posts.CreateStorePost(ctx, id, f.StorePost()); err != nil {
				return res, fmt.Errorf("create store post: %w", err)
			}
			res.StorePosts++
		}
	}

	recipients := append(append([]string{}, farmers...), sellers...)
	if len(recipients) > 0 && len(everyone) > 1 {
		for i := 0; i < opts.Reviews; i++ {
			author, in := f.Review(everyone, recipients)
			if _, err := s.reviews.Create(ctx, author, in); err != nil {
				return res, fmt.Errorf("create review: %w", err)
			}
			res.Reviews++
		}
	}

	slog.InfoContext(ctx, "seed complete",
		slog.Int("profiles", res.Profiles),
		slog.Int("farm_posts", res.FarmPosts),
		slog.Int("store_posts", res.StorePosts),
		slog.Int("reviews", res.Reviews))
	return res, nil
}

// Factory builds valid service inputs from a catalog.
type Factory struct {
	fake    *gofakeit.Faker
	catalog *Catalog
}

// NewFactory returns a Factory. A zero seed is random.
func NewFactory(catalog *Catalog, seed int64) *Factory {
	return &Factory{fake: gofakeit.New(seed), catalog: catalog}
}

func pick[T any](f *gofakeit.Faker, xs []T) T {
	return xs[f.Number(0, len(xs)-1)]
}

func ptr[T any](v T) *T { return &v }

func (f *Factory) phone() string {
	return f.fake.Numerify("+233 2# ### ####")
}

func (f *Factory) location() models.Location {
	r := pick(f.fake, f.catalog.Regions)
	return models.Location{
		Region:     r.Name,
		City:       pick(f.fake, r.Cities),
		District:   f.fake.Street(),
		GPSAddress: f.fake.Regex(`[A-Z]{2}-[0-9]{3}-[0-9]{4}`),
	}
}

func (f *Factory) images(seed string, n int) []models.Media {
	out := make([]models.Media, n)
	for i := range out {
		name := fmt.Sprintf("%s-%d.jpg", seed, i)
		out[i] = models.Media{URL: "https://picsum.photos/seed/" + name, FileName: name}
	}
	return out
}

// UserProfile returns a new user id, its session email and the profile input.
func (f *Factory) UserProfile(role models.UserRole) (string, string, models.UserProfileInput) {
	userID := "seed-" + f.fake.UUID()
	email := f.fake.Email()
	loc := f.location()
	return userID, email, models.UserProfileInput{
		FullName: f.fake.Name(),
		Email:    email,
		Phone:    f.phone(),
		Role:     role,
		Bio:      f.fake.Sentence(10),
		Location: &loc,
		ProfilePicture: &models.Media{
			URL: "https://i.pravatar.cc/150?u=" + userID,
		},
	}
}

func (f *Factory) FarmProfile() models.FarmProfileInput {
	loc := f.location()
	crops := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		crops = append(crops, pick(f.fake, pick(f.fake, f.catalog.Farm).Products))
	}
	return models.FarmProfileInput{
		FarmName:        ptr(f.fake.LastName() + " Farms"),
		FarmLocation:    &loc,
		FarmSize:        ptr(float64(f.fake.Number(1, 500))),
		FarmType:        ptr(pick(f.fake, []models.FarmType{models.FarmTypeCrop, models.FarmTypeLivestock, models.FarmTypeMixed, models.FarmTypeAquaculture, models.FarmTypePoultry})),
		ProductionScale: ptr(pick(f.fake, []models.ProductionScale{models.ScaleSmall, models.ScaleMedium, models.ScaleLarge, models.ScaleCommercial})),
		Crops:           &crops,
		ContactPhone:    ptr(f.phone()),
		ContactEmail:    ptr(f.fake.Email()),
		Description:     ptr(f.fake.Paragraph(1, 2, 12, " ")),
	}
}

func (f *Factory) StoreProfile() models.StoreProfileInput {
	loc := f.location()
	return models.StoreProfileInput{
		StoreName:     ptr(f.fake.Company() + " Agro"),
		Description:   ptr(f.fake.Sentence(12)),
		Location:      &loc,
		Phone:         ptr(f.phone()),
		Email:         ptr(f.fake.Email()),
		Website:       ptr("https://" + f.fake.DomainName()),
		BusinessHours: ptr("Mon-Sat 8:00-18:00"),
	}
}

func (f *Factory) FarmPost() models.FarmPostInput {
	cat := pick(f.fake, f.catalog.Farm)
	product := pick(f.fake, cat.Products)
	unit := "kg"
	if len(cat.Units) > 0 {
		unit = pick(f.fake, cat.Units)
	}
	return models.FarmPostInput{
		Title:       fmt.Sprintf("Fresh %s", product),
		Description: f.fake.Paragraph(1, 2, 15, " "),
		Category:    models.CategoryRef{ID: cat.ID, Name: cat.Name},
		Location:    f.location(),
		Price:       f.fake.Price(5, 500),
		Currency:    f.catalog.Currency,
		Unit:        unit,
		Quantity:    f.fake.Number(1, 1000),
		Images:      f.images(f.fake.UUID(), f.fake.Number(1, 3)),
		Tags:        []string{cat.ID},
		Status:      models.PostStatusActive,
	}
}

func (f *Factory) StorePost() models.StorePostInput {
	cat := pick(f.fake, f.catalog.Store)
	condition := "new"
	if len(cat.Conditions) > 0 {
		condition = pick(f.fake, cat.Conditions)
	}
	return models.StorePostInput{
		Title:       pick(f.fake, cat.Products),
		Description: f.fake.Paragraph(1, 2, 15, " "),
		Category:    models.CategoryRef{ID: cat.ID, Name: cat.Name},
		Location:    f.location(),
		Pricing: models.Pricing{
			Price:      f.fake.Price(10, 2000),
			Currency:   f.catalog.Currency,
			Negotiable: f.fake.Bool(),
		},
		Condition: condition,
		Stock:     f.fake.Number(0, 200),
		Images:    f.images(f.fake.UUID(), 1),
		Tags:      []string{cat.ID},
		Status:    models.PostStatusActive,
	}
}

// Review picks an author and a different recipient and returns the input.
// authors must hold at least two ids or one id not in recipients.
func (f *Factory) Review(authors, recipients []string) (string, models.ReviewInput) {
	recipient := pick(f.fake, recipients)
	author := pick(f.fake, authors)
	for author == recipient {
		author = pick(f.fake, authors)
	}
	return author, models.ReviewInput{
		RecipientID: recipient,
		Rating:      ptr(f.fake.Number(1, 5)),
		Content:     f.fake.Sentence(f.fake.Number(5, 20)),
	}
}
