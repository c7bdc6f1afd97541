package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"farmconnect/internal/models"
	"farmconnect/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	profileRepo repository.ProfileRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, profileRepo repository.ProfileRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, profileRepo: profileRepo}
}

// ReviewList is one page of a user's received reviews with their rating summary.
type ReviewList struct {
	Reviews    []*models.UserReview
	Pagination *models.Pagination
	Summary    models.RatingSummary
}

func checkRating(v *violations, rating *int) {
	if rating != nil && (*rating < models.MinRating || *rating > models.MaxRating) {
		v.add("rating", "must be between %d and %d", models.MinRating, models.MaxRating)
	}
}

func checkContent(v *violations, content string) {
	if utf8.RuneCountInString(content) > models.MaxReviewContent {
		v.add("content", "must be at most %d characters", models.MaxReviewContent)
	}
}

func (s *ReviewService) Create(ctx context.Context, authorID string, in models.ReviewInput) (*models.UserReview, error) {
	in.RecipientID = strings.TrimSpace(in.RecipientID)
	in.Content = strings.TrimSpace(in.Content)

	var v violations
	v.require("recipientId", in.RecipientID)
	v.require("content", in.Content)
	checkRating(&v, in.Rating)
	checkContent(&v, in.Content)
	if in.RecipientID != "" && in.RecipientID == authorID {
		v.add("recipientId", "you cannot review yourself")
	}
	if err := v.err("Invalid review"); err != nil {
		return nil, err
	}

	review := &models.UserReview{
		UserID:      authorID,
		RecipientID: in.RecipientID,
		PostID:      strings.TrimSpace(in.PostID),
		Rating:      in.Rating,
		Content:     in.Content,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []*models.UserReview{review}); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Get(ctx context.Context, id primitive.ObjectID) (*models.UserReview, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []*models.UserReview{review}); err != nil {
		return nil, err
	}
	return review, nil
}

// ListForUser pages the reviews recipientID received. Page, count and summary run concurrently.
func (s *ReviewService) ListForUser(ctx context.Context, recipientID string, page models.PageRequest) (*ReviewList, error) {
	var (
		reviews []*models.UserReview
		total   int64
		summary models.RatingSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { reviews, err = s.reviewRepo.ListForRecipient(gctx, recipientID, page); return err })
	g.Go(func() (err error) { total, err = s.reviewRepo.CountForRecipient(gctx, recipientID); return err })
	g.Go(func() (err error) { summary, err = s.reviewRepo.Summary(gctx, recipientID); return err })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := s.populate(ctx, reviews); err != nil {
		return nil, err
	}

	summary.AverageRating = math.Round(summary.AverageRating*10) / 10
	return &ReviewList{Reviews: reviews, Pagination: page.Paginate(total), Summary: summary}, nil
}

// Update changes rating and content. Invalid input and non-authors are
// rejected before anything is written.
func (s *ReviewService) Update(ctx context.Context, id primitive.ObjectID, userID string, upd models.ReviewUpdate) (*models.UserReview, error) {
	if upd.Content != nil {
		trimmed := strings.TrimSpace(*upd.Content)
		upd.Content = &trimmed
	}

	var v violations
	checkRating(&v, upd.Rating)
	if upd.Content != nil {
		v.require("content", *upd.Content)
		checkContent(&v, *upd.Content)
	}
	if err := v.err("Invalid review update"); err != nil {
		return nil, err
	}

	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own reviews")
	}

	review, err := s.reviewRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []*models.UserReview{review}); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return models.NewForbiddenError("You can only delete your own reviews")
	}
	return s.reviewRepo.Delete(ctx, id)
}

// MarkHelpful records the caller's vote once; repeating it is a no-op.
// The bool reports whether this call added the vote.
func (s *ReviewService) MarkHelpful(ctx context.Context, id primitive.ObjectID, userID string) (*models.UserReview, bool, error) {
	existing, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if existing.UserID == userID {
		return nil, false, models.NewValidationError("You cannot mark your own review as helpful")
	}
	return s.reviewRepo.MarkHelpful(ctx, id, userID)
}

func (s *ReviewService) populate(ctx context.Context, reviews []*models.UserReview) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	authors, err := s.profileRepo.SummariesByUserIDs(ctx, uniq(ids))
	if err != nil {
		return err
	}
	for _, r := range reviews {
		r.Author = authors[r.UserID]
	}
	return nil
}
