package server

import (
	"farmconnect/internal/models"
	"farmconnect/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// CreateReview handles POST /api/review
// @Summary Create review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReviewInput true "Review"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /review [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	var in models.ReviewInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	review, err := s.reviewService.Create(c.UserContext(), principal(c).ID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishUserEvent(review.RecipientID, notifications.EventReviewReceived, map[string]any{
		"reviewId": review.ID.Hex(),
		"authorId": review.UserID,
		"rating":   review.Rating,
	})
	return respond(c, fiber.StatusCreated, review, "Review created")
}

// GetReview handles GET /api/review/:id
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	review, err := s.reviewService.Get(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, review, "")
}

// ListUserReviews handles GET /api/review/user/:userId
// @Summary List reviews of a user
// @Tags reviews
// @Produce json
// @Param userId path string true "Recipient user id"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.Envelope
// @Router /review/user/{userId} [get]
func (s *Server) ListUserReviews(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	list, err := s.reviewService.ListForUser(c.UserContext(), c.Params("userId"), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, fiber.Map{
		"reviews":       list.Reviews,
		"averageRating": list.Summary.AverageRating,
		"totalReviews":  list.Summary.TotalReviews,
		"ratedReviews":  list.Summary.RatedReviews,
	}, list.Pagination)
}

// UpdateReview handles PATCH /api/review/:id. Only the author may edit.
// @Summary Update review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review id"
// @Param request body models.ReviewUpdate true "Changes"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Router /review/{id} [patch]
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	var upd models.ReviewUpdate
	if err := parseBody(c, &upd); err != nil {
		return nil
	}

	review, err := s.reviewService.Update(c.UserContext(), id, principal(c).ID, upd)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, review, "Review updated")
}

// DeleteReview handles DELETE /api/review/:id. Only the author may delete.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviewService.Delete(c.UserContext(), id, principal(c).ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Review deleted")
}

// MarkReviewHelpful handles PATCH /api/review/:id/helpful
func (s *Server) MarkReviewHelpful(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	caller := principal(c).ID
	review, changed, err := s.reviewService.MarkHelpful(c.UserContext(), id, caller)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if !changed {
		return respond(c, fiber.StatusOK, review, "Already marked as helpful")
	}
	s.publishUserEvent(review.UserID, notifications.EventReviewHelpful, map[string]any{
		"reviewId":     review.ID.Hex(),
		"voterId":      caller,
		"helpfulCount": review.HelpfulCount,
	})
	return respond(c, fiber.StatusOK, review, "Review marked as helpful")
}
