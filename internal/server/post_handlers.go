package server

import (
	"farmconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

func postFilter(c *fiber.Ctx) models.PostFilter {
	return models.PostFilter{
		CategoryID:    c.Query("categoryId"),
		SubcategoryID: c.Query("subcategoryId"),
		Region:        c.Query("region"),
		UserID:        c.Query("userId"),
	}
}

// ListPosts handles GET /api/posts. Farm and store posts are paged side by
// side; the top-level pagination merges both totals.
// @Summary List all posts
// @Description Farm and store posts side by side with merged pagination.
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param categoryId query string false "Category filter"
// @Param subcategoryId query string false "Subcategory filter"
// @Param region query string false "Region filter"
// @Param userId query string false "Owner filter"
// @Success 200 {object} models.Envelope
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	combined, pagination, err := s.postService.ListAll(c.UserContext(), postFilter(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, combined, pagination)
}

// ListFarmPosts handles GET /api/posts/farm
// @Summary List farm posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.Envelope
// @Router /posts/farm [get]
func (s *Server) ListFarmPosts(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	page, err := s.postService.ListFarmPosts(c.UserContext(), postFilter(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, page.Items, page.Pagination)
}

// CreateFarmPost handles POST /api/posts/farm
// @Summary Create farm post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.FarmPostInput true "Farm post"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /posts/farm [post]
func (s *Server) CreateFarmPost(c *fiber.Ctx) error {
	var in models.FarmPostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	post, err := s.postService.CreateFarmPost(c.UserContext(), principal(c).ID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, post, "Farm post created")
}

// GetFarmPost handles GET /api/posts/farm/:id
func (s *Server) GetFarmPost(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetFarmPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "")
}

// UpdateFarmPost handles PUT /api/posts/farm/:id
func (s *Server) UpdateFarmPost(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	var upd models.FarmPostUpdate
	if err := parseBody(c, &upd); err != nil {
		return nil
	}

	post, err := s.postService.UpdateFarmPost(c.UserContext(), id, principal(c).ID, upd)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "Farm post updated")
}

// DeleteFarmPost handles DELETE /api/posts/farm/:id
func (s *Server) DeleteFarmPost(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteFarmPost(c.UserContext(), id, principal(c).ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Farm post deleted")
}

// ListStorePosts handles GET /api/posts/store
func (s *Server) ListStorePosts(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	page, err := s.postService.ListStorePosts(c.UserContext(), postFilter(c), req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondPage(c, page.Items, page.Pagination)
}

// CreateStorePost handles POST /api/posts/store. The caller needs a store profile.
// @Summary Create store post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.StorePostInput true "Store post"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /posts/store [post]
func (s *Server) CreateStorePost(c *fiber.Ctx) error {
	var in models.StorePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	post, err := s.postService.CreateStorePost(c.UserContext(), principal(c).ID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, post, "Store post created")
}

// GetStorePost handles GET /api/posts/store/:id
func (s *Server) GetStorePost(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetStorePost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "")
}

// UpdateStorePost handles PUT /api/posts/store/:id
func (s *Server) UpdateStorePost(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	var upd models.StorePostUpdate
	if err := parseBody(c, &upd); err != nil {
		return nil
	}

	post, err := s.postService.UpdateStorePost(c.UserContext(), id, principal(c).ID, upd)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, post, "Store post updated")
}

// DeleteStorePost handles DELETE /api/posts/store/:id
func (s *Server) DeleteStorePost(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteStorePost(c.UserContext(), id, principal(c).ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Store post deleted")
}
