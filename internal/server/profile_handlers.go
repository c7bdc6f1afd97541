package server

import (
	"farmconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile
// @Summary Get my profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	p, err := s.profileService.GetMine(c.UserContext(), principal(c).ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, p, "")
}

// CreateProfile handles POST /api/profile. The email defaults to the
// session's email.
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	var in models.UserProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	caller := principal(c)
	p, err := s.profileService.Create(c.UserContext(), caller.ID, caller.Email, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, p, "Profile created")
}

// GetProfile handles GET /api/profile/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	p, err := s.profileService.GetByID(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, p, "")
}

// UpdateProfile handles PUT /api/profile/:id
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	var upd models.UserProfileUpdate
	if err := parseBody(c, &upd); err != nil {
		return nil
	}

	p, err := s.profileService.Update(c.UserContext(), id, principal(c).ID, upd)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, p, "Profile updated")
}

// DeleteProfile handles DELETE /api/profile/:id. The owner's farm and
// store profiles are removed with it.
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.profileService.Delete(c.UserContext(), id, principal(c).ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Profile deleted")
}

// GetMyFarmProfile handles GET /api/profile/farm and /api/profile/farm_me
func (s *Server) GetMyFarmProfile(c *fiber.Ctx) error {
	p, err := s.profileService.GetFarm(c.UserContext(), principal(c).ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, p, "")
}

// SaveFarmProfile handles POST /api/profile/farm and /api/profile/farm_me.
// It creates the caller's farm profile or updates the existing one.
// @Summary Create or update my farm profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.FarmProfileInput true "Farm profile"
// @Success 200 {object} models.Envelope
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /profile/farm_me [post]
func (s *Server) SaveFarmProfile(c *fiber.Ctx) error {
	var in models.FarmProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	p, created, err := s.profileService.SaveFarm(c.UserContext(), principal(c).ID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if created {
		return respond(c, fiber.StatusCreated, p, "Farm profile created")
	}
	return respond(c, fiber.StatusOK, p, "Farm profile updated")
}

// GetStoreProfile handles GET /api/profile/store/:userId
func (s *Server) GetStoreProfile(c *fiber.Ctx) error {
	p, err := s.profileService.GetStore(c.UserContext(), c.Params("userId"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, p, "")
}

// SaveStoreProfile handles POST /api/profile/store
func (s *Server) SaveStoreProfile(c *fiber.Ctx) error {
	var in models.StoreProfileInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	p, created, err := s.profileService.SaveStore(c.UserContext(), principal(c).ID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if created {
		return respond(c, fiber.StatusCreated, p, "Store profile created")
	}
	return respond(c, fiber.StatusOK, p, "Store profile updated")
}
