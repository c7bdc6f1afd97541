package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/admin/feature-flags. It returns the
// configured values and how each one evaluates for the caller.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(principal(c).ID),
	}, "")
}
