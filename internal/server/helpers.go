package server

import (
	"errors"
	"fmt"

	"farmconnect/internal/auth"
	"farmconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// DBRequired makes sure the database is reachable before the handler runs.
// Connection failures surface as 500.
func (s *Server) DBRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.db.EnsureConnected(c.UserContext()); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		return c.Next()
	}
}

// parsePage reads the page and limit query parameters. A page past
// models.MaxPage writes a 400 and returns errResponseWritten.
func parsePage(c *fiber.Ctx) (models.PageRequest, error) {
	page := c.QueryInt("page", models.DefaultPage)
	if page > models.MaxPage {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid page", fmt.Sprintf("page: must be at most %d", models.MaxPage)))
		return models.PageRequest{}, errResponseWritten
	}
	return models.NewPageRequest(page, c.QueryInt("limit", models.DefaultLimit)), nil
}

// parseObjectID extracts a route parameter as a document id.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseObjectID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID", param+": must be a valid id"))
		return primitive.NilObjectID, errResponseWritten
	}
	return id, nil
}

// parseBody decodes the JSON request body into dest, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// principal returns the caller resolved by the guard middleware.
func principal(c *fiber.Ctx) auth.Principal {
	p, _ := auth.FromContext(c)
	return p
}

func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(models.Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondPage(c *fiber.Ctx, data any, pagination *models.Pagination) error {
	return c.Status(fiber.StatusOK).JSON(models.Envelope{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}
