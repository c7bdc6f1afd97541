package server

import (
	"farmconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCart handles GET /api/cart
// @Summary Get cart
// @Description List the caller's cart items with a summary of totals.
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /cart [get]
func (s *Server) GetCart(c *fiber.Ctx) error {
	items, summary, err := s.cartService.List(c.UserContext(), principal(c).ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"items": items, "summary": summary}, "")
}

// AddToCart handles POST /api/cart. Adding an item already in the cart
// increments its quantity.
// @Summary Add to cart
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CartItemInput true "Cart item"
// @Success 201 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /cart [post]
func (s *Server) AddToCart(c *fiber.Ctx) error {
	var in models.CartItemInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	item, err := s.cartService.Add(c.UserContext(), principal(c).ID, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusCreated, item, "Item added to cart")
}

// ClearCart handles DELETE /api/cart/clear
// @Summary Clear cart
// @Tags cart
// @Security BearerAuth
// @Success 200 {object} models.Envelope
// @Router /cart/clear [delete]
func (s *Server) ClearCart(c *fiber.Ctx) error {
	n, err := s.cartService.Clear(c.UserContext(), principal(c).ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"deletedCount": n}, "Cart cleared")
}

// GetCartItem handles GET /api/cart/:id. Items of other users are reported
// as not found.
func (s *Server) GetCartItem(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.cartService.Get(c.UserContext(), id, principal(c).ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, item, "")
}

// UpdateCartItem handles PUT /api/cart/:id
func (s *Server) UpdateCartItem(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}
	var upd models.CartItemUpdate
	if err := parseBody(c, &upd); err != nil {
		return nil
	}

	item, err := s.cartService.Update(c.UserContext(), id, principal(c).ID, upd)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, item, "Cart item updated")
}

// RemoveCartItem handles DELETE /api/cart/:id
func (s *Server) RemoveCartItem(c *fiber.Ctx) error {
	id, err := parseObjectID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.cartService.Remove(c.UserContext(), id, principal(c).ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respond(c, fiber.StatusOK, nil, "Item removed from cart")
}
