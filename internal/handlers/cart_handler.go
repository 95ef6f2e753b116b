package handlers

import (
	"agrimarket/internal/middleware"
	"agrimarket/internal/models"
	"agrimarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the calling buyer's own cart.
type CartHandler struct {
	service *services.CartService
}

func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart", middleware.RequireRole(models.RoleBuyer))
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Get("/count", h.HandleCount)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClear)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	view, err := h.service.GetCart(c.UserContext(), p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

func (h *CartHandler) HandleCount(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	count, err := h.service.Count(c.UserContext(), p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req services.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	cart, err := h.service.AddItem(c.UserContext(), p.ID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req services.UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	cart, err := h.service.UpdateItemQuantity(c.UserContext(), p.ID, c.Params("productId"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	cart, err := h.service.RemoveItem(c.UserContext(), p.ID, c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.service.Clear(c.UserContext(), p.ID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
