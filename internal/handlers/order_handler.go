package handlers

import (
	"agrimarket/internal/middleware"
	"agrimarket/internal/models"
	"agrimarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orders   *services.OrderService
	workflow *services.OrderWorkflow
}

func NewOrderHandler(orders *services.OrderService, workflow *services.OrderWorkflow) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		workflow: workflow,
	}
}

// RegisterRoutes registers the order routes. Visibility of each order is
// decided by the services, not by the route.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", middleware.RequireRole(models.RoleBuyer), h.HandleCreateOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the caller's orders, optionally by ?status=.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	orders, err := h.orders.ListOrders(c.UserContext(), p, c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	order, err := h.orders.GetOrder(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder places an order from the buyer's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req services.PlaceOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), p.ID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req services.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	order, err := h.workflow.ApplyTransition(c.UserContext(), c.Params("id"), req, p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(order)
}
