package handlers

import (
	"fmt"

	"agrimarket/internal/middleware"
	"agrimarket/internal/models"
	"agrimarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service *services.ProductService
}

func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers product routes. Browsing is open to every
// authenticated user; writes are for farmers.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	farmerOnly := middleware.RequireRole(models.RoleFarmer)
	productRoutes.Post("/", farmerOnly, h.HandleCreateProduct)
	productRoutes.Put("/:id", farmerOnly, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", farmerOnly, h.HandleDeleteProduct)
}

// HandleGetProducts lists products, optionally of one farmer (?farmer_id=).
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext(), c.Query("farmer_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req services.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), p, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	var req services.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), p, c.Params("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	productID := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), p, productID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", productID),
	})
}
