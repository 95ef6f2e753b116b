package handlers

import (
	"errors"

	"agrimarket/internal/apperrors"
	"agrimarket/internal/middleware"
	"agrimarket/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/labstack/gommon/log"
)

var categoryStatus = map[apperrors.Category]int{
	apperrors.CategoryValidation:   fiber.StatusBadRequest,
	apperrors.CategoryUnauthorized: fiber.StatusUnauthorized,
	apperrors.CategoryForbidden:    fiber.StatusForbidden,
	apperrors.CategoryNotFound:     fiber.StatusNotFound,
	apperrors.CategoryConflict:     fiber.StatusConflict,
}

// writeError is the single translation point from service errors to HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	status, ok := categoryStatus[appErr.Kind.Category()]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if len(appErr.Fields) > 0 {
		return c.Status(status).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   appErr.Kind.String(),
			"errors":  appErr.Fields,
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"message": appErr.Message,
		"error":   appErr.Kind.String(),
	})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Debugf("error parsing request body for %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// principal reads the caller set by middleware.AuthRequired. Routes are only
// registered behind it, so a miss means a wiring bug.
func principal(c *fiber.Ctx) (models.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return models.Principal{}, apperrors.New(apperrors.KindUnauthorized, "authentication required")
	}
	return p, nil
}
