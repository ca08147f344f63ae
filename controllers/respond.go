package controllers

import (
	"errors"

	"fiber-mes/config"
	"fiber-mes/services"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps the service error taxonomy onto HTTP responses.
// Storage-layer faults are logged and surfaced generically.
func serviceError(ctx *fiber.Ctx, err error) error {
	var insufficient *services.InsufficientMaterialsError
	if errors.As(err, &insufficient) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":   false,
			"message":   "Insufficient materials",
			"shortages": insufficient.Shortages,
		})
	}

	var invalidTransition *services.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": invalidTransition.Error(),
		})
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Record not found",
		})
	case errors.Is(err, services.ErrVersionNotLocked):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Formulation version is not locked",
		})
	case errors.Is(err, services.ErrInvalidInput):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrConcurrentModification):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Batch was modified concurrently, reload and retry",
		})
	default:
		config.LogError(config.GetLogger(), "controllers", "serviceError", ctx.Path(), nil, err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}

func currentUserID(ctx *fiber.Ctx) int {
	if userID, ok := ctx.Locals("userID").(float64); ok {
		return int(userID)
	}
	return 0
}
