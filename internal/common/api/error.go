package api

import (
	"go-opsboard/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps service-layer error categories to HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return fiber.StatusBadRequest
	case apperrors.IsAccessDenied(err):
		return fiber.StatusForbidden
	case apperrors.IsVersionConflict(err):
		return fiber.StatusConflict
	case apperrors.IsNotFound(err):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail renders a service-layer error as a JSON response.
func Fail(ctx *fiber.Ctx, err error) error {
	return ctx.Status(ErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}
