package handler

import (
	"errors"

	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// respondError maps domain errors onto HTTP statuses. Persistence and other
// unexpected failures are reported without detail.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *model.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":             err.Error(),
			"packet_size_grams": stockErr.PacketSize,
			"available":         stockErr.Available,
			"requested":         stockErr.Requested,
		})
	case errors.Is(err, model.ErrInsufficientStock), errors.Is(err, repository.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, model.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, model.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
}
