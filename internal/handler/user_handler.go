package handler

import (
	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the authenticated owner's own account.
type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMe handles GET /api/v1/me
func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.profileService.GetProfile(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMe handles PUT /api/v1/me
func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	user, err := h.profileService.UpdateProfile(c.UserContext(), middleware.OwnerID(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data":    user,
	})
}
