package middleware

import (
	"errors"
	"strings"

	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalOwnerID is the fiber.Ctx local holding the authenticated owner id.
const LocalOwnerID = "owner_id"

// RequireAuth validates the bearer token and stores the owner id for
// downstream handlers.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		return authenticate(c, userRepo, parts[1])
	}
}

// RequireWSAuth reads the token from the "token" query parameter, since
// browsers cannot set headers on a websocket handshake.
func RequireWSAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		return authenticate(c, userRepo, token)
	}
}

func authenticate(c *fiber.Ctx, userRepo repository.UserRepository, token string) error {
	user, err := service.Authenticate(c.UserContext(), userRepo, token)
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	c.Locals(LocalOwnerID, user.ID)
	c.Locals("user_email", user.Email)
	c.Locals("user_name", user.FullName)
	return c.Next()
}

// OwnerID returns the authenticated owner, or uuid.Nil when the request
// never passed RequireAuth.
func OwnerID(c *fiber.Ctx) uuid.UUID {
	id, ok := c.Locals(LocalOwnerID).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
