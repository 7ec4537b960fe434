package handler

import (
	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UpgradeWS rejects plain HTTP requests on the websocket route.
func UpgradeWS(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// ServeWS attaches the connection to the hub under its owner and keeps it
// open until the client goes away.
func ServeWS(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		owner, _ := c.Locals(middleware.LocalOwnerID).(uuid.UUID)
		if owner == uuid.Nil {
			c.Close()
			return
		}

		client := hub.Register(owner, c)
		defer hub.Unregister(client)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
