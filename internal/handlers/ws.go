package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"chatspace/internal/models"
	"chatspace/internal/utils"
)

// WebSocketHandler keeps a registered connection open so the hub can push
// confirmed messages. The socket is receive-only for clients; all mutations
// go through the HTTP surface.
func WebSocketHandler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID := c.Locals("user_id").(string)
		connID := uuid.New().String()

		conn := hub.Register(userID, connID, c)
		defer func() {
			hub.Unregister(userID, connID)
			c.Close()
		}()

		utils.LogError(conn.WriteJSON(models.WSEvent{Event: "connected"}), "connected")

		// Drain the connection; any read error means the client went away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
		}
	})
}
