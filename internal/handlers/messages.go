package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"chatspace/internal/models"
	"chatspace/internal/services"
)

// HistoryHandler returns a room's messages in ascending timestamp order.
func HistoryHandler(messages *services.MessageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roomID := utils.CopyString(c.Params("roomId"))
		history, err := messages.History(c.Context(), identityFrom(c), roomID)
		if err != nil {
			return fail(c, err)
		}
		if history == nil {
			history = []models.Message{}
		}
		return c.JSON(history)
	}
}

// PostMessageHandler appends a message and pushes the confirmed result to
// the room's connected members.
func PostMessageHandler(messages *services.MessageService, rooms *services.RoomService, hub *Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roomID := utils.CopyString(c.Params("roomId"))
		requester := identityFrom(c)

		var req models.PostMessageRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}

		msg, err := messages.Append(c.Context(), requester, roomID, req.Text)
		if err != nil {
			return fail(c, err)
		}

		if room, err := rooms.RoomForMember(c.Context(), requester.UserID, roomID); err == nil {
			hub.PushMessage(room.Members, msg)
		}

		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}
