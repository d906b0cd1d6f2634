package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"chatspace/internal/services"
)

// SummarizeHandler requests a summary of the room's recent activity and
// returns the synthetic message that was appended to the ledger.
func SummarizeHandler(summaries *services.SummaryService, rooms *services.RoomService, hub *Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roomID := utils.CopyString(c.Params("roomId"))
		requester := identityFrom(c)

		msg, err := summaries.Summarize(c.Context(), requester, roomID)
		if err != nil {
			return fail(c, err)
		}

		if room, err := rooms.RoomForMember(c.Context(), requester.UserID, roomID); err == nil {
			hub.PushMessage(room.Members, msg)
		}

		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}
