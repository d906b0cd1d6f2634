package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"chatspace/internal/models"
	"chatspace/internal/services"
)

// ListRoomsHandler returns the rooms where the caller is a member.
func ListRoomsHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		views, err := rooms.ListFor(c.Context(), userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(views)
	}
}

// CreateRoomHandler creates a public channel or returns the existing direct
// room for the requested pairing.
func CreateRoomHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.CreateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}

		view, err := rooms.Create(c.Context(), userID, req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// AddMembersHandler unions new members into a public channel.
func AddMembersHandler(rooms *services.RoomService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		roomID := utils.CopyString(c.Params("roomId"))

		var req models.AddMembersRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}

		view, err := rooms.AddMembers(c.Context(), userID, roomID, req.MemberIDs)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(view)
	}
}
