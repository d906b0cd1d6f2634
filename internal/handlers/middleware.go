package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"chatspace/internal/apperr"
	"chatspace/internal/services"
)

// AuthMiddleware verifies the bearer credential and stores the caller's
// identity in Locals. A missing or failed verification short-circuits with
// 401 before any state is touched.
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fail(c, apperr.ErrMissingToken)
		}

		identity, err := auth.ValidateToken(token)
		if err != nil {
			return fail(c, err)
		}

		c.Locals("user_id", identity.UserID)
		c.Locals("username", identity.Username)
		return c.Next()
	}
}

// bearerToken reads the credential from the Authorization header, or from
// the access_token query param for websocket upgrades.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return c.Query("access_token")
}

func identityFrom(c *fiber.Ctx) services.Identity {
	return services.Identity{
		UserID:   c.Locals("user_id").(string),
		Username: c.Locals("username").(string),
	}
}

// WSUpgradeMiddleware rejects plain HTTP requests on the websocket route.
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// fail is the single boundary that maps domain errors to HTTP responses.
// Unclassified errors come out as 500 with a generic body.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	msg := "internal server error"
	var ae *apperr.AppError
	if errors.As(err, &ae) && ae.Code != apperr.CodeInternal {
		msg = ae.Message
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
