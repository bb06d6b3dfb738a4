package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// BearerAuth resolves "Authorization: Bearer <token>" to a user and stores
// it with session.SetUser. Requests that fail never reach the next handler.
func BearerAuth(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := userService.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingCredentials):
				return unauthorized(c, "Missing Authorization header")
			case errors.Is(err, services.ErrInvalidCredentialsFormat):
				return unauthorized(c, "Invalid auth header")
			case errors.Is(err, services.ErrInvalidToken):
				return unauthorized(c, "Invalid token")
			}
			slog.Error("authentication lookup failed", "action", "auth", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Detail: "Internal server error",
			})
		}

		session.SetUser(c, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Detail: detail})
}
