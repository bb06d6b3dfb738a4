package session

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/spysignal-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

var ErrNoUser = errors.New("no authenticated user in context")

// SetUser records the authenticated caller for the rest of the request.
func SetUser(c *fiber.Ctx, user *models.User) {
	c.Locals(userKey, user)
}

// GetUser extracts the authenticated caller from Fiber context locals.
func GetUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	user, err := GetUser(c)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
